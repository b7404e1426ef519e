package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Login("ok")
	m.Login("ok")
	m.Login("bad_password")
	m.PostCreated()
	m.CommentCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("bad_password")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.postsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commentsCreated))
}

func TestHandlerExposesRequests(t *testing.T) {
	m := New()
	m.RecordRequest(http.MethodGet, "/post/{id}", http.StatusOK, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/post/{id}",status="200"} 1`)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Registered()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.registrations))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.registrations))
}

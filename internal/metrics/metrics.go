package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can live in one
// process, as they do in tests.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	logins          *prometheus.CounterVec
	registrations   prometheus.Counter
	postsCreated    prometheus.Counter
	postsDeleted    prometheus.Counter
	commentsCreated prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_registrations_total",
			Help: "Accounts created",
		}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Posts created",
		}),
		postsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_posts_deleted_total",
			Help: "Posts deleted",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Comments created",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.requestTotal, m.logins, m.registrations,
		m.postsCreated, m.postsDeleted, m.commentsCreated,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest expects route to be a pattern such as /post/{id}, never a
// raw path, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(seconds)
	m.requestTotal.WithLabelValues(method, route, code).Inc()
}

func (m *Metrics) Login(result string) { m.logins.WithLabelValues(result).Inc() }
func (m *Metrics) Registered()         { m.registrations.Inc() }
func (m *Metrics) PostCreated()        { m.postsCreated.Inc() }
func (m *Metrics) PostDeleted()        { m.postsDeleted.Inc() }
func (m *Metrics) CommentCreated()     { m.commentsCreated.Inc() }

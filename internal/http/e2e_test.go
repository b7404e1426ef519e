package httpapp_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/alphabot-ai/blog/internal/auth"
	"github.com/alphabot-ai/blog/internal/client"
	"github.com/alphabot-ai/blog/internal/config"
	httpapp "github.com/alphabot-ai/blog/internal/http"
	"github.com/alphabot-ai/blog/internal/logger"
	"github.com/alphabot-ai/blog/internal/session"
	"github.com/alphabot-ai/blog/internal/store/sqlite"
)

func TestEndToEndServer(t *testing.T) {
	st, err := sqlite.Open("file:e2e_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.SecretKey = "e2e-secret-key-0123456789abcdef012345"
	server, err := httpapp.NewServer(httpapp.Deps{
		Store:    st,
		Auth:     auth.NewService(st, auth.PBKDF2Hasher{Iterations: 1000}),
		Sessions: session.NewManager(st),
		Logger:   logger.Discard(),
		Config:   cfg,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	httpServer := &http.Server{Handler: server}
	go func() {
		_ = httpServer.Serve(listener)
	}()
	defer httpServer.Close()

	baseURL := "http://" + listener.Addr().String()
	ctx := context.Background()

	admin := client.New(baseURL)
	if err := admin.Register(ctx, "owner@example.com", "Owner", "owner-pass"); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if err := admin.CreatePost(ctx, client.PostInput{
		Title:    "E2E Post",
		Subtitle: "End to end",
		ImgURL:   "https://example.com/e2e.png",
		Body:     "Hello from the test.",
	}); err != nil {
		t.Fatalf("create post: %v", err)
	}
	ids, err := admin.PostIDs(ctx)
	if err != nil || len(ids) != 1 {
		t.Fatalf("post ids: %v %v", ids, err)
	}

	reader := client.New(baseURL)
	if err := reader.Comment(ctx, ids[0], "anonymous"); !errors.Is(err, client.ErrLoginFailed) {
		t.Fatalf("expected anonymous comment to be refused, got %v", err)
	}
	if err := reader.Register(ctx, "reader@example.com", "Reader", "reader-pass"); err != nil {
		t.Fatalf("register reader: %v", err)
	}
	if err := reader.Comment(ctx, ids[0], "Great read"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := reader.DeletePost(ctx, ids[0]); !errors.Is(err, client.ErrForbidden) {
		t.Fatalf("expected reader delete to be forbidden, got %v", err)
	}

	resp, err := reader.Get(ctx, "/post/1")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Body, "Great read") {
		t.Fatalf("post page status %d missing comment", resp.StatusCode)
	}

	if err := admin.DeletePost(ctx, ids[0]); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	ids, err = admin.PostIDs(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected no posts after delete: %v %v", ids, err)
	}
}

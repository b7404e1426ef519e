package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-ai/blog/internal/auth"
	"github.com/alphabot-ai/blog/internal/config"
	"github.com/alphabot-ai/blog/internal/cookie"
	"github.com/alphabot-ai/blog/internal/health"
	httpapp "github.com/alphabot-ai/blog/internal/http"
	"github.com/alphabot-ai/blog/internal/logger"
	"github.com/alphabot-ai/blog/internal/metrics"
	"github.com/alphabot-ai/blog/internal/rate"
	"github.com/alphabot-ai/blog/internal/session"
	"github.com/alphabot-ai/blog/internal/store/sqlite"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagDB   string
	flagAddr string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the blog server (default)",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides BLOG_ADDR)")

	root := &cobra.Command{
		Use:           "blog",
		Short:         "Server-rendered blog with comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&flagDB, "db", "", "sqlite database path (overrides BLOG_DB)")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(
		serve,
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			Args:  cobra.NoArgs,
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "blog %s\n", version)
			},
		},
		newUsersCmd(),
	)
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, flush := logger.New(logger.Options{
		Format:      cfg.Log.Format,
		Level:       cfg.Log.Level,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Env,
	})
	defer flush()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	checks := health.Checks{"store": st.Ping}
	var sessStore session.Store = st
	if cfg.Session.Store == config.SessionStoreRedis {
		rdb, err := session.OpenRedis(ctx, cfg.Session.RedisURL, 5, time.Second)
		if err != nil {
			return err
		}
		defer rdb.Close()
		redisStore := session.NewRedisStore(rdb, "")
		sessStore = redisStore
		checks["redis"] = redisStore.Ping
	}

	sessions := session.NewManager(sessStore,
		session.WithCookieName(cfg.Session.CookieName),
		session.WithTTL(cfg.Session.TTL),
		session.WithSecure(cfg.Session.Secure),
	)
	server, err := httpapp.NewServer(httpapp.Deps{
		Store:    st,
		Auth:     auth.NewService(st, newHasher(cfg.Password)),
		Sessions: sessions,
		Cookies:  cookie.New(cookie.WithSecret(cfg.SecretKey), cookie.WithSecure(cfg.Session.Secure)),
		Limiter:  rate.NewMemory(),
		Metrics:  metrics.New(),
		Logger:   log,
		Checks:   checks,
		Config:   cfg,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	sweeper, err := session.NewSweeper(sessStore, cfg.Session.SweepSchedule, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("blog listening", slog.String("addr", cfg.Addr), slog.String("session_store", cfg.Session.Store))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweeper.Start()
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sweeper.Stop(stopCtx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Open applies pending migrations.
	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()
	v, err := st.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.DBPath, v)
	return nil
}

func newHasher(cfg config.PasswordConfig) auth.Hasher {
	if cfg.Method == config.PasswordBcrypt {
		return auth.BcryptHasher{Cost: cfg.BcryptCost}
	}
	return auth.PBKDF2Hasher{Iterations: cfg.Iterations, SaltLength: cfg.SaltLength}
}

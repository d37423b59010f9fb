// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/domain/ports/adapter"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/adapters/membership"
	mystore "learnpress-facade/internal/infra/db/mysql"
	pg "learnpress-facade/internal/infra/db/postgres"
	"learnpress-facade/internal/infra/db/wpdb"
	"learnpress-facade/internal/infra/api"
	"learnpress-facade/internal/infra/i18n"
	"learnpress-facade/internal/infra/logging"
	"learnpress-facade/internal/infra/metrics"
	"learnpress-facade/internal/infra/ratelimit"
	red "learnpress-facade/internal/infra/redis"
	"learnpress-facade/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Record store ----
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("store")
	}
	defer st.close()

	// ---- Membership service (optional) ----
	var (
		svc     adapter.MembershipService
		checker adapter.MembershipChecker
	)
	if cfg.Membership.Enabled() {
		client, err := membership.NewClient(cfg.Membership)
		if err != nil {
			logger.Fatal().Err(err).Msg("membership client")
		}
		svc, checker = client, client
		logger.Info().Str("base_url", cfg.Membership.BaseURL).Msg("membership service configured")
	} else {
		logger.Warn().Msg("membership.base_url not set; subscription routes will answer 503")
	}

	// ---- Rate limiting ----
	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	// ---- Use cases ----
	certUC := usecase.NewCertificateUseCase(st.certs, st.users, st.courses, logger)
	subUC := usecase.NewSubscriptionUseCase(svc, checker, st.users, logger)

	// ---- HTTP ----
	tr, err := i18n.NewTranslatorWithFallback(i18n.LocalesFS, cfg.Site.Locale)
	if err != nil {
		logger.Fatal().Err(err).Msg("translations")
	}
	srv := api.NewServer(certUC, subUC, api.NewIdentity(cfg.Auth), limiter, tr, cfg.HTTP, logger)
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("namespace", cfg.HTTP.Namespace).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

type stores struct {
	certs   repository.CertificateRepository
	users   repository.UserDirectory
	courses repository.CourseDirectory
	close   func()
}

// openStore connects the configured engine and exposes its pool to Prometheus.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*stores, error) {
	settings := wpdb.NewSettings(cfg.Store, cfg.Site)
	if settings.UploadBaseURL == "" {
		logger.Warn().Msg("site.upload_base_url not set; certificate file_url will be empty")
	}

	switch cfg.Store.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		prometheus.MustRegister(metrics.NewPoolCollector("postgres", pg.PoolStats(pool)))
		return &stores{
			certs:   pg.NewCertificateRepo(pool, settings, logger),
			users:   pg.NewUserDirectory(pool, settings),
			courses: pg.NewCourseDirectory(pool, settings),
			close:   pool.Close,
		}, nil
	default:
		db, err := mystore.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		prometheus.MustRegister(metrics.NewPoolCollector("mysql", mystore.PoolStats(db)))
		return &stores{
			certs:   mystore.NewCertificateRepo(db, settings, logger),
			users:   mystore.NewUserDirectory(db, settings),
			courses: mystore.NewCourseDirectory(db, settings),
			close:   func() { _ = db.Close() },
		}, nil
	}
}

// newLimiter prefers a shared Redis window and falls back to in-process
// buckets when Redis is not configured or unreachable.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (ratelimit.Limiter, func()) {
	perMinute := cfg.RateLimit.VerifyPerMinute
	if perMinute <= 0 {
		logger.Info().Msg("certificate verification is not rate limited")
		return nil, func() {}
	}
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err == nil {
			logger.Info().Int("per_minute", perMinute).Msg("rate limiter: redis")
			return ratelimit.NewRedis(red.NewRateLimiter(rc), "verify", perMinute), func() { _ = rc.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limiter")
	}
	logger.Info().Int("per_minute", perMinute).Msg("rate limiter: local")
	return ratelimit.NewLocal(perMinute), func() {}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/config"
	"github.com/ErlanBelekov/pharmacy-auth/internal/email"
	"github.com/ErlanBelekov/pharmacy-auth/internal/health"
	"github.com/ErlanBelekov/pharmacy-auth/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/pharmacy-auth/internal/log"
	"github.com/ErlanBelekov/pharmacy-auth/internal/metrics"
	"github.com/ErlanBelekov/pharmacy-auth/internal/otp"
	"github.com/ErlanBelekov/pharmacy-auth/internal/password"
	"github.com/ErlanBelekov/pharmacy-auth/internal/token"
	httptransport "github.com/ErlanBelekov/pharmacy-auth/internal/transport/http"
	"github.com/ErlanBelekov/pharmacy-auth/internal/transport/http/handler"
	"github.com/ErlanBelekov/pharmacy-auth/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)

	// registration resolves the "User" role, so make sure the role set exists
	seeded, err := roleRepo.Seed(ctx, postgres.DefaultRoles)
	if err != nil {
		log.Fatalf("seed roles: %v", err)
	}
	if seeded > 0 {
		logger.Info("roles seeded", "count", seeded)
	}

	issuer := token.NewIssuer([]byte(cfg.JWTSecret))
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	dispatcher := email.NewDispatcher(sender, cfg.BackendURL, cfg.FrontendURL)

	authUsecase := usecase.NewAuthUsecase(
		userRepo,
		roleRepo,
		password.NewHasher(cfg.BcryptCost),
		otp.NewGenerator(),
		issuer,
		dispatcher,
	)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Logger:      logger,
			AuthHandler: handler.NewAuthHandler(authUsecase, cfg.FrontendURL, logger),
			UserHandler: handler.NewUserHandler(),
			Users:       userRepo,
			Tokens:      issuer,
			FrontendURL: cfg.FrontendURL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

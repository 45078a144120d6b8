package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/healthvault/internal/cache"
	"github.com/geocoder89/healthvault/internal/config"
	"github.com/geocoder89/healthvault/internal/db"
	httpx "github.com/geocoder89/healthvault/internal/http"
	"github.com/geocoder89/healthvault/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	// tracing is best effort: a missing collector must not block startup
	shutdownTracer, err := observability.InitTracer(ctx, "healthvault-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	var pool *pgxpool.Pool

	if cfg.StoreBackend == config.BackendPostgres {
		if err := db.RunMigrations(cfg.DBURL); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		pool, err = db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		defer pool.Close()

		seedCtx, cancel := config.WithTimeout(5 * time.Second)

		if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
		}

		cancel()
	} else {
		log.Info("using in-memory store backend")
	}

	var listCache *cache.Cache

	if cfg.RedisAddr != "" {
		listCache = cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)

		if err := listCache.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, listing cache disabled", "err", err)
			_ = listCache.Close()
			listCache = nil
		}

		cancel()

		if listCache != nil {
			defer listCache.Close()
		}
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:       cfg,
		Log:       log,
		Pool:      pool,
		Prom:      prom,
		PromReg:   promReg,
		ListCache: listCache,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "backend", cfg.StoreBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		_ = shutdownTracer(sctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

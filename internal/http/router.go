package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/healthvault/internal/accessctl"
	"github.com/geocoder89/healthvault/internal/auth"
	"github.com/geocoder89/healthvault/internal/cache"
	"github.com/geocoder89/healthvault/internal/config"
	"github.com/geocoder89/healthvault/internal/http/handlers"
	"github.com/geocoder89/healthvault/internal/http/middlewares"
	"github.com/geocoder89/healthvault/internal/ingest"
	"github.com/geocoder89/healthvault/internal/observability"
	"github.com/geocoder89/healthvault/internal/repo/memory"
	"github.com/geocoder89/healthvault/internal/repo/postgres"
	"github.com/geocoder89/healthvault/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router needs wired in. Pool is nil for the
// in-memory backend; ListCache is nil when redis is not configured.
type Deps struct {
	Cfg       config.Config
	Log       *slog.Logger
	Pool      *pgxpool.Pool
	Prom      *observability.Prom
	PromReg   *prometheus.Registry
	ListCache *cache.Cache
}

func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Cfg

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware("healthvault-api"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if deps.PromReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.PromReg, promhttp.HandlerOpts{})))
	}

	// wire up repositories for the selected backend

	type reportsBackend interface {
		accessctl.ReportStore
		wallet.ReportStore
	}

	var (
		users      wallet.UserStore
		userWriter handlers.UserWriter
		reports    reportsBackend
		grants     accessctl.GrantStore
		vitals     wallet.VitalStore
		jobsRepo   *postgres.JobsRepo
	)

	if cfg.StoreBackend == config.BackendMemory || deps.Pool == nil {
		usersRepo := memory.NewUsersRepo()
		users = usersRepo
		userWriter = usersRepo
		reports = memory.NewReportsRepo()
		grants = memory.NewGrantsRepo()
		vitals = memory.NewVitalsRepo()
	} else {
		usersRepo := postgres.NewUsersRepo(deps.Pool)
		users = usersRepo
		userWriter = usersRepo
		reports = postgres.NewReportsRepo(deps.Pool, deps.Prom)
		grants = postgres.NewGrantsRepo(deps.Pool)
		vitals = postgres.NewVitalsRepo(deps.Pool)
		jobsRepo = postgres.NewJobsRepo(deps.Pool, deps.Prom)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	gate := accessctl.NewGate(reports, grants, users)

	extractor := ingest.NewProtectedExtractor(
		ingest.NewMockExtractor(cfg.IngestDelay),
		cfg.IngestTimeout,
	)

	svc := wallet.NewService(users, reports, vitals, gate, extractor, deps.Log)

	if jobsRepo != nil {
		svc = svc.WithJobs(jobsRepo)
	}

	if deps.ListCache != nil {
		svc = svc.WithCache(deps.ListCache)
	}

	if deps.Prom != nil {
		svc = svc.WithProm(deps.Prom)
	}

	// handlers

	authHandler := handlers.NewAuthHandler(users, userWriter, jwtManager)
	reportsHandler := handlers.NewReportsHandler(svc)
	vitalsHandler := handlers.NewVitalsHandler(svc)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	// credential endpoints: JSON only, rate limited by IP

	authRoutes := r.Group("/auth")
	authRoutes.Use(middlewares.RequireJSON())
	authRoutes.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// bearer-protected wallet surface

	protected := r.Group("/")
	protected.Use(authMW.RequireAuth())

	protected.GET("/reports", reportsHandler.List)
	protected.POST("/reports", reportsHandler.Upload)
	protected.GET("/reports/:id", reportsHandler.GetByID)
	protected.POST("/reports/share", middlewares.RequireJSON(), reportsHandler.Share)

	protected.GET("/vitals", vitalsHandler.List)
	protected.POST("/vitals", middlewares.RequireJSON(), vitalsHandler.Create)

	return r
}

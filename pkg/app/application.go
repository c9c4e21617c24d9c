package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clubhouse/internal/health"
	"clubhouse/pkg/config"
	"clubhouse/pkg/contracts"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	opsHandler       http.Handler
	appHandler       http.Handler
	shutdownHooks    []func() error
}

func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{cfg: cfg, metrics: m}
}

// OnShutdown registers fn to run after the HTTP server has drained.
func (a *Application) OnShutdown(fn func() error) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setOpsHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler exposes the assembled mux.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setOpsHandler() {
	checks := map[string]health.Check{}
	if a.cfg.Client != nil && a.cfg.Client.Mongo != nil {
		checks["mongo"] = health.MongoCheck(a.cfg.Client.Mongo)
	}
	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		checks["redis"] = health.RedisCheck(a.cfg.Client.Redis)
	}

	opsRouter := httprouter.New()
	health.NewHandler(a.cfg.Log, checks).RegisterRoutes(opsRouter)
	if a.cfg.MetricsEnabled && a.metrics != nil {
		opsRouter.Handler(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	var h http.Handler = opsRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.opsHandler = h
	a.cfg.Log.Info("Ops endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(appRouter)
	}

	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
		a.cfg.Log.Info("Idempotency keys stored in Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL, nil)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.TrustedClientAddress(a.cfg.TrustedProxies),
		nil,
		a.cfg.Log,
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.DefaultIdempotencyHeader, middleware.HeaderRequestID},
		ExposedHeaders: []string{"X-Total-Count", middleware.HeaderRequestID},
	})

	// Recovery → Logging → Metrics → CORS → MaxSize → ContentType → RateLimit → Timeout → Idempotency → Router
	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = corsHandler.Handler(h)
	h = a.metrics.Middleware()(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.opsHandler)
	mux.Handle("/ready", a.opsHandler)
	mux.Handle("/metrics", a.opsHandler)
	mux.Handle("/", a.appHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}
	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.Stop()
	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}

// Stop releases background workers and runs shutdown hooks.
func (a *Application) Stop() {
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	for _, hook := range a.shutdownHooks {
		if err := hook(); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}
}

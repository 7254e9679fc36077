// Package main is the entrypoint for the FoodFlame storefront API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/foodflame/storefront/internal/auth"
	"github.com/foodflame/storefront/internal/cache"
	"github.com/foodflame/storefront/internal/catalog"
	"github.com/foodflame/storefront/internal/config"
	"github.com/foodflame/storefront/internal/handler"
	"github.com/foodflame/storefront/internal/menu"
	"github.com/foodflame/storefront/internal/metrics"
	"github.com/foodflame/storefront/internal/middleware"
	"github.com/foodflame/storefront/internal/notify"
	"github.com/foodflame/storefront/internal/server"
	"github.com/foodflame/storefront/internal/session"
	"github.com/foodflame/storefront/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// deps holds the long-lived components built from configuration.
type deps struct {
	kv       storage.KV
	redis    *redis.Client
	cache    *cache.Cache
	recorder *metrics.PrometheusRecorder
	shutdown []namedShutdown
}

type namedShutdown struct {
	name string
	fn   server.ShutdownFunc
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	d := &deps{recorder: metrics.NewPrometheus()}

	if cfg.UsesRedis() {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return fmt.Errorf("redis: %w", err)
		}
		d.redis = client
		d.cache = cache.New(client, cfg.KVPrefix)
		d.shutdown = append(d.shutdown, namedShutdown{"redis", func(context.Context) error {
			return client.Close()
		}})
		logger.Info("connected to Redis")
	}

	kv, err := openStorage(ctx, cfg, d, logger)
	if err != nil {
		return err
	}
	d.kv = kv

	store := session.NewStore(session.Config{
		KV:       d.kv,
		Hasher:   auth.NewArgon2Hasher(auth.DefaultParams()),
		Notifier: notify.NewDispatcher(logger),
		Metrics:  d.recorder,
		Logger:   logger,
	})
	if err := store.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	provider := menu.NewProvider(menu.Config{
		Source:   menuSource(cfg, d, logger),
		MaxPages: cfg.MenuMaxPages,
		Logger:   logger,
		Metrics:  d.recorder,
	})
	items := provider.FetchInitial(ctx)
	logger.Info("menu loaded", "items", len(items), "source", cfg.MenuSource)

	r := setupRouter(cfg, d, store, provider, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	for _, s := range d.shutdown {
		srv.OnShutdown(s.name, s.fn)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage", cfg.StorageBackend,
	)

	return srv.Run(ctx)
}

// openStorage returns the KV backend selected by STORAGE_BACKEND.
func openStorage(ctx context.Context, cfg *config.Config, d *deps, logger *slog.Logger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		return storage.NewRedis(d.redis, cfg.KVPrefix), nil
	case config.StoragePostgres:
		pg, err := storage.NewPostgres(ctx, cfg.DatabaseURL, cfg.KVTable)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, fmt.Errorf("postgres: %w", err)
		}
		d.shutdown = append(d.shutdown, namedShutdown{"postgres", func(context.Context) error {
			pg.Close()
			return nil
		}})
		logger.Info("connected to database")
		return pg, nil
	default:
		logger.Warn("using in-memory storage; users are lost on restart")
		return storage.NewMemory(), nil
	}
}

// menuSource returns the page source selected by MENU_SOURCE.
func menuSource(cfg *config.Config, d *deps, logger *slog.Logger) menu.Source {
	if cfg.MenuSource != config.MenuSourceCatalog {
		return menu.StaticSource{}
	}

	var c catalog.Catalog = catalog.NewClient(cfg.CatalogBaseURL, catalog.NewHTTPClient(), d.recorder)
	c = catalog.NewRetrying(c, cfg.CatalogMaxAttempts, logger)
	if d.cache != nil && cfg.CatalogCacheTTL > 0 {
		c = catalog.NewCached(c, d.cache, cfg.CatalogCacheTTL, logger)
	}
	return menu.NewCatalogSource(c, cfg.CatalogCategories, cfg.CatalogItemsPerCategory)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	cfg *config.Config,
	d *deps,
	store *session.Store,
	provider *menu.Provider,
	logger *slog.Logger,
) *chi.Mux {
	h := handler.New()
	sessionHandler := handler.NewSessionHandler(store, logger)
	menuHandler := handler.NewMenuHandler(provider, logger)

	checks := map[string]handler.HealthChecker{"storage": d.kv, "redis": nil}
	if d.cache != nil {
		checks["redis"] = d.cache
	}
	healthHandler := handler.NewHealthHandler(checks)

	var limiter middleware.Limiter
	if d.cache != nil {
		limiter = cache.NewIPLimiter(d.cache, cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	} else {
		limiter = middleware.NewMemoryLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	}
	rateLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Enabled: cfg.RateLimitAuthEnabled,
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Notifications)

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Handle("/metrics", d.recorder.Handler())
	r.Get("/", h.Info)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", sessionHandler.Signup)
			r.With(rateLimit).Post("/login", sessionHandler.Login)
			r.Post("/logout", sessionHandler.Logout)
			r.With(rateLimit).Post("/reset-password", sessionHandler.ResetPassword)
		})

		r.Get("/session", sessionHandler.Session)
		r.Patch("/profile", sessionHandler.UpdateProfile)

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menuHandler.Get)
			r.Get("/categories", menuHandler.Categories)
			r.Post("/refresh", menuHandler.Refresh)
			r.Post("/more", menuHandler.More)
			r.Put("/filter", menuHandler.Filter)
			r.Post("/scroll", menuHandler.Scroll)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/docsum/transcript-summary/internal/config"
	"github.com/docsum/transcript-summary/internal/middleware"
	"github.com/docsum/transcript-summary/internal/modules/summarize/relay"
	"github.com/docsum/transcript-summary/internal/modules/web/page"
	pkgredis "github.com/docsum/transcript-summary/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	redis   *pkgredis.Client
	counter middleware.WindowCounter
}

// loopbackProxies may set X-Forwarded-For. The page handler reaches the relay
// through ProxyEndpoint on loopback and forwards the browser's address.
var loopbackProxies = []string{"127.0.0.1", "::1"}

// New initializes the application: config → Redis (optional) → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var rc *pkgredis.Client
	if cfg.RateLimitEnabled() {
		client, err := pkgredis.Connect(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			rc = client
		}
	}

	var counter middleware.WindowCounter
	if rc != nil {
		counter = rc
	}
	app, err := newApp(logger, cfg, counter)
	if err != nil {
		if rc != nil {
			_ = rc.Close()
		}
		return nil, err
	}
	app.redis = rc
	return app, nil
}

func newApp(logger *zap.Logger, cfg *config.AppConfig, counter middleware.WindowCounter) (*App, error) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	if err := router.SetTrustedProxies(loopbackProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(middleware.RequestID())
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(newCORS(cfg))

	app := &App{cfg: cfg, router: router, logger: logger, counter: counter}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the Redis pool if one was opened.
func (a *App) Shutdown() {
	if a.redis == nil {
		return
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
}

func (a *App) relayHandler() *relay.Handler {
	client := relay.NewClient(a.cfg.Backend.URL, &http.Client{Timeout: a.cfg.Backend.Timeout}, a.logger)
	return relay.NewHandler(client, a.logger)
}

func (a *App) pageHandler() *page.Handler {
	return page.NewHandler(page.NewHTTPSubmitter(a.cfg.ProxyEndpoint, &http.Client{}), a.logger)
}

func (a *App) rateLimiter() gin.HandlerFunc {
	if a.counter == nil {
		return middleware.RateLimit(nil, 0, a.logger)
	}
	return middleware.RateLimit(a.counter, a.cfg.RateLimit.PerMinute, a.logger)
}

var processStart = time.Now()

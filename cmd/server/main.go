package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsum/transcript-summary/internal/app"
	"github.com/docsum/transcript-summary/internal/config"
	"github.com/docsum/transcript-summary/internal/pkg/nativelog"
	"github.com/docsum/transcript-summary/internal/pkg/prettylog"
	"github.com/docsum/transcript-summary/internal/pkg/proctitle"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	dotenvPath := flag.String("env-file", config.DefaultDotenvPath, "Path to .env file")
	flag.Parse()

	dotenvLoaded, dotenvErr := config.LoadDotenv(*dotenvPath)

	cfg, cfgErr := config.Load(*configPath, config.Environ())
	logDir := cfg.LogDir()
	debug := cfgErr == nil && cfg.IsDev()

	logger, err := nativelog.NewZapLogger(nativelog.Options{
		Dir:   logDir,
		Debug: debug,
		Color: prettylog.ShouldColor(),
	})
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("native log pipeline unavailable, fallback to zap production logger", zap.Error(err))
	}
	defer logger.Sync()

	if dotenvErr != nil {
		logger.Fatal("failed to load .env", zap.String("path", *dotenvPath), zap.Error(dotenvErr))
	}
	if cfgErr != nil {
		logger.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(cfgErr))
	}
	if dotenvLoaded {
		logger.Debug("loaded .env", zap.String("path", *dotenvPath))
	}

	if err := proctitle.Set(cfg.ProcessTitle); err != nil {
		logger.Debug("set process title", zap.Error(err))
	}

	if !cfg.BackendConfigured() {
		logger.Warn("summarizer backend URL is not configured, /api/summarize will fail",
			zap.String("env", config.BackendURLEnv))
	}

	application, err := app.New(logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    application.Addr(),
		Handler: application.Router(),
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), prettylog.StartField())
		logger.Info("summary form ready", zap.String("url", "http://localhost"+srv.Addr+"/"), prettylog.ReadyField())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	application.Shutdown()
	logger.Info("server exited")
}

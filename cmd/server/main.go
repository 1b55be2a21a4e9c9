package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/compliance-audit/backend/internal/api"
	"github.com/compliance-audit/backend/internal/audit"
	"github.com/compliance-audit/backend/internal/batch"
	"github.com/compliance-audit/backend/internal/config"
	"github.com/compliance-audit/backend/internal/imaging"
	"github.com/compliance-audit/backend/internal/session"
	"github.com/compliance-audit/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "audit-server",
		Short:   "Compliance audit assistant backend",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config.yaml", "path to YAML config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Credentials come from the environment; a local .env is optional.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Initialize session manager and background cleanup.
	sessionMgr := session.NewManager()
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Session.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessionMgr.CleanupOldSessions(time.Duration(cfg.Session.TimeoutMinutes) * time.Minute); n > 0 {
				logger.Info("session.cleanup", "removed", n)
			}
		}
	}()

	// External AI collaborators. The audit client surfaces credential
	// problems at call time; the image editor is optional.
	auditor := audit.NewClient(audit.Config{
		BaseURL: cfg.Audit.BaseURL,
		Model:   cfg.Audit.Model,
		Timeout: time.Duration(cfg.Audit.TimeoutSeconds) * time.Second,
	}, logger)

	var editor api.ImageEditor
	if ed, err := imaging.NewEditor(context.Background(), "", cfg.Image.Model); err != nil {
		logger.Warn("image editing disabled", "reason", err)
	} else {
		editor = ed
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Sessions:  sessionMgr,
		Processor: batch.NewProcessor(logger),
		Auditor:   auditor,
		Editor:    editor,
		Logger:    logger,
		Version:   Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/report") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := splitOrigins(cfg.Server.AllowOrigins)
		if len(origins) == 0 {
			// Development default - local frontend dev servers only.
			origins = []string{
				"http://localhost:5173", "http://127.0.0.1:5173",
				"http://localhost:3000", "http://127.0.0.1:3000",
			}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		} else {
			logger.Info("serving embedded frontend from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("compliance audit assistant starting",
		"version", Version,
		"listen", cfg.GetServerAddr(),
		"audit_model", cfg.Audit.Model,
		"image_editing", editor != nil)

	return e.StartServer(s)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

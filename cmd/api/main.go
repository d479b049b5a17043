package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"slate-api/internal/config"
	"slate-api/internal/middleware"
	"slate-api/internal/routers"
	"slate-api/internal/shared"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Flags / ENV Variables
	host := flag.String("host", "", "Bind address")
	port := flag.String("port", "", "Bind port")
	mode := flag.String("mode", "", "dev or prod")

	provider := flag.String("provider", "", "Vision provider: openrouter or gemini")
	openrouterAPIKey := flag.String("openrouter-api-key", "", "OpenRouter api key")
	openrouterBaseURL := flag.String("openrouter-base-url", "", "OpenRouter base url")
	geminiAPIKey := flag.String("gemini-api-key", "", "Gemini api key")
	model := flag.String("model", "", "Vision model name")

	maxImagePixels := flag.Int("max-image-pixels", 0, "Decoded pixel cap per image")
	allowedImageFormats := flag.String("allowed-image-formats", "", "Comma separated image format allow-list")
	upstreamTimeout := flag.Duration("upstream-timeout", 0, "Timeout for the model call")

	corsOrigins := flag.String("cors-origins", "", "Comma separated CORS origins")
	metricsAPIKey := flag.String("metrics-api-key", "", "Metrics api key")
	logFile := flag.String("log-file", "app.log", "Additional log output path, empty disables")

	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	cfg := &config.Config{
		Host:              *host,
		Port:              *port,
		Mode:              *mode,
		Provider:          *provider,
		OpenRouterAPIKey:  *openrouterAPIKey,
		OpenRouterBaseURL: *openrouterBaseURL,
		GeminiAPIKey:      *geminiAPIKey,
		Model:             *model,
		MaxImagePixels:    *maxImagePixels,
		AllowedFormats:    config.SplitList(*allowedImageFormats),
		UpstreamTimeout:   *upstreamTimeout,
		CORSOrigins:       config.SplitList(*corsOrigins),
		MetricsAPIKey:     *metricsAPIKey,
		LogFile:           *logFile,
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.Mode == "prod" {
		zcfg := zap.NewProductionConfig()
		if cfg.LogFile != "" {
			zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.LogFile)
		}
		logger, err = zcfg.Build()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if cfg.Mode == "dev" {
		zcfg := zap.NewDevelopmentConfig()
		if cfg.LogFile != "" {
			zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.LogFile)
		}
		logger, err = zcfg.Build()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()

	e := echo.New()
	e.GET(("/ping"), func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.RequireMetricsKey(cfg.MetricsAPIKey))
	base := e.Group("")
	base.Use(emw.CORSWithConfig(emw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	base.Use(middleware.NewRecoverMiddleware(log))
	base.Use(middleware.NewTrackMiddleware(log))

	// Register routes
	routers.RegisterFrontendRoutes(base)
	err = routers.RegisterCalculateRoutes(base, cfg)
	if err != nil {
		panic(err)
	}

	log.Infow("Starting server",
		"host", cfg.Host,
		"port", cfg.Port,
		"mode", cfg.Mode,
		"provider", cfg.Provider,
		"model", cfg.Model,
	)

	go func() {
		if err := e.Start(cfg.Host + ":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

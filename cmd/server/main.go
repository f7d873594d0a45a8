package main

import (
	"fmt"
	"os"

	"github.com/DaviiSA/JA-app/internal/api"
	"github.com/DaviiSA/JA-app/internal/config"
	"github.com/DaviiSA/JA-app/internal/form"
	"github.com/DaviiSA/JA-app/internal/llm"
	"github.com/DaviiSA/JA-app/internal/logging"
	"github.com/DaviiSA/JA-app/internal/middleware"
	"github.com/DaviiSA/JA-app/internal/photo"
	"github.com/DaviiSA/JA-app/internal/report"
	"github.com/DaviiSA/JA-app/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	provider := llm.NewProvider(cfg.LLM, logger)
	generator := report.NewGenerator(provider, logger)
	decoder := photo.NewDecoderWithLimit(cfg.PhotoDecodeConcurrency)

	sessions, err := session.NewStore(cfg.SessionCapacity, func() *form.Controller {
		return form.NewController(generator, form.WithDecoder(decoder))
	})
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-Id"},
	}))

	api.RegisterRoutes(router, api.Dependencies{
		Sessions:                  sessions,
		Generator:                 generator,
		Logger:                    logger,
		SessionRateLimitPerMinute: cfg.SessionRateLimitPerMin,
		MaxUploadBytes:            cfg.MaxUploadBytes,
	})

	logger.Info("starting report server",
		zap.String("addr", cfg.Addr()),
		zap.String("env", cfg.Env),
		zap.String("provider", generator.ProviderName()),
	)
	if err := router.Run(cfg.Addr()); err != nil {
		logger.Fatal("failed to start server", zap.String("addr", cfg.Addr()), zap.Error(err))
	}
}

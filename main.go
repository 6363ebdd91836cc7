package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"payhost-backend/config"
	"payhost-backend/internal/api"
	"payhost-backend/internal/database"
	"payhost-backend/internal/payment"
	"payhost-backend/internal/services"
	"payhost-backend/internal/utils"
	"payhost-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Debug events published to Redis carry W3C trace context.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	utils.SetJWTSecret(cfg.JWTSecret)

	if _, err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}

	registry := payment.NewRegistry()
	if err := services.LoadPlugins(registry, cfg.PaymentPlugins, cfg.PaymentSandbox); err != nil {
		logger.Log.Fatal("failed to load payment plugins", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without Redis the instance still serves; debug changes made elsewhere
	// only reach it on restart.
	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Warn("redis unavailable, cross-instance debug sync disabled", zap.Error(err))
	} else {
		defer database.CloseRedis()
		stopSync, err := services.StartDebugSync(ctx, registry)
		if err != nil {
			logger.Log.Fatal("failed to start debug sync", zap.Error(err))
		}
		defer stopSync()
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      api.NewRouter(registry, cfg.CORSOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.Int("plugins", registry.Len()),
			zap.Bool("sandbox_default", cfg.PaymentSandbox),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}

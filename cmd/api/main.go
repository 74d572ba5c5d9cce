package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conference-api/config"
	"conference-api/controllers"
	"conference-api/middleware"
	"conference-api/routes"
	"conference-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	taxonomy, err := services.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		logger.Fatal("taxonomy", zap.Error(err))
	}

	var mailer services.Mailer
	if m := config.NewMailer(cfg.SMTP); m != nil {
		mailer = m
	} else {
		logger.Info("SMTP not configured, notifications disabled")
	}
	notifier := services.NewNotifier(mailer, cfg.AdminNotifyEmail, logger.Named("mail"))

	auth := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpireHours, cfg.AdminEmail, cfg.AdminPasswordHash)
	api := controllers.NewAPI(db, taxonomy, auth, services.Options{
		Timeout:      cfg.StoreTimeout,
		BulkMaxItems: cfg.BulkMaxItems,
		Logger:       logger,
		Notifier:     notifier,
	}, cfg.IsProduction())

	// Set Gin mode
	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	routes.SetupRoutes(router, api)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.Int("tracks", len(taxonomy.Tracks())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	notifier.Wait()
}

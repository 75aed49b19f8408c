package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"passportdesk/internal/config"
	"passportdesk/internal/database"
	"passportdesk/internal/domain/application"
	"passportdesk/internal/domain/audit"
	"passportdesk/internal/domain/document"
	"passportdesk/internal/middleware"
	jwtsvc "passportdesk/internal/pkg/jwt"
	"passportdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&application.Application{}, &audit.Log{}); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	store, err := storage.NewDiskStore(cfg.StorageDir, cfg.PublicBaseURL, cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	appRepo := application.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	feed := audit.NewHub()
	writer := audit.NewWriter(auditRepo, appRepo, feed)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(auditService)
	feedHandler := audit.NewFeedHandler(feed, j)

	cache := document.NewCache(appRepo, store, cfg.CredentialTTL, cfg.RefreshInterval)
	docService := document.NewService(appRepo, store, writer, cache, cfg.PublicBaseURL)
	docHandler := document.NewHandler(docService)

	ctx := context.Background()
	stopRefresh := cache.Start(ctx)
	defer close(stopRefresh)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/download/:token", storage.DownloadHandler(store))

	v1 := r.Group("/api/v1")
	{
		// live feed authenticates itself via token query param
		audit.RegisterFeed(v1, feedHandler)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j), middleware.RequireAdmin())
		{
			document.RegisterRoutes(protected, docHandler)
			audit.RegisterRoutes(protected, auditHandler)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

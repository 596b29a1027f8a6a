package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motogarage/motogarage-server/internal/api"
	"github.com/motogarage/motogarage-server/internal/config"
	"github.com/motogarage/motogarage-server/internal/logger"
	"github.com/motogarage/motogarage-server/internal/repository"
	"github.com/motogarage/motogarage-server/internal/service"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	zlog, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, zlog)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger(zlog))

	// Inject the identity-provider verification settings
	router.Use(func(c *gin.Context) {
		c.Set("authSecret", []byte(cfg.Auth.TokenSecret))
		c.Set("authProvider", cfg.Auth.Provider)
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	zlog.Sugar().Infof("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

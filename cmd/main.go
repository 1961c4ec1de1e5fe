package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinlab-backend/internal/config"
	"kinlab-backend/internal/handler"
	"kinlab-backend/internal/kinetics"
	"kinlab-backend/internal/service"
	"kinlab-backend/internal/store"
	"kinlab-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	client := kinetics.NewClient(cfg.Kinetics)
	sessionStore := store.NewMemoryStore()
	mechanismService := service.NewMechanismService(client, sessionStore)
	mechanismHandler := handler.NewMechanismHandler(mechanismService)

	router := setupRouter(cfg, mechanismHandler)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("server listening on port %d, kinetics service at %s", cfg.Server.Port, cfg.Kinetics.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	if err := server.Close(); err != nil {
		logger.Errorf("server close failed: %v", err)
	}
	logger.Info("server stopped")
}

func setupRouter(cfg *config.Config, mechanismHandler *handler.MechanismHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/mechanism", mechanismHandler.Upload)
		api.GET("/mechanism", mechanismHandler.GetSession)
		api.POST("/rates", mechanismHandler.GetRates)
		api.POST("/plots", mechanismHandler.GetPlot)
	}

	// browser UI
	router.Static("/web", cfg.Web.StaticDir)
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/web/index.html")
	})

	return router
}

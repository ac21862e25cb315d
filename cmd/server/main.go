package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facility_dashboard_backend/internal/config"
	"facility_dashboard_backend/internal/database"
	"facility_dashboard_backend/internal/router"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/internal/store/memory"
	"facility_dashboard_backend/internal/store/postgres"
	"facility_dashboard_backend/internal/store/postgrest"
	"facility_dashboard_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.JWTSecretGenerated {
		utils.LogWarn("JWT_SECRET is not set, using a random secret; admin sessions end on restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		utils.LogError(err, "Failed to open store", map[string]interface{}{"backend": cfg.StoreBackend})
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			utils.LogError(err, "Failed to close store")
		}
	}()

	passphraseHash, err := cfg.PassphraseHash()
	if err != nil {
		utils.LogError(err, "Invalid admin passphrase configuration")
		os.Exit(1)
	}
	jwtManager, err := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		utils.LogError(err, "Failed to create JWT manager")
		os.Exit(1)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(ctx, engine, backend, router.Options{
		JWTManager:     jwtManager,
		PassphraseHash: passphraseHash,
		Location:       cfg.Location(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":     cfg.Port,
			"backend":  cfg.StoreBackend,
			"timezone": cfg.Location().String(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			utils.LogError(err, "Server failed")
			return
		}
	case <-ctx.Done():
		utils.LogInfo("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Graceful shutdown failed")
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.RunMigrations {
			if err := database.RunMigrations(db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return postgres.NewBackend(db), nil
	case config.StorePostgrest:
		return postgrest.NewBackend(postgrest.Config{
			BaseURL: cfg.Postgrest.URL,
			APIKey:  cfg.Postgrest.APIKey,
			Timeout: cfg.Postgrest.Timeout,
		}), nil
	case config.StoreMemory:
		utils.LogWarn("Using the in-memory store; data is lost on restart")
		return memory.NewBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"craftopia/docs"
	"craftopia/internal/auth"
	"craftopia/internal/cache"
	"craftopia/internal/config"
	"craftopia/internal/db"
	"craftopia/internal/handler"
	"craftopia/internal/repository"
	"craftopia/internal/router"
	"craftopia/internal/service"
	"craftopia/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Craftopia API
// @version 1.0
// @description Handcrafted decor catalog with categories, image uploads and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	dbClient, err := db.NewMySQL(startCtx, cfg.MySQLDSN, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        !cfg.IsProduction(),
	})
	cancel()
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := dbClient.Reset(); err != nil {
			logger.Fatal("reset database", zap.Error(err))
		}
	}
	if err := dbClient.Migrate(); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	store, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	optional := map[string]handler.Pinger{"redis": cacheClient}
	if store != nil {
		optional["storage"] = store
	} else {
		logger.Warn("S3 storage not configured, image uploads are disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbClient.DB)
	categoryRepo := repository.NewCategoryRepository(dbClient.DB)
	decorRepo := repository.NewDecorRepository(dbClient.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.RefreshSecret(), cfg.JWTExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo, decorRepo, cacheClient, logger)
	decorService := service.NewDecorService(decorRepo, categoryRepo, store, cacheClient, logger)

	e := echo.New()
	e.HidePort = true
	router.Register(e, cfg, logger, jwtService, userRepo, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger, cfg.IsProduction()),
		User:     handler.NewUserHandler(userService),
		Category: handler.NewCategoryHandler(categoryService),
		Decor:    handler.NewDecorHandler(decorService),
		Health:   handler.NewHealthHandler(dbClient, optional, cfg.AppEnv),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("swagger", "/swagger/index.html"),
		)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
	if err := cacheClient.Close(); err != nil {
		logger.Warn("close redis", zap.Error(err))
	}
	if err := dbClient.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

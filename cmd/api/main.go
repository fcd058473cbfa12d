package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"rango/internal/config"
	"rango/internal/db"
	apihttp "rango/internal/http"
	"rango/internal/media"
	"rango/internal/repository"
	"rango/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.SessionSecret == "" {
		logger.Fatal("session secret not configured")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	storage, err := media.NewLocalStorage(cfg.MediaDir)
	if err != nil {
		logger.Fatal("media storage", zap.Error(err))
	}

	var (
		sessionStore service.SessionStore
		loginLimiter service.LoginRateLimiter
		redisClient  *redis.Client
	)
	loginWindow := time.Duration(cfg.LoginWindowMinutes) * time.Minute
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, loginWindow, cfg.LoginMaxAttempts)
		}
		cancel()
	}
	if loginLimiter == nil {
		loginLimiter = service.NewLoginRateLimiter(loginWindow, cfg.LoginMaxAttempts)
	}

	tokens := service.NewSessionTokenService(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	sessions := service.NewSessionManager(logger, sessionStore, tokens)

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	pageRepo := repository.NewPgPageRepository(pool)

	userSvc := service.NewUserService(logger, userRepo, profileRepo, storage, loginLimiter)
	categorySvc := service.NewCategoryService(categoryRepo)
	pageSvc := service.NewPageService(pageRepo)

	tmpl, err := apihttp.ParseTemplates()
	if err != nil {
		logger.Fatal("parse templates", zap.Error(err))
	}

	rangoHandler := apihttp.NewRangoHandler(logger, categorySvc, pageSvc, userSvc)
	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessions)
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		Templates:  tmpl,
		Sessions:   sessions,
		Users:      userSvc,
		MediaDir:   storage.Root(),
		SSLEnabled: cfg.SSLEnabled,
	}, rangoHandler, authHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/girmmy/gimmyai/internal/config"
	"github.com/girmmy/gimmyai/internal/db"
	apihttp "github.com/girmmy/gimmyai/internal/http"
	"github.com/girmmy/gimmyai/internal/llm"
	"github.com/girmmy/gimmyai/internal/markdown"
	"github.com/girmmy/gimmyai/internal/repository"
	"github.com/girmmy/gimmyai/internal/service"
	"github.com/girmmy/gimmyai/internal/upload"
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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	persona, err := service.LoadPersona(cfg.PersonaPath)
	if err != nil {
		logger.Fatal("load persona", zap.Error(err))
	}

	completionClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.HistoryWindow, zap.NewStdLog(logger))
	uploader := upload.NewHTTPUploader(cfg.UploadEndpoint, cfg.UploadAPIKey, cfg.MaxUploadBytes)

	var (
		usageLimiter service.UploadUsageLimiter
		changeFeed   service.ChangeFeed = service.NewMemoryChangeFeed()
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			usageLimiter = service.NewRedisUploadUsageLimiter(redisClient, cfg.DailyUploadsMax)
			changeFeed = service.NewRedisChangeFeed(redisClient)
		}
		cancel()
	}

	chatSvc := service.NewChatService(logger, conversationRepo, messageRepo, completionClient, uploader, usageLimiter, changeFeed, persona)
	streamSvc := service.NewStreamService(messageRepo, changeFeed)
	sessionRegistry := service.NewSessionRegistry()
	jwtSvc := service.NewJWTService(cfg.JWTSecret, 24*time.Hour)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc, sessionRegistry, streamSvc, markdown.NewRenderer())
	router := apihttp.NewRouter(logger, jwtSvc, chatHandler, apihttp.RouterOptions{
		MaintenanceMode:     cfg.MaintenanceMode,
		MaintenanceScenario: cfg.MaintenanceScenario,
	})

	if cfg.MaintenanceMode {
		logger.Warn("maintenance mode active", zap.String("scenario", cfg.MaintenanceScenario))
	}

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

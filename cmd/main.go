package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"chatline/backend/internal/api/handler"
	"chatline/backend/internal/auth"
	"chatline/backend/internal/chathub"
	"chatline/backend/internal/config"
	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Call{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)
	authService := auth.NewService(store, cfg.JWTSecret, cfg.TokenTTL)

	hub := chathub.NewHub(store, cfg.CallRingTimeout)
	go hub.Run()
	hub.StartBusBridge(store.SubscribeEvents())

	r := gin.Default()
	h := handler.NewHandler(hub, store, authService)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/ws", h.ServeWebSocket)

	authorized := r.Group("/", h.AuthRequired())
	{
		authorized.GET("/users/me", h.Me)
		authorized.GET("/users", h.ListUsers)

		authorized.POST("/chats", h.CreateChat)
		authorized.GET("/chats", h.ListChats)
		authorized.GET("/chats/:id", h.GetChat)
		authorized.PUT("/chats/:id", h.UpdateChat)
		authorized.DELETE("/chats/:id", h.DeleteChat)
		authorized.GET("/chats/:id/messages", h.GetMessages)
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", server.Addr).Msg("starting chatline backend")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

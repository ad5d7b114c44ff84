package storage

import (
	"context"

	"chatline/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EventsChannel is the Redis pub/sub channel room broadcasts are mirrored
// to. It is the seam a multi-process deployment would fan events through.
const EventsChannel = "chat:events"

// Storage is the persistence contract the rest of the application depends
// on. The realtime hub calls it synchronously from its dispatch loop.
type Storage interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(limit, offset int) ([]models.User, error)
	SetOnlineStatus(username string, online bool) error
	IsOnline(username string) (bool, error)

	CreateChat(chat *models.Chat) error
	GetChatByID(chatID string) (*models.Chat, error)
	GetUserChats(username string) ([]models.Chat, error)
	UpdateChat(chat *models.Chat) error
	DeleteChat(chatID string) error
	IsMember(username, chatID string) (bool, error)

	SaveMessage(msg *models.Message) error
	GetMessages(chatID string, limit int, beforeID uint) ([]models.Message, error)
	MarkMessageRead(messageID uint) error

	SaveCall(call *models.Call) error

	PublishEvent(payload []byte) error
}

// Service implements Storage on top of PostgreSQL (via GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService wires a Storage implementation from live connections.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// PublishEvent mirrors an encoded event onto the shared Redis channel.
func (s *Service) PublishEvent(payload []byte) error {
	return s.Redis.Publish(s.Ctx, EventsChannel, payload).Err()
}

// SubscribeEvents opens the pub/sub subscription the hub's bridge consumes.
// Not part of the Storage interface: only main wiring needs it.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventsChannel)
}

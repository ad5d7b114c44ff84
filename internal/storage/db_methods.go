package storage

import (
	"errors"
	"time"

	"chatline/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatline/backend/internal/config"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("storage: record not found")

// --- Users ---

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ListUsers(limit, offset int) ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("username").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// SetOnlineStatus records presence in Redis for fast reads and mirrors
// it onto the user row for history/API consumers.
func (s *Service) SetOnlineStatus(username string, online bool) error {
	key := "presence:" + username
	if online {
		if err := s.Redis.Set(s.Ctx, key, "1", config.PresenceTTL).Err(); err != nil {
			return err
		}
	} else {
		if err := s.Redis.Del(s.Ctx, key).Err(); err != nil {
			return err
		}
	}
	return s.DB.Model(&models.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": time.Now(),
		}).Error
}

func (s *Service) IsOnline(username string) (bool, error) {
	_, err := s.Redis.Get(s.Ctx, "presence:"+username).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- Chats ---

func (s *Service) CreateChat(chat *models.Chat) error {
	return s.DB.Create(chat).Error
}

func (s *Service) GetChatByID(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("chat_id = ?", chatID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Service) GetUserChats(username string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Where("? = ANY(members)", username).
		Order("updated_at DESC").
		Find(&chats).Error
	return chats, err
}

func (s *Service) UpdateChat(chat *models.Chat) error {
	return s.DB.Save(chat).Error
}

func (s *Service) DeleteChat(chatID string) error {
	return s.DB.Where("chat_id = ?", chatID).Delete(&models.Chat{}).Error
}

// IsMember checks persisted chat membership. This is the authorization
// read the hub performs once per join request.
func (s *Service) IsMember(username, chatID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Chat{}).
		Where("chat_id = ? AND ? = ANY(members)", chatID, username).
		Count(&count).Error
	return count > 0, err
}

// --- Messages ---

func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Create(msg).Error
}

// GetMessages returns newest-first keyset-paginated history for a chat.
// beforeID == 0 starts from the latest message.
func (s *Service) GetMessages(chatID string, limit int, beforeID uint) ([]models.Message, error) {
	if limit <= 0 || limit > config.MaxHistoryLimit {
		limit = config.DefaultHistoryLimit
	}
	q := s.DB.Where("chat_id = ?", chatID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []models.Message
	err := q.Order("id DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (s *Service) MarkMessageRead(messageID uint) error {
	return s.DB.Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", messageID).
		Update("read_at", time.Now()).Error
}

// --- Calls ---

func (s *Service) SaveCall(call *models.Call) error {
	return s.DB.Save(call).Error
}

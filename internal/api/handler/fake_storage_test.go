package handler_test

import (
	"errors"
	"sync"
	"time"

	"chatline/backend/internal/config"
	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/google/uuid"
)

// fakeStorage is a small in-memory Storage used by the handler tests, so
// the full HTTP+websocket stack can run without PostgreSQL or Redis.
type fakeStorage struct {
	mu        sync.Mutex
	users     map[string]*models.User
	chats     map[string]*models.Chat
	messages  map[string][]models.Message
	calls     []*models.Call
	nextMsgID uint
	published int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:    make(map[string]*models.User),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.Message),
	}
}

func (f *fakeStorage) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Username]; ok {
		return errors.New("duplicate username")
	}
	user.ID = uint(len(f.users) + 1)
	user.CreatedAt = time.Now()
	f.users[user.Username] = user
	return nil
}

func (f *fakeStorage) GetUserByUsername(username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStorage) GetUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStorage) ListUsers(limit, offset int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeStorage) SetOnlineStatus(username string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		u.IsOnline = online
		u.LastSeen = time.Now()
	}
	return nil
}

func (f *fakeStorage) IsOnline(username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		return u.IsOnline, nil
	}
	return false, nil
}

func (f *fakeStorage) CreateChat(chat *models.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chat.ChatID == "" {
		chat.ChatID = uuid.New().String()
	}
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	f.chats[chat.ChatID] = chat
	return nil
}

func (f *fakeStorage) GetChatByID(chatID string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		return c, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStorage) GetUserChats(username string) ([]models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var chats []models.Chat
	for _, c := range f.chats {
		if c.HasMember(username) {
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (f *fakeStorage) UpdateChat(chat *models.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat.UpdatedAt = time.Now()
	f.chats[chat.ChatID] = chat
	return nil
}

func (f *fakeStorage) DeleteChat(chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chats, chatID)
	return nil
}

func (f *fakeStorage) IsMember(username, chatID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		return c.HasMember(username), nil
	}
	return false, nil
}

func (f *fakeStorage) SaveMessage(msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	msg.ID = f.nextMsgID
	msg.CreatedAt = time.Now()
	f.messages[msg.ChatID] = append(f.messages[msg.ChatID], *msg)
	return nil
}

func (f *fakeStorage) GetMessages(chatID string, limit int, beforeID uint) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > config.MaxHistoryLimit {
		limit = config.DefaultHistoryLimit
	}
	all := f.messages[chatID]
	var out []models.Message
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if beforeID > 0 && all[i].ID >= beforeID {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeStorage) MarkMessageRead(messageID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for chatID, msgs := range f.messages {
		for i := range msgs {
			if msgs[i].ID == messageID {
				msgs[i].ReadAt = &now
				f.messages[chatID] = msgs
				return nil
			}
		}
	}
	return nil
}

func (f *fakeStorage) SaveCall(call *models.Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeStorage) PublishEvent(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published++
	return nil
}

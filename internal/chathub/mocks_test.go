package chathub_test

import (
	"chatline/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface, so hub
// tests can run without PostgreSQL or Redis.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) ListUsers(limit, offset int) ([]models.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SetOnlineStatus(username string, online bool) error {
	args := m.Called(username, online)
	return args.Error(0)
}

func (m *MockStorage) IsOnline(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetChatByID(chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetUserChats(username string) ([]models.Chat, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) UpdateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) DeleteChat(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) IsMember(username, chatID string) (bool, error) {
	args := m.Called(username, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessages(chatID string, limit int, beforeID uint) ([]models.Message, error) {
	args := m.Called(chatID, limit, beforeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkMessageRead(messageID uint) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *MockStorage) SaveCall(call *models.Call) error {
	args := m.Called(call)
	return args.Error(0)
}

func (m *MockStorage) PublishEvent(payload []byte) error {
	args := m.Called(payload)
	return args.Error(0)
}

// newQuietStorage returns a MockStorage that tolerates the bookkeeping
// calls every connection lifecycle makes.
func newQuietStorage() *MockStorage {
	s := new(MockStorage)
	s.On("SetOnlineStatus", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.On("PublishEvent", mock.Anything).Return(nil).Maybe()
	s.On("SaveCall", mock.Anything).Return(nil).Maybe()
	return s
}

// Package auth resolves bearer credentials to stable user identities and
// issues the tokens the HTTP login flow hands out.
package auth

import (
	"errors"
	"strings"
	"time"

	"chatline/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingToken means no credential was supplied at all.
	ErrMissingToken = errors.New("auth: missing token")
	// ErrInvalidToken means the credential was present but garbled or
	// signed with the wrong key.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired means the credential is past its validity window.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrUnknownUser means the credential is well-formed but resolves to
	// no active account.
	ErrUnknownUser = errors.New("auth: unknown user")
)

const issuer = "chatline-backend"

// UserSource is the one persistence read the resolver needs.
type UserSource interface {
	GetUserByUsername(username string) (*models.User, error)
}

// Service validates credentials against signed JWTs and the user store.
type Service struct {
	users  UserSource
	secret []byte
	ttl    time.Duration
}

func NewService(users UserSource, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// IssueToken creates a signed token whose subject is the username.
func (s *Service) IssueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(s.ttl).Unix(),
		"iat": time.Now().Unix(),
		"iss": issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate resolves a bearer credential (optionally prefixed with
// "Bearer ") to a user identity. It performs a single read against the
// user store and has no other side effects.
func (s *Service) Authenticate(credential string) (string, error) {
	credential = strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
	if credential == "" {
		return "", ErrMissingToken
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	username, err := token.Claims.GetSubject()
	if err != nil || username == "" {
		return "", ErrInvalidToken
	}

	user, err := s.users.GetUserByUsername(username)
	if err != nil || !user.IsActive {
		return "", ErrUnknownUser
	}
	return user.Username, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

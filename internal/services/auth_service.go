package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery/internal/models"
	"bakery/internal/redis"
	"bakery/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore keeps login sessions keyed by bearer token.
type SessionStore interface {
	SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, token string) error
}

type AuthService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	Register(ctx context.Context, user *models.User, password string) error
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetTelegramChatID(ctx context.Context, userID uint, chatID string) error
}

type authService struct {
	userRepo   repository.UserRepository
	sessions   SessionStore
	sessionTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sessions SessionStore, sessionTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, sessions: sessions, sessionTTL: sessionTTL}
}

// CreateUser stores the user with a bcrypt hash of the password. The role is
// kept as given.
func (s *authService) CreateUser(ctx context.Context, user *models.User, password string) error {
	if strings.TrimSpace(user.Username) == "" || password == "" {
		return ErrInvalidCredentials
	}

	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	return s.userRepo.Create(ctx, user)
}

// Register creates a customer account. Staff roles are only assigned by seeding.
func (s *authService) Register(ctx context.Context, user *models.User, password string) error {
	user.Role = models.RoleCustomer
	return s.CreateUser(ctx, user, password)
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	session := &redis.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(ctx, token, session, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	return token, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to the current user record, so role
// changes apply to existing sessions.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// SetTelegramChatID records the chat the user opted in to for status
// notifications. An empty value opts out.
func (s *authService) SetTelegramChatID(ctx context.Context, userID uint, chatID string) error {
	return s.userRepo.UpdateTelegramChatID(ctx, userID, strings.TrimSpace(chatID))
}

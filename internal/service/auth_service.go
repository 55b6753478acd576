package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/auth"
	"github.com/renthub/laptop-bookings/pkg/config"
	"github.com/renthub/laptop-bookings/pkg/events"
	"github.com/renthub/laptop-bookings/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	Promote(ctx context.Context, userID int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.UserInfo, error)
	UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type authService struct {
	users    *store.Users
	gateway  persist.Gateway
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(
	users *store.Users,
	gateway persist.Gateway,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		users:    users,
		gateway:  gateway,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}

	if err := flush(ctx, s.gateway, persist.CollectionUsers, s.users.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist users: %w", err)
	}

	event := events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.UserRegistered, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return &user, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}

	user, ok := s.users.FindByEmail(req.Email)
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Auth.AccessTokenTTL.Seconds()),
		User:        user.ToUserInfo(),
	}, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := s.users.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return &user, nil
}

// Promote elevates the caller to admin. Idempotent: promoting an admin is a
// no-op. The open self-service policy matches the legacy system.
func (s *authService) Promote(ctx context.Context, userID int64) (*domain.User, error) {
	user, ok := s.users.FindByID(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	if user.Role == domain.RoleAdmin {
		return &user, nil
	}

	user.Role = domain.RoleAdmin
	if err := s.users.Save(user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if err := flush(ctx, s.gateway, persist.CollectionUsers, s.users.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist users: %w", err)
	}

	event := events.UserPromotedEvent{UserID: user.ID, PromotedAt: time.Now()}
	if err := s.eventBus.Publish(ctx, events.UserPromoted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user promoted event", "error", err, "user_id", user.ID)
	}

	return &user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*domain.UserInfo, error) {
	users := s.users.List()

	infos := make([]*domain.UserInfo, len(users))
	for i := range users {
		infos[i] = users[i].ToUserInfo()
	}
	return infos, nil
}

func (s *authService) UpdateUser(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}

	user, ok := s.users.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if other, exists := s.users.FindByEmail(email); exists && other.ID != id {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		user.Email = email
	}
	if req.Password != nil {
		hash, err := argon2id.CreateHash(*req.Password, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.users.Save(user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if err := flush(ctx, s.gateway, persist.CollectionUsers, s.users.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist users: %w", err)
	}

	return &user, nil
}

func (s *authService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(id); err != nil {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	if err := flush(ctx, s.gateway, persist.CollectionUsers, s.users.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}
	return nil
}

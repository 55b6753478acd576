package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/otp"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/events"
	"github.com/renthub/laptop-bookings/pkg/logger"
	"github.com/renthub/laptop-bookings/pkg/metrics"
)

// RecoveryService drives the self-service password reset flow: issue a
// one-time passcode, then atomically verify it and replace the credential.
// The passcode is returned to the caller directly; nothing is mailed.
type RecoveryService interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type recoveryService struct {
	users    *store.Users
	registry *otp.Registry
	gateway  persist.Gateway
	eventBus events.Publisher
}

func NewRecoveryService(
	users *store.Users,
	registry *otp.Registry,
	gateway persist.Gateway,
	eventBus events.Publisher,
) RecoveryService {
	return &recoveryService{
		users:    users,
		registry: registry,
		gateway:  gateway,
		eventBus: eventBus,
	}
}

func (s *recoveryService) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidRequest)
	}

	if _, ok := s.users.FindByEmail(email); !ok {
		return "", fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	code, err := s.registry.Issue(email)
	if err != nil {
		return "", fmt.Errorf("failed to issue passcode: %w", err)
	}

	metrics.OTPIssuedTotal.Inc()

	event := events.PasswordResetEvent{Email: email, OccurredAt: time.Now()}
	if err := s.eventBus.Publish(ctx, events.PasswordResetRequested, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reset requested event", "error", err, "email", email)
	}

	return code, nil
}

// ResetPassword is the single recovery transaction: passcode check,
// credential replace, record deletion. The registry consumes the record
// only on a match, so a verified code can never be replayed.
func (s *recoveryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and otp are required", domain.ErrInvalidRequest)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidRequest)
	}

	if err := s.registry.Verify(email, code); err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeExpired):
			metrics.OTPVerifiedTotal.WithLabelValues("expired").Inc()
		case errors.Is(err, domain.ErrCodeInvalid):
			metrics.OTPVerifiedTotal.WithLabelValues("invalid").Inc()
		default:
			metrics.OTPVerifiedTotal.WithLabelValues("missing").Inc()
		}
		return err
	}

	user, ok := s.users.FindByEmail(email)
	if !ok {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	hash, err := argon2id.CreateHash(newPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if err := flush(ctx, s.gateway, persist.CollectionUsers, s.users.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}

	metrics.OTPVerifiedTotal.WithLabelValues("ok").Inc()

	event := events.PasswordResetEvent{Email: email, OccurredAt: time.Now()}
	if err := s.eventBus.Publish(ctx, events.PasswordResetCompleted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reset completed event", "error", err, "email", email)
	}

	return nil
}

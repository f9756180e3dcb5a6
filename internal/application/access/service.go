// Package access is the single gatekeeper for roles. Every privileged
// operation passes through Authorize, which re-reads the stored role on
// each call; a role revoked mid-session takes effect on the next check.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plantnet/backend/internal/domain/event"
	"github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/pkg/logging"
	"github.com/plantnet/backend/internal/platform/apperr"
	"go.uber.org/zap"
)

type Service struct {
	users  user.Repository
	events event.Publisher
}

func NewService(users user.Repository, events event.Publisher) *Service {
	return &Service{users: users, events: events}
}

// RegisterIfAbsent returns the stored record unchanged when the email
// is already registered; otherwise it creates a customer record. Safe
// to call on every sign-in.
func (s *Service) RegisterIfAbsent(ctx context.Context, email, name, image string) (*user.User, error) {
	if email == "" {
		return nil, apperr.New(apperr.KindInvalid, "access: email is required")
	}

	existing, err := s.users.Get(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("access: lookup user: %w", err)
	}

	u := user.New(email, name, image)
	if err := s.users.Insert(ctx, u); err != nil {
		// Lost an insert race: the record that won is the answer.
		if apperr.KindOf(err) == apperr.KindConflict {
			return s.users.Get(ctx, email)
		}
		return nil, fmt.Errorf("access: insert user: %w", err)
	}

	logging.FromContext(ctx).Info("user_registered", zap.String("email", email))
	return u, nil
}

// RequestRoleUpgrade transitions the user into the pending-request
// state. A second request while one is pending is a conflict.
func (s *Service) RequestRoleUpgrade(ctx context.Context, email string) error {
	u, err := s.users.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := u.RequestUpgrade(); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("access: update user: %w", err)
	}

	logging.FromContext(ctx).Info("role_upgrade_requested", zap.String("email", email))
	return nil
}

// ApproveRoleChange applies an admin decision. The admin identity is
// re-verified against the store; the target's prior status is not
// required to be a pending request.
func (s *Service) ApproveRoleChange(ctx context.Context, adminEmail, email string, newRole user.Role) error {
	if err := s.Authorize(ctx, adminEmail, user.RoleAdmin); err != nil {
		return err
	}

	u, err := s.users.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := u.Promote(newRole); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("access: update user: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, event.RoleChanged{
			Email:      email,
			Role:       string(newRole),
			OccurredAt: time.Now().UTC(),
		})
	}
	logging.FromContext(ctx).Info("role_changed",
		zap.String("email", email),
		zap.String("role", string(newRole)),
	)
	return nil
}

// Authorize succeeds only when the stored role matches. Client-supplied
// role claims are never trusted.
func (s *Service) Authorize(ctx context.Context, email string, required user.Role) error {
	u, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotAuthorized
		}
		return fmt.Errorf("access: lookup user: %w", err)
	}
	if u.Role != required {
		return user.ErrNotAuthorized
	}
	return nil
}

// RoleOf reads the current stored role.
func (s *Service) RoleOf(ctx context.Context, email string) (user.Role, error) {
	u, err := s.users.Get(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// ListOthers returns every user except the admin asking.
func (s *Service) ListOthers(ctx context.Context, adminEmail string) ([]*user.User, error) {
	if err := s.Authorize(ctx, adminEmail, user.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.ListOthers(ctx, adminEmail)
}

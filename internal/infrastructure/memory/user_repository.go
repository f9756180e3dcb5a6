// Package memory provides mutex-guarded in-memory adapters for the
// repository ports. They back the test suites and the default dev
// wiring; semantics match the mongo adapters, including the
// conditional quantity and status updates.
package memory

import (
	"context"
	"sync"

	"github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
	order []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*user.User)}
}

func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	_ = ctx
	if u == nil || u.Email == "" {
		return apperr.New(apperr.KindInvalid, "user repository: email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Email]; exists {
		return apperr.New(apperr.KindConflict, "user repository: email already registered")
	}
	r.users[u.Email] = u.Clone()
	r.order = append(r.order, u.Email)
	return nil
}

func (r *UserRepository) Get(ctx context.Context, email string) (*user.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	_ = ctx
	if u == nil || u.Email == "" {
		return apperr.New(apperr.KindInvalid, "user repository: email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Email]; !exists {
		return user.ErrNotFound
	}
	r.users[u.Email] = u.Clone()
	return nil
}

func (r *UserRepository) ListOthers(ctx context.Context, email string) ([]*user.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*user.User, 0, len(r.order))
	for _, key := range r.order {
		if key == email {
			continue
		}
		if u, ok := r.users[key]; ok {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

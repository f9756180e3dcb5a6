package user

import "context"

type Repository interface {
	// Insert stores a new user. It fails if the email is taken; callers
	// relying on register-if-absent semantics must check Get first and
	// treat an insert race as "already present".
	Insert(ctx context.Context, u *User) error

	// Get returns ErrNotFound when the email is unknown.
	Get(ctx context.Context, email string) (*User, error)

	// Update overwrites the stored record for u.Email.
	Update(ctx context.Context, u *User) error

	// ListOthers returns every user except the given email, in
	// insertion order.
	ListOthers(ctx context.Context, email string) ([]*User, error)
}

package user

import (
	"time"

	"github.com/plantnet/backend/internal/platform/apperr"
)

var (
	ErrNotFound         = apperr.New(apperr.KindNotFound, "user: not found")
	ErrAlreadyRequested = apperr.New(apperr.KindConflict, "user: role upgrade already requested")
	ErrInvalidRole      = apperr.New(apperr.KindInvalid, "user: unknown role")
	ErrNotAuthorized    = apperr.New(apperr.KindUnauthorized, "user: role does not permit this operation")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Status tracks the role-escalation workflow. The zero value means no
// upgrade request is pending.
type Status string

const (
	StatusNone      Status = ""
	StatusRequested Status = "requested"
	StatusVerified  Status = "verified"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is keyed by email; the email never changes after creation.
type User struct {
	Email     string
	Name      string
	Image     string
	Role      Role
	Status    Status
	CreatedAt time.Time
}

// New creates a fresh customer record. Role escalation is only possible
// through an explicit admin action afterwards.
func New(email, name, image string) *User {
	return &User{
		Email:     email,
		Name:      name,
		Image:     image,
		Role:      RoleCustomer,
		Status:    StatusNone,
		CreatedAt: time.Now().UTC(),
	}
}

// RequestUpgrade moves the user into the pending-request state.
func (u *User) RequestUpgrade() error {
	if u.Status == StatusRequested {
		return ErrAlreadyRequested
	}
	u.Status = StatusRequested
	return nil
}

// Promote applies an admin decision: the role is overwritten and the
// request, if any, is marked verified.
func (u *User) Promote(role Role) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	u.Role = role
	u.Status = StatusVerified
	return nil
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Package account provides the buyer identity domain model. Accounts
// are provisioned when the external auth provider first authenticates a
// user; this service keeps its own row per account so fulfillment can
// resolve buyers by reference or by email.
package account

import (
	"errors"
	"strings"
	"time"

	"github.com/quillstore/quill/internal/shared/constants"
	"github.com/quillstore/quill/internal/shared/id"
)

var (
	// ErrNotFound is returned when an account is not found
	ErrNotFound = errors.New("account not found")

	// ErrEmailRequired is returned when the email is missing
	ErrEmailRequired = errors.New("account email is required")

	// ErrInvalidRole is returned for unknown roles
	ErrInvalidRole = errors.New("invalid account role")
)

// Account represents a storefront buyer or administrator.
type Account struct {
	dbID        uint
	sid         string
	email       string
	displayName string
	role        string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAccount creates a buyer account.
func NewAccount(email, displayName string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}

	sid, err := id.NewAccountSID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Account{
		sid:         sid,
		email:       email,
		displayName: displayName,
		role:        constants.RoleUser,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewProvisioned creates an account whose public identifier is the
// subject the delegated auth provider issued, so session tokens and
// webhook custom metadata resolve to the same row.
func NewProvisioned(sid, email, displayName string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if sid == "" {
		return nil, errors.New("account sid is required")
	}

	now := time.Now().UTC()
	return &Account{
		sid:         sid,
		email:       email,
		displayName: displayName,
		role:        constants.RoleUser,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an account from persistence.
func Reconstruct(dbID uint, sid, email, displayName, role string, createdAt, updatedAt time.Time) (*Account, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if role != constants.RoleUser && role != constants.RoleAdmin {
		return nil, ErrInvalidRole
	}

	return &Account{
		dbID:        dbID,
		sid:         sid,
		email:       email,
		displayName: displayName,
		role:        role,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (a *Account) ID() uint             { return a.dbID }
func (a *Account) SID() string          { return a.sid }
func (a *Account) Email() string        { return a.email }
func (a *Account) DisplayName() string  { return a.displayName }
func (a *Account) Role() string         { return a.role }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

// IsAdmin reports whether the account may use the admin surface.
func (a *Account) IsAdmin() bool {
	return a.role == constants.RoleAdmin
}

// SetID sets the database ID (only for persistence layer use)
func (a *Account) SetID(dbID uint) error {
	if a.dbID != 0 {
		return errors.New("account ID is already set")
	}
	a.dbID = dbID
	return nil
}

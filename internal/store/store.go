// Package store persists user profiles, profile snapshots and accounts.
package store

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/types"
)

// SchemaVersion is written with every stored profile.
const SchemaVersion = 1

// LocalUserID keys the single profile held by local stores.
var LocalUserID = uuid.Nil

// Store reads and writes one profile per user.
// Get never returns a missing profile: an empty one is created on first read.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (types.Profile, error)
	Set(ctx context.Context, userID uuid.UUID, profile types.Profile) error
	// Patch writes overlay over the stored profile and records a snapshot of the result.
	// A failed snapshot is logged and does not fail the patch.
	Patch(ctx context.Context, userID uuid.UUID, overlay types.Profile) (types.Profile, error)
	Versions(ctx context.Context, userID uuid.UUID) ([]Version, error)
	Close() error
}

// UserStore holds accounts for the HTTP API.
type UserStore interface {
	// CreateUser returns ErrEmailTaken when the address is already registered.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	// GetUserByEmail returns nil, nil when no account matches.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// ResumeStore holds the last uploaded resume file.
type ResumeStore interface {
	SaveResume(ctx context.Context, userID uuid.UUID, file types.ResumeFile) error
	// GetResume returns nil, nil when no resume was saved.
	GetResume(ctx context.Context, userID uuid.UUID) (*types.ResumeFile, error)
}

// Version is a profile snapshot.
type Version struct {
	ID        int64         `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Data      types.Profile `json:"data"`
	Note      string        `json:"note"`
	CreatedAt time.Time     `json:"created_at"`
}

// User is a stored account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the account without credentials.
func (u *User) Public() *types.User {
	return &types.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

const patchNote = "patch"

func logSnapshotFailure(userID uuid.UUID, err error) {
	log.Printf("[STORE] failed to snapshot profile for %s: %v", userID, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

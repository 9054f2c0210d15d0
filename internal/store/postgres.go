package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/form-autofill/internal/types"
)

//go:embed schema.sql
var postgresSchema string

const uniqueViolation = "23505"

// PostgresStore keeps profiles and accounts in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate creates any missing tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Get returns the user's profile, inserting an empty one when none exists.
func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (types.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM profiles WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		empty := types.NewProfile()
		if err := s.Set(ctx, userID, empty); err != nil {
			return types.Profile{}, err
		}
		return empty, nil
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var p types.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Profile{}, &CorruptProfileError{Key: userID.String(), Cause: err}
	}
	return p, nil
}

// Set replaces the user's profile.
func (s *PostgresStore) Set(ctx context.Context, userID uuid.UUID, profile types.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, schema_version, data, updated_at)
		 VALUES ($1, $2, $3::json, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		userID, SchemaVersion, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Patch merges overlay into the stored profile and records a snapshot.
func (s *PostgresStore) Patch(ctx context.Context, userID uuid.UUID, overlay types.Profile) (types.Profile, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}
	next := current.Merge(overlay)
	if err := s.Set(ctx, userID, next); err != nil {
		return types.Profile{}, err
	}

	if err := s.snapshot(ctx, userID, next, patchNote); err != nil {
		logSnapshotFailure(userID, err)
	}
	return next, nil
}

func (s *PostgresStore) snapshot(ctx context.Context, userID uuid.UUID, profile types.Profile, note string) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO profile_versions (user_id, data, note) VALUES ($1, $2::json, $3)`,
		userID, string(data), note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Versions lists snapshots, newest first.
func (s *PostgresStore) Versions(ctx context.Context, userID uuid.UUID) ([]Version, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data::text, note, created_at FROM profile_versions
		 WHERE user_id = $1 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var (
			v    Version
			data string
		)
		if err := rows.Scan(&v.ID, &data, &v.Note, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &v.Data); err != nil {
			return nil, &CorruptProfileError{Key: fmt.Sprintf("version %d", v.ID), Cause: err}
		}
		v.UserID = userID
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// CreateUser inserts an account.
func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	u := &User{Email: normalizeEmail(email), PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, created_at`,
		u.Email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks up an account by address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		normalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

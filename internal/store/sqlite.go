package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/types"

	_ "modernc.org/sqlite"
)

// Local storage keys, matching the extension's storage layout.
const (
	keyUserData   = "userData"
	keyResumeFile = "resumeFile"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS profile_versions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_profile_versions_user ON profile_versions(user_id, id);
`

// SQLiteStore is the local key/value store used by the CLI.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// DefaultSQLitePath returns the per-user store location.
func DefaultSQLitePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "form-autofill", "store.db"), nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func storageKey(name string, userID uuid.UUID) string {
	if userID == LocalUserID {
		return name
	}
	return name + ":" + userID.String()
}

func (s *SQLiteStore) getValue(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) putValue(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID uuid.UUID) (types.Profile, error) {
	key := storageKey(keyUserData, userID)
	raw, ok, err := s.getValue(ctx, key)
	if err != nil {
		return types.Profile{}, err
	}
	if !ok {
		empty := types.NewProfile()
		if err := s.Set(ctx, userID, empty); err != nil {
			return types.Profile{}, err
		}
		return empty, nil
	}

	var p types.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Profile{}, &CorruptProfileError{Key: key, Cause: err}
	}
	return p, nil
}

func (s *SQLiteStore) Set(ctx context.Context, userID uuid.UUID, profile types.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return s.putValue(ctx, storageKey(keyUserData, userID), data)
}

func (s *SQLiteStore) Patch(ctx context.Context, userID uuid.UUID, overlay types.Profile) (types.Profile, error) {
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

func (s *SQLiteStore) snapshot(ctx context.Context, userID uuid.UUID, profile types.Profile, note string) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profile_versions (user_id, data, note, created_at) VALUES (?, ?, ?, ?)`,
		userID.String(), string(data), note, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Versions(ctx context.Context, userID uuid.UUID) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, note, created_at FROM profile_versions WHERE user_id = ? ORDER BY id DESC`,
		userID.String(),
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

func (s *SQLiteStore) SaveResume(ctx context.Context, userID uuid.UUID, file types.ResumeFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal resume: %w", err)
	}
	return s.putValue(ctx, storageKey(keyResumeFile, userID), data)
}

func (s *SQLiteStore) GetResume(ctx context.Context, userID uuid.UUID) (*types.ResumeFile, error) {
	raw, ok, err := s.getValue(ctx, storageKey(keyResumeFile, userID))
	if err != nil || !ok {
		return nil, err
	}
	var file types.ResumeFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode stored resume: %w", err)
	}
	return &file, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

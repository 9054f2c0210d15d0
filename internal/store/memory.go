package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/types"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]types.Profile
	versions []Version
	resumes  map[uuid.UUID]types.ResumeFile
	users    map[string]*User

	// SnapshotErr, when set, makes every snapshot fail with it.
	SnapshotErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]types.Profile),
		resumes:  make(map[uuid.UUID]types.ResumeFile),
		users:    make(map[string]*User),
	}
}

func (m *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		p = types.NewProfile()
		m.profiles[userID] = p
	}
	return p.Clone(), nil
}

func (m *MemoryStore) Set(ctx context.Context, userID uuid.UUID, profile types.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = profile.Clone()
	return nil
}

func (m *MemoryStore) Patch(ctx context.Context, userID uuid.UUID, overlay types.Profile) (types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.profiles[userID].Merge(overlay)
	m.profiles[userID] = next

	if m.SnapshotErr != nil {
		logSnapshotFailure(userID, m.SnapshotErr)
	} else {
		m.versions = append(m.versions, Version{
			ID:        int64(len(m.versions) + 1),
			UserID:    userID,
			Data:      next.Clone(),
			Note:      patchNote,
			CreatedAt: time.Now(),
		})
	}
	return next.Clone(), nil
}

func (m *MemoryStore) Versions(ctx context.Context, userID uuid.UUID) ([]Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Version
	for i := len(m.versions) - 1; i >= 0; i-- {
		if m.versions[i].UserID == userID {
			out = append(out, m.versions[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveResume(ctx context.Context, userID uuid.UUID, file types.ResumeFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[userID] = file
	return nil
}

func (m *MemoryStore) GetResume(ctx context.Context, userID uuid.UUID) (*types.ResumeFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.resumes[userID]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(email)
	if _, exists := m.users[key]; exists {
		return nil, ErrEmailTaken
	}
	u := &User{ID: uuid.New(), Email: key, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[key] = u
	copied := *u
	return &copied, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *MemoryStore) Close() error { return nil }

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Both local implementations share one behavioral contract.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openTestSQLite(t),
	}
}

func TestStore_GetCreatesEmptyProfile(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p, err := s.Get(ctx, LocalUserID)
			require.NoError(t, err)
			assert.Equal(t, 0, p.Len())

			again, err := s.Get(ctx, LocalUserID)
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestStore_SetPreservesKeyOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			profile := types.NewProfile("zipCode", "89501", "email", "ada@example.com", "firstName", "Ada")
			profile.Set("yearsOfExperience", float64(7))

			require.NoError(t, s.Set(ctx, LocalUserID, profile))
			got, err := s.Get(ctx, LocalUserID)
			require.NoError(t, err)
			assert.Equal(t, []string{"zipCode", "email", "firstName", "yearsOfExperience"}, got.Keys())
			assert.True(t, profile.Equal(got))
		})
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, LocalUserID, types.NewProfile("city", "Reno")))

			got, err := s.Get(ctx, LocalUserID)
			require.NoError(t, err)
			got.Set("city", "Elko")

			again, err := s.Get(ctx, LocalUserID)
			require.NoError(t, err)
			city, _ := again.String("city")
			assert.Equal(t, "Reno", city)
		})
	}
}

func TestStore_PatchMergesAndSnapshots(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := uuid.New()
			require.NoError(t, s.Set(ctx, user, types.NewProfile("firstName", "Ada", "city", "Reno")))

			next, err := s.Patch(ctx, user, types.NewProfile("city", "Elko", "state", "NV"))
			require.NoError(t, err)
			assert.Equal(t, []string{"firstName", "city", "state"}, next.Keys())
			city, _ := next.String("city")
			assert.Equal(t, "Elko", city)

			stored, err := s.Get(ctx, user)
			require.NoError(t, err)
			assert.True(t, next.Equal(stored))

			_, err = s.Patch(ctx, user, types.NewProfile("zipCode", "89801"))
			require.NoError(t, err)

			versions, err := s.Versions(ctx, user)
			require.NoError(t, err)
			require.Len(t, versions, 2)
			assert.Equal(t, "patch", versions[0].Note)
			assert.Equal(t, 4, versions[0].Data.Len())
			assert.Equal(t, 3, versions[1].Data.Len())
			assert.Greater(t, versions[0].ID, versions[1].ID)

			other, err := s.Versions(ctx, uuid.New())
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestStore_ProfilesAreScopedPerUser(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, b := uuid.New(), uuid.New()
			require.NoError(t, s.Set(ctx, a, types.NewProfile("email", "a@example.com")))

			got, err := s.Get(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Len())
		})
	}
}

func TestMemoryStore_SnapshotFailureDoesNotFailPatch(t *testing.T) {
	s := NewMemoryStore()
	s.SnapshotErr = errors.New("disk full")
	ctx := context.Background()

	next, err := s.Patch(ctx, LocalUserID, types.NewProfile("city", "Reno"))
	require.NoError(t, err)
	assert.Equal(t, 1, next.Len())

	versions, err := s.Versions(ctx, LocalUserID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestResumeStores(t *testing.T) {
	resumeStores := map[string]ResumeStore{
		"memory": NewMemoryStore(),
		"sqlite": openTestSQLite(t),
	}
	for name, s := range resumeStores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			got, err := s.GetResume(ctx, LocalUserID)
			require.NoError(t, err)
			assert.Nil(t, got)

			file := types.ResumeFile{FileName: "cv.txt", FileData: "aGVsbG8=", FileType: "text/plain"}
			require.NoError(t, s.SaveResume(ctx, LocalUserID, file))
			got, err = s.GetResume(ctx, LocalUserID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, file, *got)
		})
	}
}

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, " Ada@Example.com ", "hash")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = s.CreateUser(ctx, "ada@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := s.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	missing, err := s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	public := found.Public()
	assert.Equal(t, u.ID, public.ID)
	assert.Equal(t, u.Email, public.Email)
}

func TestSQLiteStore_CorruptProfile(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.putValue(ctx, keyUserData, []byte("[1,2")))

	_, err := s.Get(ctx, LocalUserID)
	var corrupt *CorruptProfileError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, keyUserData, corrupt.Key)
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")
	assert.Equal(t, "userData", storageKey(keyUserData, LocalUserID))
	assert.Equal(t, "resumeFile:6f1c2a4e-0000-4000-8000-000000000001", storageKey(keyResumeFile, id))
}

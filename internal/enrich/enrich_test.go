package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/form-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollaborator struct {
	overlay map[string]any
	err     error
	calls   int
	got     Request
}

func (f *fakeCollaborator) Enrich(ctx context.Context, req Request) (map[string]any, error) {
	f.calls++
	f.got = req
	// Misbehaving collaborators must not be able to corrupt the caller's profile.
	req.Profile.Set("injected", "x")
	return f.overlay, f.err
}

func TestOverlay(t *testing.T) {
	tests := []struct {
		name string
		base types.Profile
		raw  map[string]any
		want types.Profile
	}{
		{
			name: "synthesizes location from city and state",
			base: types.NewProfile("firstName", "Ada"),
			raw:  map[string]any{"city": "Reno", "state": "NV"},
			want: types.NewProfile("firstName", "Ada", "city", "Reno", "state", "NV", "location", "Reno, NV"),
		},
		{
			name: "location from city alone",
			base: types.NewProfile(),
			raw:  map[string]any{"city": " Reno "},
			want: types.NewProfile("city", "Reno", "location", "Reno"),
		},
		{
			name: "existing location is kept",
			base: types.NewProfile("location", "Remote"),
			raw:  map[string]any{"city": "Reno", "state": "NV"},
			want: types.NewProfile("location", "Remote", "city", "Reno", "state", "NV"),
		},
		{
			name: "returned location wins over synthesis",
			base: types.NewProfile(),
			raw:  map[string]any{"city": "Reno", "location": "Reno, Nevada"},
			want: types.NewProfile("location", "Reno, Nevada", "city", "Reno"),
		},
		{
			name: "empty and whitespace values never overwrite",
			base: types.NewProfile("email", "ada@example.com", "phone", "555"),
			raw:  map[string]any{"email": "", "phone": "   "},
			want: types.NewProfile("email", "ada@example.com", "phone", "555"),
		},
		{
			name: "non-string values and unknown keys are ignored",
			base: types.NewProfile("email", "ada@example.com"),
			raw:  map[string]any{"email": 42, "favouriteColour": "blue", "github": nil, "zipCode": true},
			want: types.NewProfile("email", "ada@example.com"),
		},
		{
			name: "values are trimmed and overwrite",
			base: types.NewProfile("firstName", "A"),
			raw:  map[string]any{"firstName": "  Ada \n"},
			want: types.NewProfile("firstName", "Ada"),
		},
		{
			name: "custom profile keys survive",
			base: types.NewProfile("portfolio", "https://ada.dev"),
			raw:  map[string]any{"portfolio": "https://other.dev"},
			want: types.NewProfile("portfolio", "https://ada.dev"),
		},
		{
			name: "nil overlay",
			base: types.NewProfile("email", "ada@example.com"),
			raw:  nil,
			want: types.NewProfile("email", "ada@example.com"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlay(tt.base, tt.raw)
			assert.True(t, tt.want.Equal(got), "got %v", got.Map())
		})
	}
}

func TestOverlay_DoesNotMutateBase(t *testing.T) {
	base := types.NewProfile("city", "Reno")
	Overlay(base, map[string]any{"city": "Elko", "state": "NV"})
	assert.Equal(t, 1, base.Len())
	city, _ := base.String("city")
	assert.Equal(t, "Reno", city)
}

func TestEnricher_AppliesOverlay(t *testing.T) {
	fake := &fakeCollaborator{overlay: map[string]any{"city": "Reno", "state": "NV"}}
	e := NewEnricher(fake, time.Second)
	profile := types.NewProfile("firstName", "Ada")

	result, err := e.Enrich(context.Background(), Request{Identity: "user-1", Profile: profile})
	require.NoError(t, err)
	assert.NoError(t, result.Err)
	assert.True(t, result.Changed)
	location, _ := result.Profile.String("location")
	assert.Equal(t, "Reno, NV", location)
	_, injected := result.Profile.Get("injected")
	assert.False(t, injected)
	assert.Equal(t, 1, profile.Len())
}

func TestEnricher_FallbackReturnsProfileUnchanged(t *testing.T) {
	fake := &fakeCollaborator{err: errors.New("dial tcp: connection refused")}
	e := NewEnricher(fake, 0)
	profile := types.NewProfile("firstName", "Ada", "email", "ada@example.com")

	result, err := e.Enrich(context.Background(), Request{Identity: "user-1", Profile: profile})
	require.NoError(t, err)
	assert.True(t, profile.Equal(result.Profile))
	assert.False(t, result.Changed)

	var collabErr *CollaboratorError
	require.ErrorAs(t, result.Err, &collabErr)
	assert.Contains(t, collabErr.Error(), "connection refused")
}

func TestEnricher_UnchangedOverlayIsNotAChange(t *testing.T) {
	fake := &fakeCollaborator{overlay: map[string]any{"firstName": "Ada"}}
	result, err := NewEnricher(fake, 0).Enrich(context.Background(), Request{
		Identity: "user-1",
		Profile:  types.NewProfile("firstName", "Ada"),
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
}

func TestEnricher_StringReplacingNumberIsAChange(t *testing.T) {
	profile := types.NewProfile()
	profile.Set("zipCode", float64(94105))

	fake := &fakeCollaborator{overlay: map[string]any{"zipCode": "94105"}}
	result, err := NewEnricher(fake, 0).Enrich(context.Background(), Request{Identity: "user-1", Profile: profile})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	zip, ok := result.Profile.String("zipCode")
	require.True(t, ok)
	assert.Equal(t, "94105", zip)
}

func TestEnricher_RequiresIdentity(t *testing.T) {
	fake := &fakeCollaborator{}
	result, err := NewEnricher(fake, 0).Enrich(context.Background(), Request{Profile: types.NewProfile("a", "b")})

	assert.True(t, IsAuthError(err))
	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, 1, result.Profile.Len())
}

func TestEnricher_AuthErrorFromCollaboratorIsSurfaced(t *testing.T) {
	fake := &fakeCollaborator{err: &AuthError{Message: "token expired"}}
	_, err := NewEnricher(fake, 0).Enrich(context.Background(), Request{Identity: "u", Profile: types.NewProfile()})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "authentication required: token expired", authErr.Error())
	assert.Equal(t, 1, fake.calls)
}

func TestEnricher_Timeout(t *testing.T) {
	slow := collaboratorFunc(func(ctx context.Context, req Request) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	result, err := NewEnricher(slow, 10*time.Millisecond).Enrich(context.Background(), Request{
		Identity: "u",
		Profile:  types.NewProfile("city", "Reno"),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, context.DeadlineExceeded)
	assert.Equal(t, 1, result.Profile.Len())
}

type collaboratorFunc func(ctx context.Context, req Request) (map[string]any, error)

func (f collaboratorFunc) Enrich(ctx context.Context, req Request) (map[string]any, error) {
	return f(ctx, req)
}

func TestMockCollaborator(t *testing.T) {
	var m MockCollaborator
	result, err := NewEnricher(m, 0).Enrich(context.Background(), Request{
		Identity: "u",
		Profile:  types.NewProfile("email", "ada@example.com"),
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)

	p, err := m.ExtractResume(context.Background(), types.ResumeFile{FileData: "QWRhIExvdmVsYWNl", FileType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	_, err = m.ExtractResume(context.Background(), types.ResumeFile{FileData: "", FileType: "text/plain"})
	assert.ErrorIs(t, err, ErrNoResumeText)
}

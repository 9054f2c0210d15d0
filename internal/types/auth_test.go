package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: RegisterRequest{Email: "ada@example.com", Password: "analytical-engine"},
		},
		{
			name:    "password exactly 8 characters",
			request: RegisterRequest{Email: "ada@example.com", Password: "12345678"},
		},
		{
			name:    "missing email",
			request: RegisterRequest{Password: "analytical-engine"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email format",
			request: RegisterRequest{Email: "ada-at-example", Password: "analytical-engine"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "missing password",
			request: RegisterRequest{Email: "ada@example.com"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "password too short",
			request: RegisterRequest{Email: "ada@example.com", Password: "1234567"},
			wantErr: true,
			errMsg:  "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: LoginRequest{Email: "ada@example.com", Password: "analytical-engine"},
		},
		{
			name:    "short password is accepted at login",
			request: LoginRequest{Email: "ada@example.com", Password: "x"},
		},
		{
			name:    "missing email",
			request: LoginRequest{Password: "analytical-engine"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email format",
			request: LoginRequest{Email: "not-an-email", Password: "analytical-engine"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "missing password",
			request: LoginRequest{Email: "ada@example.com"},
			wantErr: true,
			errMsg:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_JSONTags(t *testing.T) {
	var req LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email":"ada@example.com","password":"secret"}`), &req))
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "secret", req.Password)
}

func TestLoginResponse_Serialization(t *testing.T) {
	userID := uuid.New()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	response := LoginResponse{
		User:  &User{ID: userID, Email: "ada@example.com", CreatedAt: created},
		Token: "test-jwt-token",
	}

	data, err := json.Marshal(response)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "test-jwt-token", fields["token"])
	user, ok := fields["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, userID.String(), user["id"])
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "2024-03-01T12:00:00Z", user["created_at"])
	assert.NotContains(t, string(data), "password")

	var decoded LoginResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "test-jwt-token", decoded.Token)
	require.NotNil(t, decoded.User)
	assert.Equal(t, userID, decoded.User.ID)
	assert.True(t, created.Equal(decoded.User.CreatedAt))
}

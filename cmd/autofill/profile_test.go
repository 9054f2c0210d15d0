package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	updates, removals, err := parseAssignments([]string{"firstName=Ada", "city=Reno=NV", "phone="})
	require.NoError(t, err)
	assert.Equal(t, []string{"firstName", "city"}, updates.Keys())
	city, _ := updates.String("city")
	assert.Equal(t, "Reno=NV", city)
	assert.Equal(t, []string{"phone"}, removals)

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, _, err := parseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestDecodeProfile(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		format   string
		wantKeys []string
		wantErr  bool
	}{
		{"json", `{"lastName":"Lovelace","firstName":"Ada"}`, "json", []string{"lastName", "firstName"}, false},
		{"yaml", "firstName: Ada\nzipCode: \"02139\"\n", "yaml", []string{"firstName", "zipCode"}, false},
		{"nested rejected", `{"address":{"city":"x"}}`, "json", nil, true},
		{"not a mapping", "- a\n- b\n", "yaml", nil, true},
		{"bad json", `{`, "json", nil, true},
		{"unknown format", `{}`, "toml", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := decodeProfile([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, profile.Keys())
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "yaml", formatFromPath("me.YAML"))
	assert.Equal(t, "yaml", formatFromPath("me.yml"))
	assert.Equal(t, "json", formatFromPath("me.json"))
	assert.Equal(t, "json", formatFromPath("-"))
}

func TestProfileCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "profile", "get")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, out)

	_, err = env.run(t, "profile", "set", "firstName=Ada", "city=London")
	require.NoError(t, err)

	out, err = env.run(t, "profile", "get", "city")
	require.NoError(t, err)
	assert.Equal(t, "London\n", out)

	_, err = env.run(t, "profile", "get", "missing")
	assert.Error(t, err)

	importFile := env.write(t, "update.yaml", "city: Reno\nstate: NV\n")
	out, err = env.run(t, "profile", "import", importFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ada","city":"Reno","state":"NV"}`, out)

	exportFile := filepath.Join(env.dir, "export.json")
	_, err = env.run(t, "profile", "export", "--format", "json", "--out", exportFile)
	require.NoError(t, err)
	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	var exported types.Profile
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, []string{"firstName", "city", "state"}, exported.Keys())

	out, err = env.run(t, "profile", "export")
	require.NoError(t, err)
	assert.Equal(t, "firstName: Ada\ncity: Reno\nstate: NV\n", out)

	out, err = env.run(t, "profile", "history")
	require.NoError(t, err)
	var versions []store.Version
	require.NoError(t, json.Unmarshal([]byte(out), &versions))
	require.Len(t, versions, 1)
	assert.Equal(t, "patch", versions[0].Note)

	_, err = env.run(t, "profile", "set", "city=")
	require.NoError(t, err)
	out, err = env.run(t, "profile", "get")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ada","state":"NV"}`, out)
}

func TestProfileImport_Replace(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "profile", "set", "firstName=Ada")
	require.NoError(t, err)

	file := env.write(t, "new.json", `{"email":"ada@example.com"}`)
	_, err = env.run(t, "profile", "import", "--replace", file)
	require.NoError(t, err)

	out, err := env.run(t, "profile", "get")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"ada@example.com"}`, out)
}

func TestProfile_UserScoping(t *testing.T) {
	env := newCLIEnv(t)
	other := "6f1c1b6e-8b7a-4f5e-9a43-0d6f0b3e2a11"

	_, err := env.run(t, "profile", "set", "firstName=Ada")
	require.NoError(t, err)
	_, err = env.run(t, "--user", other, "profile", "set", "firstName=Grace")
	require.NoError(t, err)

	out, err := env.run(t, "profile", "get", "firstName")
	require.NoError(t, err)
	assert.Equal(t, "Ada\n", out)

	_, err = env.run(t, "--user", "not-a-uuid", "profile", "get")
	assert.Error(t, err)
}

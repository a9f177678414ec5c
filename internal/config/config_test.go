// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_PopulatesNestedGroups(t *testing.T) {
	t.Setenv("APP_TOKEN_SIGN_KEY", "super-secret")
	t.Setenv("APP_TOKEN_DURATION", "45m")
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://localhost:5432/vault")
	t.Setenv("STORAGE_LOCAL_PATH", "/tmp/vault.db")
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:8080")
	t.Setenv("ADAPTER_ADDRESS", "https://vault.example.com")
	t.Setenv("SYNC_INTERVAL", "5m")
	t.Setenv("SYNC_RETENTION", "720h")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "super-secret", cfg.App.TokenSignKey)
	assert.Equal(t, 45*time.Minute, cfg.App.TokenDuration)
	assert.Equal(t, "postgres://localhost:5432/vault", cfg.Storage.DB.DSN)
	assert.Equal(t, "/tmp/vault.db", cfg.Storage.Local.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, "https://vault.example.com", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 720*time.Hour, cfg.Sync.Retention)
}

func TestParseJSON_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"app": {"token_sign_key": "k", "token_issuer": "vault-sync", "token_duration": "1h", "auth_salt": "auth-v1"},
		"storage": {"db": {"dsn": "postgres://db/vault"}, "local": {"path": "state.db"}},
		"server": {"http_address": "localhost:9090", "request_timeout": "30s"},
		"adapter": {"http_address": "http://localhost:9090", "request_timeout": "10s"},
		"sync": {"interval": "3m", "retention": "720h", "max_merge_retries": 4}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "vault-sync", cfg.App.TokenIssuer)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "auth-v1", cfg.App.AuthSalt)
	assert.Equal(t, "postgres://db/vault", cfg.Storage.DB.DSN)
	assert.Equal(t, "state.db", cfg.Storage.Local.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 3*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 4, cfg.Sync.MaxMergeRetries)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "String", input: `"90s"`, want: 90 * time.Second},
		{name: "Number", input: `1000000000`, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}

	t.Run("Garbage", func(t *testing.T) {
		var d Duration
		assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	})
}

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{name: "Localhost", input: "localhost:8080", want: "localhost:8080"},
		{name: "IP", input: "127.0.0.1:9000", want: "127.0.0.1:9000"},
		{name: "MissingPort", input: "localhost", wantErr: true},
		{name: "BadPort", input: "localhost:zero", wantErr: true},
		{name: "NegativePort", input: "localhost:-1", wantErr: true},
		{name: "BadHost", input: "not-an-ip:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			App:     ClientApp{AuthSalt: "auth-v1"},
			Adapter: ClientAdapter{HTTPAddress: "http://localhost:8080", RequestTimeout: 10 * time.Second},
			Storage: ClientStorage{Local: ClientLocal{Path: "state.db"}},
			Sync:    ClientSync{Interval: 5 * time.Minute},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid().validate())
	})

	t.Run("MissingLocalPath", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Local.Path = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
	})

	t.Run("MissingAdapterAddress", func(t *testing.T) {
		cfg := valid()
		cfg.Adapter.HTTPAddress = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidAdapterConfigs)
	})

	t.Run("ZeroSyncInterval", func(t *testing.T) {
		cfg := valid()
		cfg.Sync.Interval = 0
		assert.ErrorIs(t, cfg.validate(), ErrInvalidSyncConfigs)
	})

	t.Run("MissingAuthSalt", func(t *testing.T) {
		cfg := valid()
		cfg.App.AuthSalt = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidAppConfigs)
	})
}

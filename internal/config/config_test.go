package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, executor.ProviderGoogleAI, cfg.Provider.Name)
	assert.Equal(t, "gemini-1.5-flash-002", cfg.Provider.Model)
	assert.Equal(t, 3, cfg.RetryLimit)
	assert.Equal(t, "/socket.io", cfg.Broadcast.Path)
	assert.Empty(t, cfg.Broadcast.Addr)
	assert.Zero(t, cfg.Broadcast.Wait)
	assert.Equal(t, time.Second, cfg.Broadcast.Linger)
	assert.Empty(t, cfg.Journal.Path)
	assert.Equal(t, "uuid", cfg.RunID)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subflow.yaml")
	content := `
provider:
  name: ollama
  model: llama3
  base_url: http://gpu-box:11434
retry_limit: 5
journal:
  path: /tmp/subflow.db
broadcast:
  linger: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SUBFLOW_RETRY_LIMIT", "7")
	t.Setenv("SUBFLOW_RUN_ID", "sequence")
	t.Setenv("SUBFLOW_BROADCAST_WAIT", "2s")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, executor.ProviderConfig{Name: "ollama", Model: "llama3", BaseURL: "http://gpu-box:11434"}, cfg.Provider)
	assert.Equal(t, 7, cfg.RetryLimit)
	assert.Equal(t, "/tmp/subflow.db", cfg.Journal.Path)
	assert.Equal(t, "sequence", cfg.RunID)
	assert.Equal(t, 250*time.Millisecond, cfg.Broadcast.Linger)
	assert.Equal(t, 2*time.Second, cfg.Broadcast.Wait)
}

func TestLoad_DefaultModelOnlyForDefaultProvider(t *testing.T) {
	v := New()
	v.Set("provider.name", executor.ProviderOpenAI)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Provider.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, wferrors.HasCode(err, wferrors.ErrorCategoryConfiguration, wferrors.CodeConfigLoad))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Provider:   executor.ProviderConfig{Name: executor.ProviderEcho},
			RetryLimit: 3,
			RunID:      "uuid",
			Broadcast:  BroadcastConfig{Path: "/socket.io"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown provider", func(c *Config) { c.Provider.Name = "bard" }, true},
		{"zero retry limit", func(c *Config) { c.RetryLimit = 0 }, true},
		{"unknown run id", func(c *Config) { c.RunID = "snowflake" }, true},
		{"relative broadcast path", func(c *Config) {
			c.Broadcast.Addr = ":3001"
			c.Broadcast.Path = "events"
		}, true},
		{"path ignored without addr", func(c *Config) { c.Broadcast.Path = "events" }, false},
		{"negative linger", func(c *Config) { c.Broadcast.Linger = -time.Second }, true},
		{"negative wait", func(c *Config) { c.Broadcast.Wait = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, wferrors.IsUserError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	wferrors "github.com/maxkimambo/subflow/internal/errors"
	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/maxkimambo/subflow/internal/retry"
	"github.com/spf13/viper"
)

const EnvPrefix = "SUBFLOW"

// Config holds everything a workflow run needs besides its descriptors.
type Config struct {
	Provider   executor.ProviderConfig `mapstructure:"provider"`
	RetryLimit int                     `mapstructure:"retry_limit"`
	Broadcast  BroadcastConfig         `mapstructure:"broadcast"`
	Journal    JournalConfig           `mapstructure:"journal"`
	RunID      string                  `mapstructure:"run_id"`
}

// BroadcastConfig configures the socket.io event server. An empty Addr
// disables it. Wait holds the run until an observer connects or the
// duration elapses; Linger keeps the server up after the run so connected
// observers receive the final events.
type BroadcastConfig struct {
	Addr   string        `mapstructure:"addr"`
	Path   string        `mapstructure:"path"`
	Wait   time.Duration `mapstructure:"wait"`
	Linger time.Duration `mapstructure:"linger"`
}

// JournalConfig configures the SQLite event journal. An empty Path
// disables it.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// New returns a viper instance with defaults and SUBFLOW_* environment
// bindings, e.g. SUBFLOW_PROVIDER_API_KEY for provider.api_key.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("provider.name", executor.DefaultProvider)
	v.SetDefault("provider.model", executor.DefaultModel)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("retry_limit", retry.DefaultLimit)
	v.SetDefault("broadcast.addr", "")
	v.SetDefault("broadcast.path", events.DefaultSocketPath)
	v.SetDefault("broadcast.wait", "0s")
	v.SetDefault("broadcast.linger", "1s")
	v.SetDefault("journal.path", "")
	v.SetDefault("run_id", "uuid")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file at path into v and decodes the
// result. Flags bound to v before the call take precedence.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, wferrors.NewConfigError("Failed to read config file", err).
				WithContext("file", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, wferrors.NewConfigError("Failed to decode configuration", err)
	}

	// The default model only exists on the default provider; other
	// providers fall back to their own default.
	if cfg.Provider.Name != executor.DefaultProvider && cfg.Provider.Model == executor.DefaultModel {
		cfg.Provider.Model = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(executor.Providers, c.Provider.Name) {
		return wferrors.NewConfigError(fmt.Sprintf("Unknown provider %q", c.Provider.Name), nil).
			WithContext("provider", c.Provider.Name).
			WithTroubleshooting(fmt.Sprintf("Use one of: %s", strings.Join(executor.Providers, ", ")))
	}

	if c.RetryLimit < 1 {
		return wferrors.NewConfigError(fmt.Sprintf("retry_limit must be at least 1, got %d", c.RetryLimit), nil).
			WithContext("retry_limit", c.RetryLimit)
	}

	if c.RunID != "uuid" && c.RunID != "sequence" {
		return wferrors.NewConfigError(fmt.Sprintf("Unknown run_id generator %q", c.RunID), nil).
			WithTroubleshooting("Use uuid or sequence")
	}

	if c.Broadcast.Addr != "" && !strings.HasPrefix(c.Broadcast.Path, "/") {
		return wferrors.NewConfigError(fmt.Sprintf("broadcast.path must start with /, got %q", c.Broadcast.Path), nil)
	}

	if c.Broadcast.Wait < 0 || c.Broadcast.Linger < 0 {
		return wferrors.NewConfigError("broadcast.wait and broadcast.linger must not be negative", nil).
			WithContext("wait", c.Broadcast.Wait.String()).
			WithContext("linger", c.Broadcast.Linger.String())
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the runtime configuration for the advisor API.
type Settings struct {
	ListenAddress string        `mapstructure:"listen_address"`
	GitHubRepo    string        `mapstructure:"github_repo"`
	GitHubBranch  string        `mapstructure:"github_branch"`
	GitHubToken   string        `mapstructure:"github_token"`
	ModelCacheDir string        `mapstructure:"model_cache_dir"`
	ReportTTL     time.Duration `mapstructure:"report_ttl"`
	LogLevel      string        `mapstructure:"log_level"`

	// Application Insights instrumentation key; telemetry is disabled when empty.
	AppInsightsKey string `mapstructure:"appinsights_key"`
}

// Load reads settings from an optional config file and ADVISOR_* environment
// variables. Defaults match the original deployment (public model repo, main
// branch, model_cache directory next to the binary).
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("listen_address", ":8080")
	v.SetDefault("github_repo", "Afrah-create/agricultural-advisory-system")
	v.SetDefault("github_branch", "main")
	v.SetDefault("github_token", "")
	v.SetDefault("model_cache_dir", "model_cache")
	v.SetDefault("report_ttl", 10*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("appinsights_key", "")

	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if settings.GitHubRepo == "" {
		return nil, fmt.Errorf("github_repo must be set")
	}
	return &settings, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Env string

const (
	Dev        Env = "development"
	Test       Env = "test"
	Production Env = "production"
)

type Config struct {
	AppName string
	ENV     Env
	AppPort int

	LogLevel string
	// LogFile is appended to stderr output when set.
	LogFile string

	// HomeDir overrides the per-user data directory (runtime, npm prefix, history, settings).
	HomeDir string

	NodeVersion string
	NodeDistURL string
	CliPackage  string

	CliTimeout        time.Duration
	AuthProbeTimeout  time.Duration
	VerifyTimeout     time.Duration
	InstallTimeout    time.Duration
	LoginPollInterval time.Duration
	LoginMaxPolls     int

	// CredentialsPath defaults to ~/.claude/.credentials.json when empty.
	CredentialsPath string

	HistoryCatalog bool

	CORSAllowedOrigins []string
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "ultramdmemo")
	v.SetDefault("APP_ENV", string(Dev))
	v.SetDefault("APP_PORT", 8765)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("NODE_VERSION", "v20.18.1")
	v.SetDefault("NODE_DIST_URL", "https://nodejs.org/dist")
	v.SetDefault("CLI_PACKAGE", "@anthropic-ai/claude-code")

	v.SetDefault("CLI_TIMEOUT", "120s")
	v.SetDefault("AUTH_PROBE_TIMEOUT", "20s")
	v.SetDefault("VERIFY_TIMEOUT", "30s")
	v.SetDefault("INSTALL_TIMEOUT", "10m")
	v.SetDefault("LOGIN_POLL_INTERVAL", "10s")
	v.SetDefault("LOGIN_MAX_POLLS", 60)

	v.SetDefault("HISTORY_CATALOG", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		ENV:     Env(strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))),
		AppPort: v.GetInt("APP_PORT"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  strings.TrimSpace(v.GetString("LOG_FILE")),

		HomeDir: strings.TrimSpace(v.GetString("MDMEMO_HOME")),

		NodeVersion: strings.TrimSpace(v.GetString("NODE_VERSION")),
		NodeDistURL: strings.TrimRight(strings.TrimSpace(v.GetString("NODE_DIST_URL")), "/"),
		CliPackage:  strings.TrimSpace(v.GetString("CLI_PACKAGE")),

		CliTimeout:        v.GetDuration("CLI_TIMEOUT"),
		AuthProbeTimeout:  v.GetDuration("AUTH_PROBE_TIMEOUT"),
		VerifyTimeout:     v.GetDuration("VERIFY_TIMEOUT"),
		InstallTimeout:    v.GetDuration("INSTALL_TIMEOUT"),
		LoginPollInterval: v.GetDuration("LOGIN_POLL_INTERVAL"),
		LoginMaxPolls:     v.GetInt("LOGIN_MAX_POLLS"),

		CredentialsPath: strings.TrimSpace(v.GetString("CLAUDE_CREDENTIALS_PATH")),

		HistoryCatalog: v.GetBool("HISTORY_CATALOG"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if !strings.HasPrefix(cfg.NodeVersion, "v") {
		return nil, fmt.Errorf("invalid NODE_VERSION %q (expected vX.Y.Z)", cfg.NodeVersion)
	}
	if cfg.CliPackage == "" {
		return nil, fmt.Errorf("CLI_PACKAGE must not be empty")
	}
	for key, d := range map[string]time.Duration{
		"CLI_TIMEOUT":         cfg.CliTimeout,
		"AUTH_PROBE_TIMEOUT":  cfg.AuthProbeTimeout,
		"VERIFY_TIMEOUT":      cfg.VerifyTimeout,
		"INSTALL_TIMEOUT":     cfg.InstallTimeout,
		"LOGIN_POLL_INTERVAL": cfg.LoginPollInterval,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("invalid %s %q", key, d)
		}
	}
	if cfg.LoginMaxPolls <= 0 {
		return nil, fmt.Errorf("invalid LOGIN_MAX_POLLS %d", cfg.LoginMaxPolls)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

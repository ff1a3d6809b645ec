package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dashboard "github.com/goliatone/go-pharmadash/components/dashboard"
	"github.com/goliatone/go-pharmadash/pkg/activity"
)

// Config holds the pharmadash server settings.
type Config struct {
	Server    ServerConfig         `yaml:"server"`
	Log       LogConfig            `yaml:"log"`
	Backend   BackendConfig        `yaml:"backend"`
	Activity  activity.Config      `yaml:"activity"`
	Menu      []dashboard.MenuItem `yaml:"menu"`
	Manifests []string             `yaml:"manifests"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`

	// TemplatesDir replaces the embedded page templates when set.
	TemplatesDir string `yaml:"templates_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BackendConfig points at the pharmacy management API. An empty BaseURL
// serves the built-in demo data.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", BasePath: "/pharmacy"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Activity: activity.Config{
			Enabled: true,
			Channel: activity.DefaultChannel,
		},
	}
}

// Load reads envFiles (".env" when none are given, missing files are
// skipped), then the YAML file at path when set, then PHARMADASH_*
// environment overrides, and validates the result.
func Load(path string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "PHARMADASH_ADDR")
	setString(&c.Server.BasePath, "PHARMADASH_BASE_PATH")
	setString(&c.Server.TemplatesDir, "PHARMADASH_TEMPLATES_DIR")
	setString(&c.Log.Level, "PHARMADASH_LOG_LEVEL")
	setString(&c.Log.Format, "PHARMADASH_LOG_FORMAT")
	setString(&c.Backend.BaseURL, "PHARMADASH_BACKEND_URL")
	setString(&c.Backend.APIKey, "PHARMADASH_BACKEND_API_KEY")
	if val := os.Getenv("PHARMADASH_ACTIVITY_ENABLED"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("config: PHARMADASH_ACTIVITY_ENABLED: %w", err)
		}
		c.Activity.Enabled = enabled
	}
	if val := strings.TrimSpace(os.Getenv("PHARMADASH_ACTIVITY_VERBS")); val != "" {
		c.Activity.Verbs = nil
		for _, verb := range strings.Split(val, ",") {
			if verb = strings.TrimSpace(verb); verb != "" {
				c.Activity.Verbs = append(c.Activity.Verbs, verb)
			}
		}
	}
	return nil
}

func setString(target *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*target = val
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config: server.base_path %q must start with /", c.Server.BasePath)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q must be json or console", c.Log.Format)
	}
	for i, item := range c.Menu {
		if item.Label == "" || item.Path == "" {
			return fmt.Errorf("config: menu entry %d needs label and path", i)
		}
	}
	return nil
}

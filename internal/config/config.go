package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Addr        string           `yaml:"addr" validate:"required"`
	DBPath      string           `yaml:"db_path" validate:"required"`
	Controller  ControllerConfig `yaml:"controller"`
	FixturePath string           `yaml:"fixture_path"`
	Cache       CacheConfig      `yaml:"cache"`
	APIKeyHash  string           `yaml:"api_key_hash"`
	Log         LogConfig        `yaml:"log"`
	ServerIPs   []string         `yaml:"server_ips" validate:"dive,ipv4"`
	Trace       bool             `yaml:"trace"`

	// Args holds the positional arguments left after flag parsing.
	Args []string `yaml:"-"`
}

// ControllerConfig describes how to reach the UniFi Network controller.
type ControllerConfig struct {
	URL         string        `yaml:"url" validate:"omitempty,url"`
	Site        string        `yaml:"site"`
	Username    string        `yaml:"username" validate:"required_with=URL"`
	Password    string        `yaml:"password"`
	UnifiOS     bool          `yaml:"unifi_os"`
	InsecureTLS bool          `yaml:"insecure_tls"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
}

type CacheConfig struct {
	SnapshotTTL time.Duration `yaml:"snapshot_ttl" validate:"gt=0"`
	ServerTTL   time.Duration `yaml:"server_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// ValidationError reports a configuration that cannot be used.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:   ":8080",
		DBPath: getDefaultDBPath(),
		Controller: ControllerConfig{
			Site:    "default",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			SnapshotTTL: 30 * time.Second,
			ServerTTL:   5 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, NETPATH_* environment variables,
// an optional YAML file and finally the command line. extra registers
// additional flags a binary needs; it is called once per parse pass.
func Load(name string, args []string, extra ...func(*flag.FlagSet)) (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// First pass only discovers -config; the flags are applied after the file.
	scratch := *cfg
	configPath := getEnv("NETPATH_CONFIG", "")
	fs := newFlagSet(name, &scratch, &configPath, extra)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := loadFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	var ignored string
	fs = newFlagSet(name, cfg, &ignored, extra)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(name string, cfg *Config, configPath *string, extra []func(*flag.FlagSet)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(configPath, "config", *configPath, "Path to a YAML config file")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.StringVar(&cfg.Controller.URL, "controller", cfg.Controller.URL, "UniFi controller URL")
	fs.StringVar(&cfg.Controller.Site, "site", cfg.Controller.Site, "UniFi site name")
	fs.StringVar(&cfg.Controller.Username, "username", cfg.Controller.Username, "Controller username")
	fs.StringVar(&cfg.Controller.Password, "password", cfg.Controller.Password, "Controller password")
	fs.BoolVar(&cfg.Controller.UnifiOS, "unifi-os", cfg.Controller.UnifiOS, "Controller runs on UniFi OS")
	fs.BoolVar(&cfg.Controller.InsecureTLS, "insecure", cfg.Controller.InsecureTLS, "Skip TLS verification")
	fs.DurationVar(&cfg.Controller.Timeout, "controller-timeout", cfg.Controller.Timeout, "Controller request timeout")
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "Read the inventory from a YAML fixture instead of a controller")
	fs.DurationVar(&cfg.Cache.SnapshotTTL, "snapshot-ttl", cfg.Cache.SnapshotTTL, "Inventory snapshot cache TTL")
	fs.DurationVar(&cfg.Cache.ServerTTL, "server-ttl", cfg.Cache.ServerTTL, "Server position cache TTL")
	fs.StringVar(&cfg.APIKeyHash, "api-key-hash", cfg.APIKeyHash, "bcrypt hash of the API key (empty disables auth)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format (json, text)")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export OpenTelemetry spans to stdout")
	fs.Func("server-ips", "Comma separated IPv4 addresses of this host", func(s string) error {
		cfg.ServerIPs = splitList(s)
		return nil
	})

	for _, fn := range extra {
		fn(fs)
	}
	return fs
}

// Validate checks struct constraints and that exactly one inventory source is configured.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{Field: fe.Namespace(), Message: fmt.Sprintf("failed %q", fe.Tag())}
		}
		return err
	}

	hasController := c.Controller.URL != ""
	hasFixture := c.FixturePath != ""
	switch {
	case hasController && hasFixture:
		return &ValidationError{Field: "inventory", Message: "set either controller.url or fixture_path, not both"}
	case !hasController && !hasFixture:
		return &ValidationError{Field: "inventory", Message: "controller.url or fixture_path is required"}
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Addr = getEnv("NETPATH_ADDR", cfg.Addr)
	cfg.DBPath = getEnv("NETPATH_DB", cfg.DBPath)
	cfg.Controller.URL = getEnv("NETPATH_CONTROLLER_URL", cfg.Controller.URL)
	cfg.Controller.Site = getEnv("NETPATH_CONTROLLER_SITE", cfg.Controller.Site)
	cfg.Controller.Username = getEnv("NETPATH_CONTROLLER_USERNAME", cfg.Controller.Username)
	cfg.Controller.Password = getEnv("NETPATH_CONTROLLER_PASSWORD", cfg.Controller.Password)
	cfg.FixturePath = getEnv("NETPATH_FIXTURE", cfg.FixturePath)
	cfg.APIKeyHash = getEnv("NETPATH_API_KEY_HASH", cfg.APIKeyHash)
	cfg.Log.Level = getEnv("NETPATH_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("NETPATH_LOG_FORMAT", cfg.Log.Format)
	if v, ok := os.LookupEnv("NETPATH_SERVER_IPS"); ok {
		cfg.ServerIPs = splitList(v)
	}

	var err error
	if cfg.Controller.UnifiOS, err = getEnvBool("NETPATH_CONTROLLER_UNIFI_OS", cfg.Controller.UnifiOS); err != nil {
		return err
	}
	if cfg.Trace, err = getEnvBool("NETPATH_TRACE", cfg.Trace); err != nil {
		return err
	}
	if cfg.Controller.InsecureTLS, err = getEnvBool("NETPATH_CONTROLLER_INSECURE_TLS", cfg.Controller.InsecureTLS); err != nil {
		return err
	}
	if cfg.Controller.Timeout, err = getEnvDuration("NETPATH_CONTROLLER_TIMEOUT", cfg.Controller.Timeout); err != nil {
		return err
	}
	if cfg.Cache.SnapshotTTL, err = getEnvDuration("NETPATH_SNAPSHOT_TTL", cfg.Cache.SnapshotTTL); err != nil {
		return err
	}
	if cfg.Cache.ServerTTL, err = getEnvDuration("NETPATH_SERVER_TTL", cfg.Cache.ServerTTL); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// getDefaultDBPath returns the default database path in the user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "netpath.db"
	}

	dir := filepath.Join(home, ".netpath")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Could not create .netpath directory, using current dir", "error", err)
		return "netpath.db"
	}
	return filepath.Join(dir, "netpath.db")
}

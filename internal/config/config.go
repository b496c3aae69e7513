package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvPrefix prefixes every environment override, e.g. OASEDIT_LOG_LEVEL
	EnvPrefix = "OASEDIT_"
	// DatabaseFile is the SQLite file created inside the data directory
	DatabaseFile = "oasedit.db"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every setting of the application
type Config struct {
	DataDir        string        `koanf:"data_dir"`
	DBPath         string        `koanf:"db_path"`
	Theme          string        `koanf:"theme"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	ProbeTimeout   time.Duration `koanf:"probe_timeout"`
	MissingParams  string        `koanf:"missing_params"`
	HistoryEnabled bool          `koanf:"history_enabled"`
	TLSCAFile      string        `koanf:"tls_ca_file"`
	TLSCertFile    string        `koanf:"tls_cert_file"`
	TLSKeyFile     string        `koanf:"tls_key_file"`
	TLSInsecure    bool          `koanf:"tls_insecure"`
}

// Defaults returns the built-in configuration (~/.oasedit data directory)
func Defaults() Config {
	dataDir := ".oasedit"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".oasedit")
	}
	return Config{
		DataDir:        dataDir,
		Theme:          "light",
		LogLevel:       "warn",
		LogFormat:      "console",
		MissingParams:  "ignore",
		HistoryEnabled: true,
	}
}

// DefaultFile returns $XDG_CONFIG_HOME/oasedit/config.yaml or the platform equivalent
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "oasedit", "config.yaml")
}

// LoadOptions selects the sources layered over the defaults
type LoadOptions struct {
	// File is an explicit config file; it must exist. Empty tries DefaultFile.
	File  string
	Flags *pflag.FlagSet
}

// Load layers defaults, the config file, OASEDIT_* environment variables
// and changed command line flags, in that order
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := opts.File
	if path == "" {
		path = DefaultFile()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RegisterFlags declares the flags Load understands. Flag names use dashes
// where keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("data-dir", d.DataDir, "directory holding the local database")
	fs.String("db-path", "", "SQLite database path (default <data-dir>/"+DatabaseFile+")")
	fs.String("theme", d.Theme, "color theme: light or dark")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "log format: console or json")
	fs.Duration("request-timeout", 0, "timeout for sent requests (0 = no timeout)")
	fs.Duration("probe-timeout", 0, "timeout for server probes (0 = no timeout)")
	fs.String("missing-params", d.MissingParams, "required parameters left empty: ignore, warn or block")
	fs.Bool("history-enabled", d.HistoryEnabled, "record sent requests in history")
	fs.String("tls-ca-file", "", "CA bundle used to verify servers")
	fs.String("tls-cert-file", "", "client certificate (PEM)")
	fs.String("tls-key-file", "", "client private key (PEM)")
	fs.Bool("tls-insecure", false, "skip server certificate verification")
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	var problems []string
	if c.DataDir == "" {
		problems = append(problems, "data_dir is empty")
	}
	switch c.Theme {
	case "light", "dark":
	default:
		problems = append(problems, fmt.Sprintf("theme %q (expected light or dark)", c.Theme))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q (expected console or json)", c.LogFormat))
	}
	switch strings.ToLower(c.MissingParams) {
	case "", "ignore", "warn", "block":
	default:
		problems = append(problems, fmt.Sprintf("missing_params %q (expected ignore, warn or block)", c.MissingParams))
	}
	if c.RequestTimeout < 0 || c.ProbeTimeout < 0 {
		problems = append(problems, "timeouts must not be negative")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		problems = append(problems, "tls_cert_file and tls_key_file must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DatabasePath returns db_path or the default file inside data_dir
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, DatabaseFile)
}

// Initialize creates the data directory if it doesn't exist
func Initialize(c *Config) error {
	if err := os.MkdirAll(c.DataDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.DataDir, err)
	}
	return nil
}

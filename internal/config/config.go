package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. LINKORG_NOTES_DIR.
	EnvPrefix = "LINKORG"

	appDir   = "linkorg"
	fileName = "config.toml"
)

// defaultConfigTOML is written to config.toml on first run.
const defaultConfigTOML = `# linkorg configuration
# Every key can be overridden with a LINKORG_<KEY> environment variable,
# e.g. LINKORG_NOTES_DIR or LINKORG_S3_BUCKET.

# Directory scanned for .org, .md, .html, .csv, .txt, .docx and .pdf notes.
notes_dir = "~/notes"

# Where the link index (linkorg.db) is kept.
data_dir = "~/.local/share/linkorg"

port = "8090"
# api_key = ""

# scan_interval = "15m"
`

type Config struct {
	NotesDir string `mapstructure:"notes_dir"`
	DataDir  string `mapstructure:"data_dir"`

	Port string `mapstructure:"port"`

	// Auth; the API is open when empty.
	APIKey string `mapstructure:"api_key"`

	// Scan pipeline
	WorkerCount      int           `mapstructure:"worker_count"`
	MaxQueueSize     int           `mapstructure:"max_queue_size"`
	ParseConcurrency int           `mapstructure:"parse_concurrency"`
	ScanInterval     time.Duration `mapstructure:"scan_interval"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Library limits
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
	CacheSize    int   `mapstructure:"cache_size"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`

	LogLevel string `mapstructure:"log_level"`

	S3 S3Config `mapstructure:"s3"`
}

// S3Config points exports at an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether any S3 setting was given.
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" || s.Bucket != "" || s.AccessKey != "" || s.SecretKey != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("notes_dir", "~/notes")
	v.SetDefault("data_dir", "~/.local/share/linkorg")
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", 1)
	v.SetDefault("max_queue_size", 16)
	v.SetDefault("parse_concurrency", 4)
	v.SetDefault("scan_interval", "0s")
	v.SetDefault("job_ttl", "1h")
	v.SetDefault("max_file_bytes", 10<<20)
	v.SetDefault("cache_size", 1024)
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.use_ssl", true)
}

// DefaultPath returns <user config dir>/linkorg/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the config file at path (DefaultPath when empty), creating it
// with defaults if missing, then applies .env and LINKORG_* overrides.
func Load(path string) (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if err := EnsureFile(path); err != nil {
		return Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.NotesDir = ExpandTilde(cfg.NotesDir)
	cfg.DataDir = ExpandTilde(cfg.DataDir)

	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.ParseConcurrency <= 0 {
		cfg.ParseConcurrency = 4
	}
	if cfg.ScanInterval < 0 {
		cfg.ScanInterval = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 10 << 20
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.NotesDir == "" {
		errs = append(errs, errors.New("notes_dir is required"))
	} else if info, err := os.Stat(c.NotesDir); err != nil {
		errs = append(errs, fmt.Errorf("notes_dir: %w", err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("notes_dir %s is not a directory", c.NotesDir))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.S3.Enabled() {
		if c.S3.Endpoint == "" {
			errs = append(errs, errors.New("s3.endpoint is required when s3 is configured"))
		}
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required when s3 is configured"))
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, errors.New("s3.access_key and s3.secret_key are required when s3 is configured"))
		}
	}
	return errors.Join(errs...)
}

// EnsureFile writes the default config to path unless a file exists there.
func EnsureFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigTOML), 0o644)
}

// ExpandTilde replaces a leading "~" with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

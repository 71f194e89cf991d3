package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DownloadsDir string `toml:"downloads_dir" env:"YTMP3_DOWNLOADS_DIR"`
	StaticDir    string `toml:"static_dir" env:"YTMP3_STATIC_DIR"`
	// MinFreeMiB is the free space below which preflight warns. Zero disables the check.
	MinFreeMiB int `toml:"min_free_mib" env:"YTMP3_MIN_FREE_MIB"`
}

// Server contains HTTP listener configuration.
type Server struct {
	Host         string   `toml:"host" env:"YTMP3_HOST"`
	Port         int      `toml:"port" env:"PORT"`
	AllowedHosts []string `toml:"allowed_hosts" env:"YTMP3_ALLOWED_HOSTS" env-separator:","`
	// RateLimit is the per-client request rate in requests per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit" env:"YTMP3_RATE_LIMIT"`
	RateBurst int     `toml:"rate_burst" env:"YTMP3_RATE_BURST"`
}

// Tools contains external binary configuration.
type Tools struct {
	YtDlpBinary    string `toml:"ytdlp_binary" env:"YTMP3_YTDLP_BINARY"`
	FFmpegLocation string `toml:"ffmpeg_location" env:"YTMP3_FFMPEG_LOCATION"`
	FFprobeBinary  string `toml:"ffprobe_binary" env:"YTMP3_FFPROBE_BINARY"`
	VerifyOutput   bool   `toml:"verify_output" env:"YTMP3_VERIFY_OUTPUT"`
	InfoTimeout    int    `toml:"info_timeout" env:"YTMP3_INFO_TIMEOUT"`
	ConvertTimeout int    `toml:"convert_timeout" env:"YTMP3_CONVERT_TIMEOUT"`
}

// Sweep contains configuration for the periodic removal of undownloaded files.
type Sweep struct {
	Interval int `toml:"interval" env:"YTMP3_SWEEP_INTERVAL"`
	MaxAge   int `toml:"max_age" env:"YTMP3_SWEEP_MAX_AGE"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"YTMP3_LOG_FORMAT"`
	Level  string `toml:"level" env:"YTMP3_LOG_LEVEL"`
	File   string `toml:"file" env:"YTMP3_LOG_FILE"`
}

// Config encapsulates all configuration values for ytmp3.
//
// Configuration sections by subsystem:
//   - Paths: downloads and static asset directories
//   - Server: listen address, accepted media hosts, rate limiting
//   - Tools: yt-dlp/ffmpeg/ffprobe locations and timeouts
//   - Sweep: cleanup interval and maximum file age
//   - Logging: log format, level, and optional file
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	Tools   Tools   `toml:"tools"`
	Sweep   Sweep   `toml:"sweep"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// variables override values read from the file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server writes to.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.DownloadsDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.DownloadsDir, err)
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return fmt.Errorf("create log directory for %q: %w", file, err)
		}
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// InfoTimeout returns the metadata lookup timeout.
func (c *Config) InfoTimeout() time.Duration {
	return time.Duration(c.Tools.InfoTimeout) * time.Second
}

// ConvertTimeout returns the audio extraction timeout.
func (c *Config) ConvertTimeout() time.Duration {
	return time.Duration(c.Tools.ConvertTimeout) * time.Second
}

// SweepInterval returns the delay between cleanup passes.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweep.Interval) * time.Second
}

// SweepMaxAge returns the age after which an undownloaded file is removed.
func (c *Config) SweepMaxAge() time.Duration {
	return time.Duration(c.Sweep.MaxAge) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := homedir.Expand(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

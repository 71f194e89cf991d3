package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		c.Paths.DownloadsDir = defaultDownloadsDir
	}
	if c.Paths.DownloadsDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadsDir)); err != nil {
		return fmt.Errorf("paths.downloads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StaticDir) != "" {
		if c.Paths.StaticDir, err = expandPath(strings.TrimSpace(c.Paths.StaticDir)); err != nil {
			return fmt.Errorf("paths.static_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	hosts := make([]string, 0, len(c.Server.AllowedHosts))
	seen := make(map[string]struct{}, len(c.Server.AllowedHosts))
	for _, host := range c.Server.AllowedHosts {
		normalized := strings.Trim(strings.ToLower(strings.TrimSpace(host)), ".")
		normalized = strings.TrimPrefix(normalized, "www.")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		hosts = append(hosts, normalized)
	}
	if len(hosts) == 0 {
		hosts = defaultAllowedHosts()
	}
	c.Server.AllowedHosts = hosts
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = defaultRateBurst
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YtDlpBinary = strings.TrimSpace(c.Tools.YtDlpBinary)
	if c.Tools.YtDlpBinary == "" {
		c.Tools.YtDlpBinary = defaultYtDlpBinary
	}
	c.Tools.FFprobeBinary = strings.TrimSpace(c.Tools.FFprobeBinary)
	if c.Tools.FFprobeBinary == "" {
		c.Tools.FFprobeBinary = defaultFFprobeBinary
	}
	c.Tools.FFmpegLocation = strings.TrimSpace(c.Tools.FFmpegLocation)
	if c.Tools.InfoTimeout <= 0 {
		c.Tools.InfoTimeout = defaultInfoTimeout
	}
	if c.Tools.ConvertTimeout <= 0 {
		c.Tools.ConvertTimeout = defaultConvertTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

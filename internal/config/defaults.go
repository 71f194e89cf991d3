package config

const (
	defaultConfigPath     = "~/.config/ytmp3/config.toml"
	projectConfigName     = "ytmp3.toml"
	defaultDownloadsDir   = "downloads"
	defaultStaticDir      = "public"
	defaultMinFreeMiB     = 512
	defaultHost           = "0.0.0.0"
	defaultPort           = 3000
	defaultRateBurst      = 10
	defaultYtDlpBinary    = "yt-dlp"
	defaultFFprobeBinary  = "ffprobe"
	defaultInfoTimeout    = 60
	defaultConvertTimeout = 300
	defaultSweepInterval  = 3600
	defaultSweepMaxAge    = 3600
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

func defaultAllowedHosts() []string {
	return []string{"youtube.com", "youtu.be"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadsDir: defaultDownloadsDir,
			StaticDir:    defaultStaticDir,
			MinFreeMiB:   defaultMinFreeMiB,
		},
		Server: Server{
			Host:         defaultHost,
			Port:         defaultPort,
			AllowedHosts: defaultAllowedHosts(),
			RateBurst:    defaultRateBurst,
		},
		Tools: Tools{
			YtDlpBinary:    defaultYtDlpBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			InfoTimeout:    defaultInfoTimeout,
			ConvertTimeout: defaultConvertTimeout,
		},
		Sweep: Sweep{
			Interval: defaultSweepInterval,
			MaxAge:   defaultSweepMaxAge,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

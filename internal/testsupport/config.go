package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ytmp3/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The downloads directory exists on return; the static directory does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DownloadsDir = filepath.Join(base, "downloads")
	cfgVal.Paths.StaticDir = filepath.Join(base, "public")
	cfgVal.Paths.MinFreeMiB = 0
	cfgVal.Server.Host = "127.0.0.1"
	cfgVal.Server.Port = 0
	if err := os.MkdirAll(cfgVal.Paths.DownloadsDir, 0o755); err != nil {
		t.Fatalf("mkdir downloads: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithYtDlpStub installs a fake yt-dlp and points the config at it.
func WithYtDlpStub(stub YtDlpStub) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.YtDlpBinary = WriteYtDlpStub(b.t, filepath.Join(b.baseDir, "bin"), stub)
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp, ffmpeg, and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteStub(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DownloadsDir)
}

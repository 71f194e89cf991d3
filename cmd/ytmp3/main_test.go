package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ytmp3/internal/config"
	"ytmp3/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	// Load rejects the ephemeral port 0; nothing here listens.
	cfg.Server.Port = 38017
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func TestInfoCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithYtDlpStub(testsupport.YtDlpStub{}))

	out, _, err := runCLI(t, []string{"info", "--json", "https://youtu.be/dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, `"title": "Never Gonna Give You Up"`)
	requireContains(t, out, `"duration": "3:32"`)
	requireContains(t, out, `"id": "dQw4w9WgXcQ"`)
}

func TestInfoCommandTable(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithYtDlpStub(testsupport.YtDlpStub{}))

	out, _, err := runCLI(t, []string{"info", "https://youtu.be/dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "Rick Astley")
	requireContains(t, out, "20091025")
}

func TestInfoCommandReportsToolFailure(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithYtDlpStub(testsupport.YtDlpStub{
		Stderr:   "ERROR: [youtube] abc: Video unavailable",
		ExitCode: 1,
	}))

	_, _, err := runCLI(t, []string{"info", "https://youtu.be/abc"}, env.configPath)
	if err == nil {
		t.Fatal("expected error")
	}
	requireContains(t, err.Error(), "Video unavailable")
}

func TestConvertCommandWritesTitledFile(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithYtDlpStub(testsupport.YtDlpStub{AudioBytes: "ID3-audio"}))
	outDir := filepath.Join(env.baseDir, "music")

	out, _, err := runCLI(t, []string{"convert", "--quality", "192", "--out-dir", outDir, "https://youtu.be/dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "192K")

	data, err := os.ReadFile(filepath.Join(outDir, "Never Gonna Give You Up.mp3"))
	if err != nil {
		t.Fatalf("expected titled output: %v", err)
	}
	if string(data) != "ID3-audio" {
		t.Fatalf("unexpected content %q", data)
	}

	leftovers, err := filepath.Glob(filepath.Join(env.cfg.Paths.DownloadsDir, "*.mp3"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected downloads dir to be empty, got %v", leftovers)
	}
}

func TestSweepCommandRemovesStaleFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.cfg.Paths.DownloadsDir, "1000.mp3")
	fresh := filepath.Join(env.cfg.Paths.DownloadsDir, "2000.mp3")
	testsupport.WriteAgedFile(t, stale, 10, 2*time.Hour)
	testsupport.WriteFile(t, fresh, 10)

	out, _, err := runCLI(t, []string{"sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	requireContains(t, out, "Removed 1 file(s)")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file removed, stat err=%v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh file kept: %v", err)
	}

	out, _, err = runCLI(t, []string{"sweep", "--max-age", "0s"}, env.configPath)
	if err != nil {
		t.Fatalf("sweep --max-age: %v", err)
	}
	requireContains(t, out, "Removed 1 file(s)")
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.DownloadsDir, "1700000000000.mp3"), 2048)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "All dependencies available")
	requireContains(t, out, "Pending files (1)")
	requireContains(t, out, "1700000000000")
	requireContains(t, out, "2 KB")
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.DownloadsDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

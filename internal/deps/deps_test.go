package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestCheckFFmpegForYtDlpDirectoryLocation(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, executableName("ffmpeg"))
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	status := CheckFFmpegForYtDlp(dir)
	if !status.Available {
		t.Fatalf("expected ffmpeg in location dir to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegForYtDlpBinaryLocation(t *testing.T) {
	ffmpegPath := filepath.Join(t.TempDir(), "custom-ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	status := CheckFFmpegForYtDlp(ffmpegPath)
	if !status.Available || status.Command != ffmpegPath {
		t.Fatalf("expected explicit binary to be used, got %#v", status)
	}
}

func TestCheckFFmpegForYtDlpBadLocation(t *testing.T) {
	status := CheckFFmpegForYtDlp(filepath.Join(t.TempDir(), "missing"))
	if status.Available {
		t.Fatal("expected missing location to be unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail for missing location")
	}
}

func TestCheckFFmpegForYtDlpPathFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	binDir := t.TempDir()
	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := CheckFFmpegForYtDlp("")
	if !status.Available || status.Command != ffmpegPath {
		t.Fatalf("expected PATH ffmpeg, got %#v", status)
	}
}

func TestCheckFFmpegForYtDlpNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	status := CheckFFmpegForYtDlp("")
	if status.Available {
		t.Fatal("expected ffmpeg to be unavailable with empty PATH")
	}
}

func TestCheckResolvesPathAndKeepsDescription(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "yt-dlp")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := Check(Requirement{Name: "yt-dlp", Command: " yt-dlp ", Description: " media downloader "})
	if !status.Available {
		t.Fatalf("expected yt-dlp to be found, detail %q", status.Detail)
	}
	if status.Path != stub {
		t.Fatalf("expected resolved path %q, got %q", stub, status.Path)
	}
	if status.Command != "yt-dlp" || status.Description != "media downloader" {
		t.Fatalf("expected trimmed fields, got %#v", status)
	}

	missing := Check(Requirement{Name: "Empty"})
	if missing.Available || missing.Detail != "command not configured" {
		t.Fatalf("unexpected status for empty command: %#v", missing)
	}
}

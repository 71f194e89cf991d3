package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"ytmp3/internal/audiostore"
	"ytmp3/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("ytmp3", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "ytmp3:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("ytmp3", statusOK, "Running", true)
	if !strings.HasPrefix(got, "\x1b[") {
		t.Fatalf("expected escape prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "yt-dlp", Available: false},
		{Name: "FFmpeg", Available: true, Command: "ffmpeg"},
		{Name: "FFprobe", Available: false, Optional: true, Detail: "command \"ffprobe\" not found"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] Missing: yt-dlp") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("expected error detail, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (command: ffmpeg)") {
		t.Fatalf("expected ready detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN] command") {
		t.Fatalf("expected warn detail, got %q", lines[3])
	}
}

func TestDependencyLinesOptionalOnly(t *testing.T) {
	lines := dependencyLines([]deps.Status{{Name: "FFprobe", Optional: true}}, false)
	if !strings.Contains(lines[0], "[WARN] Optional missing: FFprobe") {
		t.Fatalf("unexpected summary %q", lines[0])
	}
}

func TestPendingRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []audiostore.Entry{
		{ID: "1", Size: 1536, ModTime: now.Add(-2 * time.Hour)},
		{ID: "2", Size: 0, ModTime: now.Add(-10 * time.Minute)},
	}
	rows := pendingRows(entries, time.Hour, now)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "1.5 KB" || rows[0][3] != "next sweep" {
		t.Fatalf("unexpected stale row %v", rows[0])
	}
	if rows[1][1] != "0 Bytes" || !strings.Contains(rows[1][3], "from now") {
		t.Fatalf("unexpected fresh row %v", rows[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") {
		t.Fatalf("expected row content, got %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestDependencyLinesShowsResolvedPath(t *testing.T) {
	lines := dependencyLines([]deps.Status{{Name: "yt-dlp", Command: "yt-dlp", Path: "/usr/local/bin/yt-dlp", Available: true}}, false)
	if !strings.Contains(lines[1], "[OK] Ready (command: yt-dlp, path: /usr/local/bin/yt-dlp)") {
		t.Fatalf("expected resolved path, got %q", lines[1])
	}
}

package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", CodecName: "mjpeg"},
			{CodecType: "audio", CodecName: "mp3"},
		},
		Format: Format{
			Duration: "212.04",
			BitRate:  "320000",
			Tags:     map[string]string{"TITLE": "Song"},
		},
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.AudioCodec() != "mp3" {
		t.Fatalf("unexpected codec: %q", result.AudioCodec())
	}
	if err := result.CheckAudio(); err != nil {
		t.Fatalf("expected audio check to pass: %v", err)
	}
	if result.DurationSeconds() != 212.04 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.BitRate() != 320000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
	if result.Tag("title") != "Song" {
		t.Fatalf("unexpected title tag: %q", result.Tag("title"))
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
	if !errors.Is(result.CheckAudio(), ErrNoAudio) {
		t.Fatal("expected ErrNoAudio for empty result")
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProberInspectDecodesOutput(t *testing.T) {
	stub := writeStub(t, `cat <<'JSON'
{"streams":[{"index":0,"codec_name":"mp3","codec_type":"audio","sample_rate":"44100","channels":2}],"format":{"format_name":"mp3","duration":"3.5"}}
JSON
`)

	result, err := Prober{Binary: stub}.Inspect(context.Background(), "/tmp/x.mp3")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.AudioStreamCount() != 1 || result.Streams[0].Channels != 2 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestInspectReportsStderrOnFailure(t *testing.T) {
	stub := writeStub(t, "echo 'Invalid data found' >&2\nexit 1\n")

	_, err := Inspect(context.Background(), stub, "/tmp/x.mp3")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "Invalid data found") {
		t.Fatalf("expected stderr in error, got %q", got)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

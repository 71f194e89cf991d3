package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// WriteStub writes an executable shell script named name into dir and
// returns its path. Tests that depend on stubs are skipped on Windows.
func WriteStub(t testing.TB, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// YtDlpStub describes how a fake yt-dlp behaves.
type YtDlpStub struct {
	// InfoJSON is printed for --dump-json invocations.
	InfoJSON string
	// Stderr is written to stderr before exiting with ExitCode.
	Stderr   string
	ExitCode int
	// AudioBytes is written to the expanded --output template on extraction.
	// Empty means the stub reports success without creating a file.
	AudioBytes string
	// ArgsFile, when set, receives one argument per line.
	ArgsFile string
	// Sleep makes the stub block for that many seconds and then exit 0
	// without doing anything else.
	Sleep int
}

// DefaultInfoJSON is a representative --dump-json payload.
const DefaultInfoJSON = `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":212.04,"thumbnail":"https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg","uploader":"Rick Astley","channel":"Rick Astley","webpage_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","upload_date":"20091025","extractor":"youtube"}`

// WriteYtDlpStub writes a fake yt-dlp into dir and returns its path.
func WriteYtDlpStub(t testing.TB, dir string, stub YtDlpStub) string {
	t.Helper()

	var body strings.Builder
	if stub.Sleep > 0 {
		fmt.Fprintf(&body, "exec sleep %d\n", stub.Sleep)
	}
	if stub.ArgsFile != "" {
		fmt.Fprintf(&body, "printf '%%s\\n' \"$@\" > %s\n", shellQuote(stub.ArgsFile))
	}
	if stub.Stderr != "" || stub.ExitCode != 0 {
		fmt.Fprintf(&body, "printf '%%s\\n' %s >&2\n", shellQuote(stub.Stderr))
		fmt.Fprintf(&body, "exit %d\n", stub.ExitCode)
	}
	body.WriteString("mode=extract\nout=\"\"\n")
	body.WriteString("while [ $# -gt 0 ]; do\n")
	body.WriteString("  case \"$1\" in\n")
	body.WriteString("    --dump-json) mode=info ;;\n")
	body.WriteString("    --output) out=\"$2\"; shift ;;\n")
	body.WriteString("  esac\n")
	body.WriteString("  shift\n")
	body.WriteString("done\n")
	info := stub.InfoJSON
	if info == "" {
		info = DefaultInfoJSON
	}
	fmt.Fprintf(&body, "if [ \"$mode\" = info ]; then\n  printf '%%s\\n' %s\n  exit 0\nfi\n", shellQuote(info))
	if stub.AudioBytes != "" {
		body.WriteString("target=$(printf '%s' \"$out\" | sed 's/%(ext)s/mp3/')\n")
		fmt.Fprintf(&body, "printf '%%s' %s > \"$target\"\n", shellQuote(stub.AudioBytes))
	}
	body.WriteString("exit 0\n")

	return WriteStub(t, dir, "yt-dlp", body.String())
}

// ReadArgs returns the arguments recorded by a stub's ArgsFile.
func ReadArgs(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read args file: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

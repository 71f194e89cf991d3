package ytdlp

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	"ytmp3/internal/services"
)

const stderrTailLimit = 300

var (
	notFoundMarkers = []string{
		"Video unavailable",
		"Private video",
		"This video is not available",
		"has been removed",
		"HTTP Error 404",
	}
	invalidURLMarkers = []string{
		"Unsupported URL",
		"is not a valid URL",
	}
)

// classify converts a failed yt-dlp run into a services-tagged error.
func classify(runCtx context.Context, operation string, err error, stderr string) error {
	detail := summarizeStderr(stderr)

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrConfiguration, "ytdlp", operation, "yt-dlp binary not found", err)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "ytdlp", operation, "yt-dlp timed out", runCtx.Err())
	case errors.Is(runCtx.Err(), context.Canceled):
		return services.Wrap(services.ErrTransient, "ytdlp", operation, "cancelled", runCtx.Err())
	case containsAny(stderr, invalidURLMarkers):
		return services.Wrap(services.ErrValidation, "ytdlp", operation, detail, nil)
	case containsAny(stderr, notFoundMarkers):
		return services.Wrap(services.ErrNotFound, "ytdlp", operation, detail, nil)
	}

	if detail == "" {
		return services.Wrap(services.ErrExternalTool, "ytdlp", operation, "yt-dlp failed", err)
	}
	return services.Wrap(services.ErrExternalTool, "ytdlp", operation, detail, err)
}

// summarizeStderr prefers the last "ERROR:" line yt-dlp printed and falls
// back to the tail of stderr.
func summarizeStderr(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return truncate(strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")), stderrTailLimit)
		}
	}
	if len(stderr) > stderrTailLimit {
		return "..." + stderr[len(stderr)-stderrTailLimit:]
	}
	return stderr
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

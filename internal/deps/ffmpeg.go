package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtDlp reports the FFmpeg binary yt-dlp will execute.
//
// yt-dlp's --ffmpeg-location accepts either the ffmpeg binary itself or the
// directory that contains it, and falls back to resolving "ffmpeg" from PATH
// when unset. This helper mirrors that lookup so status output matches what
// a conversion will actually run.
func CheckFFmpegForYtDlp(location string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp for audio extraction",
	}

	location = strings.TrimSpace(location)
	if location != "" {
		candidate := ffmpegCandidate(location)
		result.Command = candidate
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Available = true
			result.Path = candidate
			return result
		}
		result.Detail = fmt.Sprintf("ffmpeg_location %q has no executable ffmpeg", location)
		return result
	}

	ffmpegName := executableName("ffmpeg")
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Path = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func ffmpegCandidate(location string) string {
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return filepath.Join(location, executableName("ffmpeg"))
	}
	return location
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"ytmp3/internal/config"
	"ytmp3/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minMiB
// mebibytes available to unprivileged users. A zero minimum always passes.
func CheckFreeSpace(name, path string, minMiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free", humanize.IBytes(available))
	if minMiB <= 0 {
		return Result{Name: name, Passed: true, Detail: detail}
	}
	required := uint64(minMiB) * 1024 * 1024
	if available < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s minimum)", detail, humanize.IBytes(required))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external binaries for the given config.
// Both the daemon and the CLI status command use this so the requirement
// list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ytdlp := "yt-dlp"
	ffprobe := "ffprobe"
	ffmpegLocation := ""
	if cfg != nil {
		ytdlp = cfg.Tools.YtDlpBinary
		ffprobe = cfg.Tools.FFprobeBinary
		ffmpegLocation = cfg.Tools.FFmpegLocation
	}

	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytdlp,
			Description: "Required for metadata lookup and audio extraction",
		},
	})
	statuses = append(statuses, deps.CheckFFmpegForYtDlp(ffmpegLocation))
	statuses = append(statuses, deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Verifies converted audio when tools.verify_output is enabled",
			Optional:    true,
		},
	})...)
	return statuses
}

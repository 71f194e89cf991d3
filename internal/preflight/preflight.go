package preflight

import (
	"ytmp3/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Downloads directory", cfg.Paths.DownloadsDir),
	}
	if results[0].Passed {
		results = append(results, CheckFreeSpace("Free space", cfg.Paths.DownloadsDir, cfg.Paths.MinFreeMiB))
	}
	return results
}

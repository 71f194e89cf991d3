// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The converter uses it to confirm that a file yt-dlp produced actually
// contains an audio stream before handing out a download link.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: binds a configured ffprobe binary for repeated inspection
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe

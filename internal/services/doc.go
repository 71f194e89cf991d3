// Package services defines shared utilities consumed by the conversion
// service, the yt-dlp wrapper, and the HTTP layer.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers, operation
//     names, and audio file IDs for logging.
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure (bad input, missing file, tool failure, timeout) with errors.Is.
package services

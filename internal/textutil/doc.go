// Package textutil provides the small text helpers shared by the HTTP API and
// the CLI.
//
// The primary use cases are:
//   - Rendering media durations as m:ss for metadata responses
//   - Rendering byte counts with base-1024 units for conversion results
//   - Sanitizing titles so they can be used as download filenames
package textutil

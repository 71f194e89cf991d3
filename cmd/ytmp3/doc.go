// Package main hosts the ytmp3 CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP server and exposes the same yt-dlp
// operations for one-off use from a terminal, plus maintenance commands for
// the downloads directory and configuration. Configuration resolution and
// logger setup live in commandContext so subcommands only deal with their own
// flags and output.
package main

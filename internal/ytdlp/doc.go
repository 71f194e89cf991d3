// Package ytdlp wraps the yt-dlp command-line tool.
//
// Client runs yt-dlp as a child process (never through a shell) for two
// operations: metadata lookup (--dump-json) and audio extraction to MP3.
// Each call carries its own timeout, and failures are tagged with the
// services error markers so HTTP handlers can map them to status codes.
//
// Quality models the three supported MP3 bitrates and the lenient parsing
// rules applied to client input.
package ytdlp

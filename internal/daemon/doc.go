// Package daemon coordinates the long-running ytmp3 server process.
//
// A Daemon owns the HTTP server and the janitor and runs them under one
// context. A flock lock in the downloads directory keeps two servers from
// sharing (and sweeping) the same files. Startup logs a dependency and
// preflight snapshot; missing tools are reported but do not block startup,
// since each request then fails on its own with a clear error.
//
// Keep orchestration here: request handling lives in api and conversion
// logic in convert.
package daemon

// Package preflight provides readiness checks for the filesystem paths and
// external binaries ytmp3 depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll and CheckSystemDeps at startup and logs a
//     warning for each failure. A missing yt-dlp does not stop the server;
//     requests fail individually instead.
//   - The CLI "ytmp3 status" command renders the same results as a table.
package preflight

// Package api exposes the HTTP surface of ytmp3 on top of echo.
//
// Routes live under /api: info, convert, download, and health. Every error
// body has the shape {"error": "..."} (convert failures add "details"), so
// browser clients can render messages without inspecting status codes.
// Static assets from the configured directory are served at the root.
package api

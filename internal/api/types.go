package api

import "ytmp3/internal/ytdlp"

// InfoRequest is the body of POST /api/info.
type InfoRequest struct {
	URL string `json:"url" validate:"required,mediaurl"`
}

// InfoResponse is the body returned by POST /api/info.
type InfoResponse struct {
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Uploader  string `json:"uploader"`
	ID        string `json:"id"`
}

// ConvertRequest is the body of POST /api/convert. Quality accepts "128",
// "192", or "320" as a string or number and defaults to 320K.
type ConvertRequest struct {
	URL     string        `json:"url" validate:"required,mediaurl"`
	Quality ytdlp.Quality `json:"quality"`
}

// ConvertResponse is the body returned by POST /api/convert.
type ConvertResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	FileSize    string `json:"fileSize"`
	Quality     string `json:"quality"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DependencyStatus reports one external binary in the health response.
type DependencyStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Optional  bool   `json:"optional"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// HealthResponse is the body returned by GET /api/health.
type HealthResponse struct {
	Status       string             `json:"status"`
	Version      string             `json:"version"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

const (
	msgInvalidURL      = "Invalid YouTube URL"
	msgURLRequired     = "URL required"
	msgInfoFailed      = "Failed to fetch video info"
	msgConvertFailed   = "Conversion failed"
	msgFileNotFound    = "File not found"
	msgDownloadFailed  = "Download failed"
	msgInvalidBody     = "Invalid request body"
	msgTooManyRequests = "Too many requests"
)

package ytdlp

// Metadata is the subset of yt-dlp's --dump-json output ytmp3 uses.
type Metadata struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Thumbnail  string  `json:"thumbnail"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	WebpageURL string  `json:"webpage_url"`
	UploadDate string  `json:"upload_date"`
	Extractor  string  `json:"extractor"`
	ViewCount  int64   `json:"view_count"`
}

// Author returns the uploader, falling back to the channel name.
func (m Metadata) Author() string {
	if m.Uploader != "" {
		return m.Uploader
	}
	return m.Channel
}

package ytdlp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Quality is an MP3 bitrate accepted by yt-dlp's --audio-quality flag.
type Quality string

const (
	Quality128 Quality = "128K"
	Quality192 Quality = "192K"
	Quality320 Quality = "320K"
)

// DefaultQuality is used whenever the requested quality is missing or unknown.
const DefaultQuality = Quality320

// ParseQuality maps client input to a Quality. "128" and "192" (with or
// without a trailing K) select those bitrates; everything else, including an
// empty string, selects 320K.
func ParseQuality(value string) Quality {
	trimmed := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(value)), "K")
	switch trimmed {
	case "128":
		return Quality128
	case "192":
		return Quality192
	default:
		return DefaultQuality
	}
}

// OrDefault returns q, or DefaultQuality when q is not a known bitrate.
func (q Quality) OrDefault() Quality {
	switch q {
	case Quality128, Quality192, Quality320:
		return q
	default:
		return ParseQuality(string(q))
	}
}

func (q Quality) String() string {
	return string(q)
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (q *Quality) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = DefaultQuality
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = ParseQuality(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*q = DefaultQuality
		return nil
	}
	if f, err := n.Float64(); err == nil {
		*q = ParseQuality(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*q = DefaultQuality
	return nil
}

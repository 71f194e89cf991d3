package api

import (
	"net/url"
	"strings"
)

// urlPolicy decides which media URLs the server forwards to yt-dlp.
type urlPolicy struct {
	hosts []string
}

func newURLPolicy(hosts []string) urlPolicy {
	cleaned := make([]string, 0, len(hosts))
	for _, host := range hosts {
		host = strings.Trim(strings.ToLower(strings.TrimSpace(host)), ".")
		host = strings.TrimPrefix(host, "www.")
		if host != "" {
			cleaned = append(cleaned, host)
		}
	}
	return urlPolicy{hosts: cleaned}
}

// Normalize returns raw as an absolute http(s) URL when its host is allowed.
// A missing scheme is treated as https. The host must equal an allowed host
// or be a subdomain of one; substring matches such as "notyoutube.com" or
// "youtube.com.evil.net" are rejected.
func (p urlPolicy) Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "-") {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.User != nil {
		return "", false
	}
	if !p.allowsHost(parsed.Hostname()) {
		return "", false
	}
	return parsed.String(), true
}

func (p urlPolicy) allowsHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return false
	}
	for _, allowed := range p.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

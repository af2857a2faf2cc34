package domain

import (
	"fmt"
	"time"
)

// SiteMetadata is the site or topic level page metadata
type SiteMetadata struct {
	Title           string `json:"title"`
	Image           string `json:"image"`
	MetaKeyword     string `json:"meta_keyword"`
	MetaDescription string `json:"meta_description"`
	SiteName        string `json:"site_name"`
	Favicon         string `json:"favicon"`
}

// FaviconURL returns the favicon with a ?v=<unix millis> cache-buster
func (m SiteMetadata) FaviconURL(now time.Time) string {
	if m.Favicon == "" {
		return ""
	}
	return fmt.Sprintf("%s?v=%d", m.Favicon, now.UnixMilli())
}

package adapter

import (
	"fmt"
	"strings"
)

// Upstream payload shapes. Every field is optional: mirrors return
// syntactically valid JSON that may still miss any of these.

type thumbnail struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
}

type formatStream struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Type    string `json:"type"`
}

type upstreamVideo struct {
	Type              string          `json:"type"`
	VideoID           string          `json:"videoId"`
	Title             string          `json:"title"`
	Author            string          `json:"author"`
	AuthorID          string          `json:"authorId"`
	DescriptionHTML   string          `json:"descriptionHtml"`
	LengthSeconds     int64           `json:"lengthSeconds"`
	VideoThumbnails   []thumbnail     `json:"videoThumbnails"`
	AuthorThumbnails  []thumbnail     `json:"authorThumbnails"`
	FormatStreams     []formatStream  `json:"formatStreams"`
	RecommendedVideos []upstreamVideo `json:"recommendedVideos"`
	Error             string          `json:"error"`
}

type upstreamSearchItem struct {
	Type              string      `json:"type"`
	VideoID           string      `json:"videoId"`
	PlaylistID        string      `json:"playlistId"`
	Title             string      `json:"title"`
	Author            string      `json:"author"`
	AuthorID          string      `json:"authorId"`
	LengthSeconds     int64       `json:"lengthSeconds"`
	VideoCount        int64       `json:"videoCount"`
	VideoThumbnails   []thumbnail `json:"videoThumbnails"`
	AuthorThumbnails  []thumbnail `json:"authorThumbnails"`
	PlaylistThumbnail string      `json:"playlistThumbnail"`
}

type upstreamChannel struct {
	Author           string          `json:"author"`
	AuthorID         string          `json:"authorId"`
	DescriptionHTML  string          `json:"descriptionHtml"`
	AuthorThumbnails []thumbnail     `json:"authorThumbnails"`
	LatestVideos     []upstreamVideo `json:"latestVideos"`
	Error            string          `json:"error"`
}

// lastThumbnail returns the last (largest, by mirror convention) thumbnail URL.
func lastThumbnail(ts []thumbnail) string {
	for i := len(ts) - 1; i >= 0; i-- {
		if u := absoluteURL(ts[i].URL); u != "" {
			return u
		}
	}
	return ""
}

// videoThumbnail prefers the "medium" rendition and falls back to the first one.
func videoThumbnail(ts []thumbnail) string {
	for _, t := range ts {
		if t.Quality == "medium" {
			if u := absoluteURL(t.URL); u != "" {
				return u
			}
		}
	}
	for _, t := range ts {
		if u := absoluteURL(t.URL); u != "" {
			return u
		}
	}
	return ""
}

// absoluteURL turns protocol-relative mirror URLs into https ones.
func absoluteURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// formatLength renders seconds as m:ss or h:mm:ss; zero or negative is "".
func formatLength(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

package adapter

import (
	"net/url"
	"strconv"
)

// Provider-relative resource paths. Segments and query values are
// percent-encoded; none of them start with a slash.

// VideoPath builds the metadata path for a video id.
func VideoPath(id string) string {
	return "api/v1/videos/" + url.PathEscape(id)
}

// SearchPath builds the search path for query q and 1-based page.
func SearchPath(q string, page int) string {
	if page < 1 {
		page = 1
	}
	return "api/v1/search?q=" + url.QueryEscape(q) + "&page=" + strconv.Itoa(page)
}

// ChannelPath builds the channel info path for a channel id.
func ChannelPath(id string) string {
	return "api/v1/channels/" + url.PathEscape(id)
}

package fetch

import "strings"

// RedactQuery drops the query string from a path or URL. Search terms stay
// out of logs, errors and telemetry.
func RedactQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// redactError removes url's query from an error message. Transport errors
// usually quote the full request URL.
func redactError(msg, url string) string {
	redacted := RedactQuery(url)
	if redacted == url {
		return msg
	}
	return strings.ReplaceAll(msg, url, redacted)
}

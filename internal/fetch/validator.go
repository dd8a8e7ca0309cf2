package fetch

import "encoding/json"

// Valid reports whether body is syntactically valid JSON. Shape is not
// checked: "{}" and "[]" are accepted, empty input and HTML error pages are
// not.
func Valid(body []byte) bool {
	return json.Valid(body)
}

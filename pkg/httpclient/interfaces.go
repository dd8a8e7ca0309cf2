package httpclient

import "context"

// Response is a minimal HTTP response contract. Non-2xx statuses are returned
// as responses, not errors; callers decide what a usable status is.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP GETs against upstream mirrors so callers can inject
// fakes or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

package domain

import "time"

// Domain contains core models shared by the fetch core, adapters and presentation.

// AttemptOutcome classifies one provider attempt.
type AttemptOutcome string

const (
	AttemptOK        AttemptOutcome = "ok"
	AttemptTransport AttemptOutcome = "transport"
	AttemptTimeout   AttemptOutcome = "timeout"
	AttemptStatus    AttemptOutcome = "status"
	AttemptInvalid   AttemptOutcome = "invalid"
)

// Attempt records a single (provider, path) request made during one resolve.
type Attempt struct {
	ProviderID string         `json:"provider_id"`
	URL        string         `json:"url"`
	Outcome    AttemptOutcome `json:"outcome"`
	StatusCode int            `json:"status_code,omitempty"`
	Error      string         `json:"error,omitempty"`
	ElapsedMs  int64          `json:"elapsed_ms"`
}

// ResolveOutcome is the aggregate result of one resolve call.
type ResolveOutcome string

const (
	ResolveSucceeded        ResolveOutcome = "succeeded"
	ResolveExhausted        ResolveOutcome = "exhausted"
	ResolveDeadlineExceeded ResolveOutcome = "deadline_exceeded"
)

// ResolveReport summarizes one resolve call. It is produced once per call and
// never retained by the core.
type ResolveReport struct {
	Path       string         `json:"path"`
	Outcome    ResolveOutcome `json:"outcome"`
	ProviderID string         `json:"provider_id,omitempty"`
	Attempts   []Attempt      `json:"attempts"`
	StartedAt  time.Time      `json:"started_at"`
	ElapsedMs  int64          `json:"elapsed_ms"`
}

// VideoSummary is a compact reference to a video used in lists.
type VideoSummary struct {
	ID        string
	Title     string
	Author    string
	AuthorID  string
	Thumbnail string
	Length    string
}

// VideoPage is the view model for the watch page.
type VideoPage struct {
	ID              string
	Title           string
	Author          string
	AuthorID        string
	AuthorIcon      string
	DescriptionHTML string
	StreamURLs      []string
	Recommended     []VideoSummary
}

// SearchItem is one entry of a search result page.
type SearchItem struct {
	Type      string
	ID        string
	Title     string
	Author    string
	AuthorID  string
	Thumbnail string
	Length    string
}

// SearchPage is the view model for the search page.
type SearchPage struct {
	Query   string
	Page    int
	Results []SearchItem
}

// ChannelPage is the view model for the channel page.
type ChannelPage struct {
	ID          string
	Name        string
	IconURL     string
	ProfileHTML string
	Videos      []VideoSummary
}

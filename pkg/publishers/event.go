package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
)

// Event represents the resolve telemetry payload published downstream.
type Event struct {
	ID        string               `json:"id"`
	Report    domain.ResolveReport `json:"report"`
	EmittedAt time.Time            `json:"emitted_at"`
}

// NewEvent wraps a resolve report in an Event.
func NewEvent(report domain.ResolveReport) Event {
	return Event{
		ID:        uuid.NewString(),
		Report:    report,
		EmittedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes copied onto queue messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"outcome": string(e.Report.Outcome),
	}
	if e.Report.ProviderID != "" {
		attrs["provider_id"] = e.Report.ProviderID
	}
	return attrs
}

package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
)

func sampleEvent() Event {
	return Event{
		ID: "evt-1",
		Report: domain.ResolveReport{
			Path:       "api/v1/videos/abc",
			Outcome:    domain.ResolveSucceeded,
			ProviderID: "mirror-a",
			Attempts: []domain.Attempt{
				{ProviderID: "mirror-a", Outcome: domain.AttemptOK, StatusCode: 200},
			},
			StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			ElapsedMs: 42,
		},
		EmittedAt: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
}

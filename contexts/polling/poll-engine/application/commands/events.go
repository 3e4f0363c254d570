package commands

import (
	"time"

	"pollsbot/internal/shared/events"
)

func newPollEnvelope(
	eventID string,
	eventType string,
	pollID string,
	occurredAt time.Time,
	payload map[string]any,
) events.Envelope {
	return events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "poll-engine",
		OccurredAtUTC:  occurredAt.UTC(),
		CorrelationID:  eventID,
		EntityType:     "poll",
		EntityID:       pollID,
		PayloadVersion: 1,
		Payload:        payload,
	}
}

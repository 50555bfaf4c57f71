package domain

type EventType string

const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventDisbanded EventType = "disbanded"
	EventExpired   EventType = "expired"
)

// PartyEvent carries the party snapshot after a successful operation.
type PartyEvent struct {
	Type  EventType
	Party Party
}

func (e PartyEvent) Terminal() bool {
	return e.Type == EventDisbanded || e.Type == EventExpired
}

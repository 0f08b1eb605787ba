package realtime

const TypeEventsChanged = "events_changed"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Message tells viewers to re-fetch. It never carries event data.
type Message struct {
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

func EventsChanged(action, eventID string) Message {
	return Message{Type: TypeEventsChanged, Action: action, EventID: eventID}
}

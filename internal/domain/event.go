package domain

const (
	EventTypeLeave       = "Leave"
	EventTypeHospital    = "Hospital"
	EventTypeClientVisit = "ClientVisit"
	EventTypeTraining    = "Training"
	EventTypeOther       = "Other"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsLeaveLike reports whether events of this type go through approval.
func IsLeaveLike(eventType string) bool {
	return eventType == EventTypeLeave || eventType == EventTypeHospital
}

func ValidEventType(eventType string) bool {
	switch eventType {
	case EventTypeLeave, EventTypeHospital, EventTypeClientVisit, EventTypeTraining, EventTypeOther:
		return true
	}
	return false
}

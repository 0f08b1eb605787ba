package events

import "time"

const CalendarEventsTopic = "hr.calendar.events.v1"

const (
	TypeEventsChanged     = "events_changed"
	TypeLeaveRequested    = "leave_requested"
	TypeLeaveStepApproved = "leave_step_approved"
	TypeLeaveDecided      = "leave_decided"
)

const AggregateCalendarEvent = "calendar_event"

// CalendarEvent is the outbox payload written for every committed calendar
// mutation. EventType selects how downstream consumers react to it.
type CalendarEvent struct {
	EventType        string    `json:"event_type"`
	Action           string    `json:"action"`
	EventID          string    `json:"event_id"`
	CompanyID        string    `json:"company_id"`
	OwnerID          string    `json:"owner_id"`
	ActorID          string    `json:"actor_id"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	TwoStep          bool      `json:"two_step"`
	FirstApproverID  string    `json:"first_approver_id,omitempty"`
	SecondApproverID string    `json:"second_approver_id,omitempty"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

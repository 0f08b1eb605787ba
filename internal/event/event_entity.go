package event

import (
	"time"

	"hr-calendar/internal/approval"
	"hr-calendar/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is one full-day block [StartTS, EndTS) on an employee's calendar.
// Approver ids are copied from the owner's profile when the event is created
// and never follow later profile edits.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_events_company_range,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_events_user_range,priority:1"`
	Reference *string   `gorm:"type:varchar(20)"`

	Type    string    `gorm:"type:varchar(20);not null"`
	StartTS time.Time `gorm:"column:start_ts;type:date;not null;index:idx_events_company_range,priority:2;index:idx_events_user_range,priority:2"`
	EndTS   time.Time `gorm:"column:end_ts;type:date;not null;index:idx_events_company_range,priority:3;index:idx_events_user_range,priority:3"`
	Status  string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_events_status"`

	RequestedByID   *uuid.UUID `gorm:"type:uuid"`
	ApprovedByID    *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`

	TwoStep            bool       `gorm:"not null;default:false"`
	FirstApproverID    *uuid.UUID `gorm:"type:uuid;index:idx_events_first_approver"`
	SecondApproverID   *uuid.UUID `gorm:"type:uuid;index:idx_events_second_approver"`
	FirstApprovedByID  *uuid.UUID `gorm:"type:uuid"`
	SecondApprovedByID *uuid.UUID `gorm:"type:uuid"`

	ClientID          *uuid.UUID `gorm:"type:uuid"`
	OneTimeClientName *string    `gorm:"type:varchar(200)"`
	Note              *string    `gorm:"type:text"`
	SickNoteURL       *string    `gorm:"type:text;index:idx_events_sick_note"`

	Version   int64 `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_events_deleted_at"`
}

func (Event) TableName() string {
	return "calendar_events"
}

func (e *Event) LeaveLike() bool {
	return domain.IsLeaveLike(e.Type)
}

// IsPast reports whether the last day of the event is before today.
func (e *Event) IsPast(now time.Time) bool {
	return !domain.Day(e.EndTS).After(domain.Day(now))
}

func (e *Event) Ticket() approval.Ticket {
	return approval.Ticket{
		LeaveLike:          e.LeaveLike(),
		Status:             e.Status,
		TwoStep:            e.TwoStep,
		FirstApproverID:    e.FirstApproverID,
		SecondApproverID:   e.SecondApproverID,
		FirstApprovedByID:  e.FirstApprovedByID,
		SecondApprovedByID: e.SecondApprovedByID,
		ApprovedByID:       e.ApprovedByID,
		ApprovedAt:         e.ApprovedAt,
		RejectionReason:    e.RejectionReason,
	}
}

func (e *Event) applyTicket(t approval.Ticket) {
	e.Status = t.Status
	e.FirstApprovedByID = t.FirstApprovedByID
	e.SecondApprovedByID = t.SecondApprovedByID
	e.ApprovedByID = t.ApprovedByID
	e.ApprovedAt = t.ApprovedAt
	e.RejectionReason = t.RejectionReason
}

package event

import (
	"io"

	"hr-calendar/internal/balance"
)

type CreateEventRequest struct {
	Type              string  `json:"type" binding:"required,oneof=Leave Hospital ClientVisit Training Other"`
	StartTS           string  `json:"start_ts" binding:"required"`
	EndTS             string  `json:"end_ts" binding:"required"`
	ClientID          *string `json:"client_id" binding:"omitempty,uuid"`
	OneTimeClientName *string `json:"one_time_client_name" binding:"omitempty,max=200"`
	Note              *string `json:"note" binding:"omitempty,max=2000"`
}

type CreateLeaveRequest struct {
	StartTS string  `json:"start_ts" binding:"required"`
	EndTS   string  `json:"end_ts" binding:"required"`
	Note    *string `json:"note" binding:"omitempty,max=2000"`
}

// UpdateEventRequest patches content fields. Nil fields are left untouched
// and an empty string clears an optional text field.
type UpdateEventRequest struct {
	Type              *string `json:"type" binding:"omitempty,oneof=Leave Hospital ClientVisit Training Other"`
	StartTS           *string `json:"start_ts"`
	EndTS             *string `json:"end_ts"`
	ClientID          *string `json:"client_id" binding:"omitempty,uuid"`
	OneTimeClientName *string `json:"one_time_client_name" binding:"omitempty,max=200"`
	Note              *string `json:"note" binding:"omitempty,max=2000"`
}

type RejectRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}

type ListEventsQuery struct {
	Start      string `form:"start" binding:"required"`
	End        string `form:"end" binding:"required"`
	Type       string `form:"type" binding:"omitempty,oneof=Leave Hospital ClientVisit Training Other"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	Department string `form:"department"`
}

type ListLeaveRequestsQuery struct {
	Status string `form:"status"`
	Type   string `form:"type" binding:"omitempty,oneof=Leave Hospital"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Start  string `form:"start"`
	End    string `form:"end"`
}

type SickNoteUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type EventResponse struct {
	ID                 string  `json:"id"`
	CompanyID          string  `json:"company_id"`
	UserID             string  `json:"user_id"`
	UserName           string  `json:"user_name,omitempty"`
	Department         string  `json:"department,omitempty"`
	Reference          *string `json:"reference,omitempty"`
	Type               string  `json:"type"`
	StartTS            string  `json:"start_ts"`
	EndTS              string  `json:"end_ts"`
	Days               int     `json:"days"`
	AllDay             bool    `json:"all_day"`
	Status             string  `json:"status"`
	RequestedByID      *string `json:"requested_by_id,omitempty"`
	ApprovedByID       *string `json:"approved_by_id,omitempty"`
	ApprovedAt         *string `json:"approved_at,omitempty"`
	RejectionReason    *string `json:"rejection_reason,omitempty"`
	FirstApproverID    *string `json:"first_approver_id,omitempty"`
	SecondApproverID   *string `json:"second_approver_id,omitempty"`
	FirstApprovedByID  *string `json:"first_approved_by_id,omitempty"`
	SecondApprovedByID *string `json:"second_approved_by_id,omitempty"`
	ClientID           *string `json:"client_id,omitempty"`
	OneTimeClientName  *string `json:"one_time_client_name,omitempty"`
	Note               *string `json:"note,omitempty"`
	SickNoteURL        *string `json:"sick_note_url,omitempty"`
	Version            int64   `json:"version"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`

	ApprovalFlow            string `json:"approval_flow,omitempty"`
	ApprovalSetupIncomplete bool   `json:"approval_setup_incomplete"`
	CanCurrentUserApprove   bool   `json:"can_current_user_approve"`
	CanCurrentUserReject    bool   `json:"can_current_user_reject"`

	BalanceWarning *balance.Warning `json:"balance_warning,omitempty"`
}

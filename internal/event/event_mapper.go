package event

import (
	"time"

	"hr-calendar/internal/approval"
	"hr-calendar/internal/domain"

	"github.com/google/uuid"
)

type ownerInfo struct {
	Name       string
	Department string
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapToResponse(ev Event) EventResponse {
	resp := EventResponse{
		ID:                 ev.ID.String(),
		CompanyID:          ev.CompanyID.String(),
		UserID:             ev.UserID.String(),
		Reference:          ev.Reference,
		Type:               ev.Type,
		StartTS:            domain.FormatDay(ev.StartTS),
		EndTS:              domain.FormatDay(ev.EndTS),
		Days:               domain.DaysBetween(ev.StartTS, ev.EndTS),
		AllDay:             true,
		Status:             ev.Status,
		RequestedByID:      uuidString(ev.RequestedByID),
		ApprovedByID:       uuidString(ev.ApprovedByID),
		ApprovedAt:         timeString(ev.ApprovedAt),
		RejectionReason:    ev.RejectionReason,
		FirstApproverID:    uuidString(ev.FirstApproverID),
		SecondApproverID:   uuidString(ev.SecondApproverID),
		FirstApprovedByID:  uuidString(ev.FirstApprovedByID),
		SecondApprovedByID: uuidString(ev.SecondApprovedByID),
		ClientID:           uuidString(ev.ClientID),
		OneTimeClientName:  ev.OneTimeClientName,
		Note:               ev.Note,
		SickNoteURL:        ev.SickNoteURL,
		Version:            ev.Version,
		CreatedAt:          ev.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          ev.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if ev.LeaveLike() {
		resp.ApprovalFlow = string(approval.For(ev.Ticket()).Kind())
		resp.ApprovalSetupIncomplete = approval.SetupIncomplete(ev.Ticket())
	}
	return resp
}

// annotate fills the per-viewer hints from the same predicate that guards
// approve and reject.
func annotate(resp *EventResponse, ev Event, p domain.Principal) {
	actor := approval.Actor{ID: p.UserID, Role: p.Role}
	ticket := ev.Ticket()
	resp.CanCurrentUserApprove = approval.CanAct(ticket, actor, approval.ActionApprove)
	resp.CanCurrentUserReject = approval.CanAct(ticket, actor, approval.ActionReject)
}

func mapToListResponse(events []Event, p domain.Principal, owners map[uuid.UUID]ownerInfo) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		resp := mapToResponse(ev)
		annotate(&resp, ev, p)
		if o, ok := owners[ev.UserID]; ok {
			resp.UserName = o.Name
			resp.Department = o.Department
		}
		out = append(out, resp)
	}
	return out
}

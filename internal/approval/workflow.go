// Package approval holds the status transition rules for leave-like events.
//
// A request is decided either in a single step or in two ordered steps
// (first approver, then second approver). Both shapes implement Workflow and
// the same Check backs write enforcement and the read-side hints.
package approval

import (
	"time"

	approvalerrors "hr-calendar/internal/approval/errors"
	"hr-calendar/internal/domain"

	"github.com/google/uuid"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type Kind string

const (
	KindSingleStep Kind = "single_step"
	KindTwoStep    Kind = "two_step"
)

const DefaultRejectionReason = "Rejected by approver"

type Actor struct {
	ID   uuid.UUID
	Role string
}

// Ticket is the approval-relevant projection of an event.
type Ticket struct {
	LeaveLike          bool
	Status             string
	TwoStep            bool
	FirstApproverID    *uuid.UUID
	SecondApproverID   *uuid.UUID
	FirstApprovedByID  *uuid.UUID
	SecondApprovedByID *uuid.UUID
	ApprovedByID       *uuid.UUID
	ApprovedAt         *time.Time
	RejectionReason    *string
}

type Workflow interface {
	Kind() Kind
	// Check returns nil when the actor may perform the action now.
	Check(t Ticket, a Actor, act Action) error
	// Apply mutates the ticket. Callers must have passed Check first.
	Apply(t *Ticket, a Actor, act Action, reason string, now time.Time)
}

func For(t Ticket) Workflow {
	if t.TwoStep {
		return twoStep{}
	}
	return singleStep{}
}

func CanAct(t Ticket, a Actor, act Action) bool {
	return For(t).Check(t, a, act) == nil
}

// Decide checks and applies the action in one call.
func Decide(t *Ticket, a Actor, act Action, reason string, now time.Time) error {
	w := For(*t)
	if err := w.Check(*t, a, act); err != nil {
		return err
	}
	w.Apply(t, a, act, reason, now)
	return nil
}

// SetupIncomplete reports a two-step ticket that nobody can act on until an
// admin fills in the missing approver.
func SetupIncomplete(t Ticket) bool {
	return t.LeaveLike && t.TwoStep && (t.FirstApproverID == nil || t.SecondApproverID == nil)
}

func precheck(t Ticket, act Action) error {
	if act != ActionApprove && act != ActionReject {
		return approvalerrors.ErrUnknownAction
	}
	if !t.LeaveLike {
		return approvalerrors.ErrNotLeaveLike
	}
	if t.Status != domain.StatusPending {
		return approvalerrors.ErrNotPending
	}
	return nil
}

type singleStep struct{}

func (singleStep) Kind() Kind { return KindSingleStep }

func (singleStep) Check(t Ticket, a Actor, act Action) error {
	if err := precheck(t, act); err != nil {
		return err
	}
	if t.FirstApproverID != nil || t.SecondApproverID != nil {
		if sameID(t.FirstApproverID, a.ID) || sameID(t.SecondApproverID, a.ID) {
			return nil
		}
		return approvalerrors.ErrNotAssigned
	}
	switch a.Role {
	case domain.RoleAdmin, domain.RoleCEO, domain.RoleSupervisor:
		return nil
	}
	return approvalerrors.ErrNotAssigned
}

func (singleStep) Apply(t *Ticket, a Actor, act Action, reason string, now time.Time) {
	if act == ActionReject {
		reject(t, a, reason, now)
		return
	}
	finalize(t, a, now)
}

type twoStep struct{}

func (twoStep) Kind() Kind { return KindTwoStep }

func (twoStep) Check(t Ticket, a Actor, act Action) error {
	if err := precheck(t, act); err != nil {
		return err
	}
	if SetupIncomplete(t) {
		return approvalerrors.ErrSetupIncomplete
	}
	isFirst := sameID(t.FirstApproverID, a.ID)
	isSecond := sameID(t.SecondApproverID, a.ID)
	if !isFirst && !isSecond {
		return approvalerrors.ErrNotAssigned
	}
	if act == ActionReject {
		return nil
	}
	if t.FirstApprovedByID == nil {
		if isFirst {
			return nil
		}
		return approvalerrors.ErrNotYourTurn
	}
	if isSecond {
		return nil
	}
	return approvalerrors.ErrStepAlreadyRecorded
}

func (twoStep) Apply(t *Ticket, a Actor, act Action, reason string, now time.Time) {
	if act == ActionReject {
		reject(t, a, reason, now)
		return
	}
	id := a.ID
	if t.FirstApprovedByID == nil {
		t.FirstApprovedByID = &id
		return
	}
	t.SecondApprovedByID = &id
	finalize(t, a, now)
}

func finalize(t *Ticket, a Actor, now time.Time) {
	id := a.ID
	t.Status = domain.StatusApproved
	t.ApprovedByID = &id
	t.ApprovedAt = &now
	t.RejectionReason = nil
}

func reject(t *Ticket, a Actor, reason string, now time.Time) {
	id := a.ID
	if reason == "" {
		reason = DefaultRejectionReason
	}
	t.Status = domain.StatusRejected
	t.ApprovedByID = &id
	t.ApprovedAt = &now
	t.RejectionReason = &reason
}

func sameID(p *uuid.UUID, id uuid.UUID) bool {
	return p != nil && *p == id
}

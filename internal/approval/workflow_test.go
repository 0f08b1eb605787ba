package approval_test

import (
	"testing"
	"time"

	"hr-calendar/internal/approval"
	approvalerrors "hr-calendar/internal/approval/errors"
	"hr-calendar/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func twoStepTicket(first, second uuid.UUID) approval.Ticket {
	return approval.Ticket{
		LeaveLike:        true,
		Status:           domain.StatusPending,
		TwoStep:          true,
		FirstApproverID:  idPtr(first),
		SecondApproverID: idPtr(second),
	}
}

func TestTwoStep_SecondApproverCannotGoFirst(t *testing.T) {
	first := approval.Actor{ID: uuid.New(), Role: domain.RoleSupervisor}
	second := approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	ticket := twoStepTicket(first.ID, second.ID)

	assert.False(t, approval.CanAct(ticket, second, approval.ActionApprove))

	err := approval.Decide(&ticket, second, approval.ActionApprove, "", now)

	assert.ErrorIs(t, err, approvalerrors.ErrNotYourTurn)
	assert.Equal(t, domain.StatusPending, ticket.Status)
	assert.Nil(t, ticket.FirstApprovedByID)
	assert.Nil(t, ticket.SecondApprovedByID)
}

func TestTwoStep_SequentialApproval(t *testing.T) {
	first := approval.Actor{ID: uuid.New(), Role: domain.RoleSupervisor}
	second := approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	ticket := twoStepTicket(first.ID, second.ID)

	assert.NoError(t, approval.Decide(&ticket, first, approval.ActionApprove, "", now))
	assert.Equal(t, domain.StatusPending, ticket.Status)
	assert.Equal(t, first.ID, *ticket.FirstApprovedByID)
	assert.Nil(t, ticket.ApprovedByID)

	err := approval.Decide(&ticket, first, approval.ActionApprove, "", now)
	assert.ErrorIs(t, err, approvalerrors.ErrStepAlreadyRecorded)
	assert.Equal(t, domain.StatusPending, ticket.Status)

	assert.True(t, approval.CanAct(ticket, second, approval.ActionApprove))
	assert.NoError(t, approval.Decide(&ticket, second, approval.ActionApprove, "", now))
	assert.Equal(t, domain.StatusApproved, ticket.Status)
	assert.Equal(t, second.ID, *ticket.SecondApprovedByID)
	assert.Equal(t, second.ID, *ticket.ApprovedByID)
	assert.Equal(t, now, *ticket.ApprovedAt)
}

func TestTwoStep_RejectIsFinal(t *testing.T) {
	first := approval.Actor{ID: uuid.New(), Role: domain.RoleSupervisor}
	second := approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("second approver rejects before first step", func(t *testing.T) {
		ticket := twoStepTicket(first.ID, second.ID)

		assert.NoError(t, approval.Decide(&ticket, second, approval.ActionReject, "", now))
		assert.Equal(t, domain.StatusRejected, ticket.Status)
		assert.Equal(t, approval.DefaultRejectionReason, *ticket.RejectionReason)
		assert.Equal(t, second.ID, *ticket.ApprovedByID)

		err := approval.Decide(&ticket, first, approval.ActionApprove, "", now)
		assert.ErrorIs(t, err, approvalerrors.ErrNotPending)
	})

	t.Run("first approver rejects after approving", func(t *testing.T) {
		ticket := twoStepTicket(first.ID, second.ID)
		assert.NoError(t, approval.Decide(&ticket, first, approval.ActionApprove, "", now))

		assert.NoError(t, approval.Decide(&ticket, first, approval.ActionReject, "overlaps audit", now))
		assert.Equal(t, domain.StatusRejected, ticket.Status)
		assert.Equal(t, "overlaps audit", *ticket.RejectionReason)
		assert.Nil(t, ticket.SecondApprovedByID)

		assert.False(t, approval.CanAct(ticket, second, approval.ActionApprove))
		assert.False(t, approval.CanAct(ticket, second, approval.ActionReject))
	})
}

func TestTwoStep_Unassigned(t *testing.T) {
	ticket := twoStepTicket(uuid.New(), uuid.New())
	admin := approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	err := approval.Decide(&ticket, admin, approval.ActionApprove, "", now)

	assert.ErrorIs(t, err, approvalerrors.ErrNotAssigned)
	assert.False(t, approval.CanAct(ticket, admin, approval.ActionReject))
}

func TestTwoStep_SetupIncomplete(t *testing.T) {
	first := approval.Actor{ID: uuid.New(), Role: domain.RoleSupervisor}
	ticket := approval.Ticket{
		LeaveLike:       true,
		Status:          domain.StatusPending,
		TwoStep:         true,
		FirstApproverID: idPtr(first.ID),
	}

	assert.True(t, approval.SetupIncomplete(ticket))
	assert.False(t, approval.CanAct(ticket, first, approval.ActionApprove))

	err := approval.Decide(&ticket, first, approval.ActionApprove, "", now)
	assert.ErrorIs(t, err, approvalerrors.ErrSetupIncomplete)
	assert.NotErrorIs(t, err, approvalerrors.ErrNotAssigned)
	assert.Equal(t, approval.KindTwoStep, approval.For(ticket).Kind())
}

func TestSingleStep(t *testing.T) {
	pending := approval.Ticket{LeaveLike: true, Status: domain.StatusPending}

	t.Run("approver roles may decide", func(t *testing.T) {
		for _, role := range []string{domain.RoleAdmin, domain.RoleCEO, domain.RoleSupervisor} {
			assert.True(t, approval.CanAct(pending, approval.Actor{ID: uuid.New(), Role: role}, approval.ActionApprove), role)
		}
		assert.False(t, approval.CanAct(pending, approval.Actor{ID: uuid.New(), Role: domain.RoleEmployee}, approval.ActionApprove))
	})

	t.Run("pinned approver restricts deciders", func(t *testing.T) {
		pinned := approval.Actor{ID: uuid.New(), Role: domain.RoleEmployee}
		ticket := pending
		ticket.SecondApproverID = idPtr(pinned.ID)

		assert.False(t, approval.CanAct(ticket, approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, approval.ActionApprove))
		assert.NoError(t, approval.Decide(&ticket, pinned, approval.ActionApprove, "", now))
		assert.Equal(t, domain.StatusApproved, ticket.Status)
		assert.Equal(t, pinned.ID, *ticket.ApprovedByID)
	})

	t.Run("terminal state conflicts", func(t *testing.T) {
		admin := approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
		ticket := pending
		assert.NoError(t, approval.Decide(&ticket, admin, approval.ActionApprove, "", now))
		snapshot := ticket

		assert.ErrorIs(t, approval.Decide(&ticket, admin, approval.ActionApprove, "", now), approvalerrors.ErrNotPending)
		assert.ErrorIs(t, approval.Decide(&ticket, admin, approval.ActionReject, "late", now), approvalerrors.ErrNotPending)
		assert.Equal(t, snapshot, ticket)
	})

	t.Run("non leave-like events are not decidable", func(t *testing.T) {
		ticket := approval.Ticket{Status: domain.StatusApproved}
		err := approval.Decide(&ticket, approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, approval.ActionReject, "", now)
		assert.ErrorIs(t, err, approvalerrors.ErrNotLeaveLike)
	})

	t.Run("unknown action", func(t *testing.T) {
		ticket := pending
		err := approval.Decide(&ticket, approval.Actor{ID: uuid.New(), Role: domain.RoleAdmin}, approval.Action("escalate"), "", now)
		assert.ErrorIs(t, err, approvalerrors.ErrUnknownAction)
	})
}

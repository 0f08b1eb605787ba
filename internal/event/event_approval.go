package event

import (
	"context"
	"errors"

	"hr-calendar/internal/approval"
	approvalerrors "hr-calendar/internal/approval/errors"
	"hr-calendar/internal/domain"
	eventerrors "hr-calendar/internal/event/errors"
	"hr-calendar/internal/events"
	"hr-calendar/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListLeaveRequests is the approval queue. Admins see every request,
// supervisors see what they may decide plus their own, employees only
// their own.
func (s *service) ListLeaveRequests(ctx context.Context, p domain.Principal, q ListLeaveRequestsQuery) ([]EventResponse, error) {
	f := LeaveRequestFilter{Status: q.Status, Type: q.Type}
	switch q.Status {
	case "", domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
	default:
		return nil, eventerrors.ErrInvalidStatusFilter
	}

	if q.Start != "" {
		start, err := parseDay(q.Start)
		if err != nil {
			return nil, err
		}
		f.Start = &start
	}
	if q.End != "" {
		end, err := parseDay(q.End)
		if err != nil {
			return nil, err
		}
		f.End = &end
	}

	switch {
	case p.IsAdmin():
		f.UserID = q.UserID
	case p.Role == domain.RoleSupervisor:
		if q.UserID != "" {
			return nil, eventerrors.ErrAdminOnlyFilter
		}
		f.VisibleTo = p.UserID.String()
	default:
		if q.UserID != "" && q.UserID != p.UserID.String() {
			return nil, eventerrors.ErrAdminOnlyFilter
		}
		f.OwnerID = p.UserID.String()
	}

	evs, err := s.repo.ListLeaveRequests(ctx, p.CompanyID.String(), f)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(evs, p, s.owners(ctx, p.CompanyID.String(), evs)), nil
}

func (s *service) Approve(ctx context.Context, p domain.Principal, id string) (EventResponse, error) {
	return s.decide(ctx, p, id, approval.ActionApprove, "")
}

func (s *service) Reject(ctx context.Context, p domain.Principal, id string, reason string) (EventResponse, error) {
	return s.decide(ctx, p, id, approval.ActionReject, reason)
}

// decide serializes decisions on one event through the row lock and the
// version check, so a racing second decision observes the first one.
func (s *service) decide(ctx context.Context, p domain.Principal, id string, act approval.Action, reason string) (EventResponse, error) {
	s.logger.Debug("leave decision requested",
		zap.String("event_id", id),
		zap.String("actor_id", p.UserID.String()),
		zap.String("action", string(act)),
	)
	if _, err := uuid.Parse(id); err != nil {
		return EventResponse{}, eventerrors.ErrInvalidEventID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("leave decision begin tx failed", zap.Error(tx.Error))
		return EventResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ev, err := qtx.FindByIDForUpdate(ctx, p.CompanyID.String(), id)
	if err != nil {
		return EventResponse{}, err
	}

	ticket := ev.Ticket()
	actor := approval.Actor{ID: p.UserID, Role: p.Role}
	if err := approval.Decide(&ticket, actor, act, reason, s.now()); err != nil {
		if errors.Is(err, approvalerrors.ErrSetupIncomplete) {
			s.logger.Warn("leave decision blocked by incomplete approver setup",
				zap.String("event_id", id),
				zap.String("owner_id", ev.UserID.String()),
			)
		} else {
			s.logger.Warn("leave decision refused",
				zap.String("event_id", id),
				zap.String("actor_id", p.UserID.String()),
				zap.Error(err),
			)
		}
		return EventResponse{}, err
	}
	ev.applyTicket(ticket)

	if err := qtx.Update(ctx, ev); err != nil {
		if !errors.Is(err, eventerrors.ErrConcurrentUpdate) {
			s.logger.Error("leave decision persist failed", zap.String("event_id", id), zap.Error(err))
		}
		return EventResponse{}, err
	}

	eventType := events.TypeLeaveDecided
	if ev.Status == domain.StatusPending {
		eventType = events.TypeLeaveStepApproved
	}
	if err := s.writeOutbox(ctx, tx, ev, eventType, realtime.ActionUpdated, p.UserID); err != nil {
		return EventResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("leave decision commit failed", zap.String("event_id", id), zap.Error(err))
		return EventResponse{}, err
	}
	s.logger.Info("leave decision recorded",
		zap.String("event_id", id),
		zap.String("actor_id", p.UserID.String()),
		zap.String("action", string(act)),
		zap.String("status", ev.Status),
	)

	s.afterCommit(ctx, ev, realtime.ActionUpdated, ev.Status != domain.StatusPending)

	resp := mapToResponse(*ev)
	annotate(&resp, *ev, p)
	return resp, nil
}

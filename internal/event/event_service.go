package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hr-calendar/internal/balance"
	"hr-calendar/internal/domain"
	"hr-calendar/internal/employee"
	eventerrors "hr-calendar/internal/event/errors"
	"hr-calendar/internal/events"
	"hr-calendar/internal/messaging/kafka"
	"hr-calendar/internal/realtime"
	"hr-calendar/internal/shared/contextutil"
	"hr-calendar/internal/shared/counter"
	"hr-calendar/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier receives a signal after every committed calendar mutation.
type Notifier interface {
	Broadcast(companyID uuid.UUID, msg realtime.Message) int
}

//go:generate mockgen -source=event_service.go -destination=mock/event_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p domain.Principal, req CreateEventRequest) (EventResponse, error)
	CreateLeaveRequest(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (EventResponse, error)
	GetByID(ctx context.Context, p domain.Principal, id string) (EventResponse, error)
	List(ctx context.Context, p domain.Principal, q ListEventsQuery) ([]EventResponse, error)
	Update(ctx context.Context, p domain.Principal, id string, req UpdateEventRequest) (EventResponse, error)
	Delete(ctx context.Context, p domain.Principal, id string) error

	ListLeaveRequests(ctx context.Context, p domain.Principal, q ListLeaveRequestsQuery) ([]EventResponse, error)
	Approve(ctx context.Context, p domain.Principal, id string) (EventResponse, error)
	Reject(ctx context.Context, p domain.Principal, id string, reason string) (EventResponse, error)

	AttachSickNote(ctx context.Context, p domain.Principal, id string, file SickNoteUpload) (EventResponse, error)
	OpenSickNote(ctx context.Context, p domain.Principal, name string) (storage.Object, error)
}

type Dependencies struct {
	Employees        employee.Repository
	Counters         counter.Repository
	Outbox           kafka.OutboxRepository
	Balances         balance.Service
	Storage          storage.ObjectStorage
	Notifier         Notifier
	SickNoteMaxBytes int64
	Clock            func() time.Time
}

type service struct {
	db               *gorm.DB
	repo             Repository
	employees        employee.Repository
	counters         counter.Repository
	outbox           kafka.OutboxRepository
	balances         balance.Service
	storage          storage.ObjectStorage
	notifier         Notifier
	sickNoteMaxBytes int64
	now              func() time.Time
	logger           *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("event.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("event.service")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	store := deps.Storage
	if store == nil {
		store = storage.NewDisabled()
	}
	return &service{
		db:               db,
		repo:             repo,
		employees:        deps.Employees,
		counters:         deps.Counters,
		outbox:           deps.Outbox,
		balances:         deps.Balances,
		storage:          store,
		notifier:         deps.Notifier,
		sickNoteMaxBytes: deps.SickNoteMaxBytes,
		now:              func() time.Time { return clock().UTC() },
		logger:           l,
	}
}

func (s *service) Create(ctx context.Context, p domain.Principal, req CreateEventRequest) (EventResponse, error) {
	if req.Type == domain.EventTypeLeave {
		return EventResponse{}, eventerrors.ErrUseLeaveEndpoint
	}
	return s.create(ctx, p, req)
}

func (s *service) CreateLeaveRequest(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (EventResponse, error) {
	return s.create(ctx, p, CreateEventRequest{
		Type:    domain.EventTypeLeave,
		StartTS: req.StartTS,
		EndTS:   req.EndTS,
		Note:    req.Note,
	})
}

func (s *service) create(ctx context.Context, p domain.Principal, req CreateEventRequest) (EventResponse, error) {
	s.logger.Debug("create event requested",
		zap.String("company_id", p.CompanyID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.String("type", req.Type),
		zap.String("start_ts", req.StartTS),
		zap.String("end_ts", req.EndTS),
	)

	if !domain.ValidEventType(req.Type) {
		return EventResponse{}, eventerrors.ErrInvalidType
	}
	start, end, err := parseRange(req.StartTS, req.EndTS)
	if err != nil {
		return EventResponse{}, err
	}
	if start.Before(domain.Day(s.now())) {
		return EventResponse{}, eventerrors.ErrPastDated
	}

	ev := &Event{
		ID:        uuid.New(),
		CompanyID: p.CompanyID,
		UserID:    p.UserID,
		Type:      req.Type,
		StartTS:   start,
		EndTS:     end,
		Note:      optionalText(req.Note),
		Version:   1,
	}
	if err := applyClient(ev, req.ClientID, req.OneTimeClientName); err != nil {
		return EventResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create event begin tx failed", zap.Error(tx.Error))
		return EventResponse{}, tx.Error
	}
	defer tx.Rollback()

	if ev.LeaveLike() {
		if err := s.openRequest(ctx, tx, ev); err != nil {
			return EventResponse{}, err
		}
	} else {
		ev.Status = domain.StatusApproved
	}

	if err := s.repo.WithTx(tx).Create(ctx, ev); err != nil {
		s.logger.Error("create event persist failed", zap.Error(err))
		return EventResponse{}, err
	}

	eventType := events.TypeEventsChanged
	if ev.LeaveLike() {
		eventType = events.TypeLeaveRequested
	}
	if err := s.writeOutbox(ctx, tx, ev, eventType, realtime.ActionCreated, p.UserID); err != nil {
		return EventResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create event commit failed", zap.Error(err))
		return EventResponse{}, err
	}
	s.logger.Info("create event success",
		zap.String("event_id", ev.ID.String()),
		zap.String("type", ev.Type),
		zap.String("status", ev.Status),
	)

	s.afterCommit(ctx, ev, realtime.ActionCreated, ev.LeaveLike())

	resp := mapToResponse(*ev)
	annotate(&resp, *ev, p)
	resp.BalanceWarning = s.balanceWarning(ctx, ev)
	return resp, nil
}

// openRequest puts a leave-like event into review: pending status, a
// reference number and the owner's approvers as of now.
func (s *service) openRequest(ctx context.Context, tx *gorm.DB, ev *Event) error {
	owner, err := s.employees.WithTx(tx).FindByIDAndCompany(ctx, ev.CompanyID.String(), ev.UserID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eventerrors.ErrOwnerNotFound
		}
		s.logger.Error("load event owner failed", zap.String("user_id", ev.UserID.String()), zap.Error(err))
		return err
	}

	ev.Status = domain.StatusPending
	ev.RequestedByID = ptrUUID(ev.UserID)
	ev.TwoStep = owner.RequireTwoStepLeaveApproval
	ev.FirstApproverID = owner.FirstApproverID
	ev.SecondApproverID = owner.SecondApproverID
	ev.ApprovedByID = nil
	ev.ApprovedAt = nil
	ev.RejectionReason = nil
	ev.FirstApprovedByID = nil
	ev.SecondApprovedByID = nil

	if ev.Reference == nil {
		n, err := s.counters.WithTx(tx).GetNextValue(ctx, ev.CompanyID.String(), counter.TypeLeaveRequest)
		if err != nil {
			s.logger.Error("allocate leave reference failed", zap.Error(err))
			return err
		}
		ref := counter.LeaveReference(n)
		ev.Reference = &ref
	}

	if ev.TwoStep && (ev.FirstApproverID == nil || ev.SecondApproverID == nil) {
		s.logger.Warn("leave request created with incomplete two-step setup",
			zap.String("event_id", ev.ID.String()),
			zap.String("user_id", ev.UserID.String()),
		)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, p domain.Principal, id string) (EventResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EventResponse{}, eventerrors.ErrInvalidEventID
	}
	ev, err := s.repo.FindByID(ctx, p.CompanyID.String(), id)
	if err != nil {
		return EventResponse{}, err
	}
	list := mapToListResponse([]Event{*ev}, p, s.owners(ctx, p.CompanyID.String(), []Event{*ev}))
	return list[0], nil
}

func (s *service) List(ctx context.Context, p domain.Principal, q ListEventsQuery) ([]EventResponse, error) {
	start, end, err := parseRange(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	evs, err := s.repo.List(ctx, p.CompanyID.String(), ListFilter{
		Start:      start,
		End:        end,
		Type:       q.Type,
		UserID:     q.UserID,
		Department: strings.TrimSpace(q.Department),
	})
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, err
	}

	return mapToListResponse(evs, p, s.owners(ctx, p.CompanyID.String(), evs)), nil
}

func (s *service) Update(ctx context.Context, p domain.Principal, id string, req UpdateEventRequest) (EventResponse, error) {
	s.logger.Debug("update event requested",
		zap.String("event_id", id),
		zap.String("user_id", p.UserID.String()),
	)
	if _, err := uuid.Parse(id); err != nil {
		return EventResponse{}, eventerrors.ErrInvalidEventID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update event begin tx failed", zap.Error(tx.Error))
		return EventResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ev, err := qtx.FindByIDForUpdate(ctx, p.CompanyID.String(), id)
	if err != nil {
		return EventResponse{}, err
	}
	if err := s.checkOwnerCanChange(ev, p); err != nil {
		return EventResponse{}, err
	}

	wasLeaveLike := ev.LeaveLike()
	typeChanged := req.Type != nil && *req.Type != ev.Type
	if typeChanged {
		if !domain.ValidEventType(*req.Type) {
			return EventResponse{}, eventerrors.ErrInvalidType
		}
		ev.Type = *req.Type
	}

	start, end := ev.StartTS, ev.EndTS
	if req.StartTS != nil {
		if start, err = parseDay(*req.StartTS); err != nil {
			return EventResponse{}, err
		}
	}
	if req.EndTS != nil {
		if end, err = parseDay(*req.EndTS); err != nil {
			return EventResponse{}, err
		}
	}
	if !start.Before(end) {
		return EventResponse{}, eventerrors.ErrInvalidRange
	}
	today := domain.Day(s.now())
	if (typeChanged || !start.Equal(ev.StartTS)) && start.Before(today) {
		return EventResponse{}, eventerrors.ErrPastDated
	}
	if !end.After(today) {
		return EventResponse{}, eventerrors.ErrPastDated
	}
	ev.StartTS, ev.EndTS = start, end

	var clientID, clientName *string
	if ev.Type == domain.EventTypeClientVisit {
		clientID, clientName = uuidString(ev.ClientID), ev.OneTimeClientName
	}
	if req.ClientID != nil {
		clientID = req.ClientID
	}
	if req.OneTimeClientName != nil {
		clientName = req.OneTimeClientName
	}
	if err := applyClient(ev, clientID, clientName); err != nil {
		return EventResponse{}, err
	}
	if req.Note != nil {
		ev.Note = optionalText(req.Note)
	}

	if typeChanged {
		if ev.LeaveLike() {
			if err := s.openRequest(ctx, tx, ev); err != nil {
				return EventResponse{}, err
			}
		} else {
			closeRequest(ev)
		}
		if ev.Type != domain.EventTypeHospital {
			ev.SickNoteURL = nil
		}
	}

	if err := qtx.Update(ctx, ev); err != nil {
		if !errors.Is(err, eventerrors.ErrConcurrentUpdate) {
			s.logger.Error("update event persist failed", zap.String("event_id", id), zap.Error(err))
		}
		return EventResponse{}, err
	}

	eventType := events.TypeEventsChanged
	if typeChanged && ev.LeaveLike() {
		eventType = events.TypeLeaveRequested
	}
	if err := s.writeOutbox(ctx, tx, ev, eventType, realtime.ActionUpdated, p.UserID); err != nil {
		return EventResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update event commit failed", zap.String("event_id", id), zap.Error(err))
		return EventResponse{}, err
	}
	s.logger.Info("update event success",
		zap.String("event_id", id),
		zap.String("type", ev.Type),
		zap.String("status", ev.Status),
	)

	s.afterCommit(ctx, ev, realtime.ActionUpdated, wasLeaveLike || ev.LeaveLike())

	resp := mapToResponse(*ev)
	annotate(&resp, *ev, p)
	resp.BalanceWarning = s.balanceWarning(ctx, ev)
	return resp, nil
}

func (s *service) Delete(ctx context.Context, p domain.Principal, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return eventerrors.ErrInvalidEventID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete event begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ev, err := qtx.FindByIDForUpdate(ctx, p.CompanyID.String(), id)
	if err != nil {
		return err
	}
	if err := s.checkOwnerCanChange(ev, p); err != nil {
		return err
	}

	if err := qtx.Delete(ctx, ev); err != nil {
		if !errors.Is(err, eventerrors.ErrConcurrentUpdate) {
			s.logger.Error("delete event persist failed", zap.String("event_id", id), zap.Error(err))
		}
		return err
	}
	if err := s.writeOutbox(ctx, tx, ev, events.TypeEventsChanged, realtime.ActionDeleted, p.UserID); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete event commit failed", zap.String("event_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("delete event success", zap.String("event_id", id))

	s.afterCommit(ctx, ev, realtime.ActionDeleted, ev.LeaveLike())
	return nil
}

func (s *service) checkOwnerCanChange(ev *Event, p domain.Principal) error {
	if ev.UserID != p.UserID {
		s.logger.Warn("event change by non-owner rejected",
			zap.String("event_id", ev.ID.String()),
			zap.String("user_id", p.UserID.String()),
		)
		return eventerrors.ErrNotOwner
	}
	if ev.IsPast(s.now()) {
		return eventerrors.ErrEventInPast
	}
	return nil
}

// closeRequest turns an event into an informational block.
func closeRequest(ev *Event) {
	ev.Status = domain.StatusApproved
	ev.RequestedByID = nil
	ev.ApprovedByID = nil
	ev.ApprovedAt = nil
	ev.RejectionReason = nil
	ev.TwoStep = false
	ev.FirstApproverID = nil
	ev.SecondApproverID = nil
	ev.FirstApprovedByID = nil
	ev.SecondApprovedByID = nil
}

func (s *service) writeOutbox(ctx context.Context, tx *gorm.DB, ev *Event, eventType, action string, actorID uuid.UUID) error {
	if s.outbox == nil {
		return nil
	}

	payload := events.CalendarEvent{
		EventType:        eventType,
		Action:           action,
		EventID:          ev.ID.String(),
		CompanyID:        ev.CompanyID.String(),
		OwnerID:          ev.UserID.String(),
		ActorID:          actorID.String(),
		Type:             ev.Type,
		Status:           ev.Status,
		StartDate:        domain.FormatDay(ev.StartTS),
		EndDate:          domain.FormatDay(ev.EndTS),
		TwoStep:          ev.TwoStep,
		FirstApproverID:  derefUUID(ev.FirstApproverID),
		SecondApproverID: derefUUID(ev.SecondApproverID),
		OccurredAt:       s.now(),
	}
	if ev.RejectionReason != nil {
		payload.RejectionReason = *ev.RejectionReason
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: events.AggregateCalendarEvent,
		AggregateID:   ev.ID.String(),
		EventType:     eventType,
		Topic:         events.CalendarEventsTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.logger.Error("write outbox failed", zap.String("event_id", ev.ID.String()), zap.Error(err))
	}
	return err
}

// afterCommit runs the side effects of a committed mutation. Failures are
// logged and never reach the caller.
func (s *service) afterCommit(ctx context.Context, ev *Event, action string, touchesBalance bool) {
	if touchesBalance && s.balances != nil {
		if err := s.balances.Invalidate(ctx, ev.CompanyID.String(), ev.UserID.String()); err != nil {
			s.logger.Warn("balance cache invalidation failed",
				zap.String("user_id", ev.UserID.String()),
				zap.Error(err),
			)
		}
	}
	if s.notifier != nil {
		n := s.notifier.Broadcast(ev.CompanyID, realtime.EventsChanged(action, ev.ID.String()))
		s.logger.Debug("events_changed broadcast",
			zap.String("event_id", ev.ID.String()),
			zap.String("action", action),
			zap.Int("viewers", n),
		)
	}
}

// balanceWarning never fails the request; a lookup error only drops the
// warning.
func (s *service) balanceWarning(ctx context.Context, ev *Event) *balance.Warning {
	if ev.Type != domain.EventTypeLeave || s.balances == nil {
		return nil
	}
	w, err := s.balances.Check(ctx, ev.CompanyID.String(), ev.UserID.String(), ev.StartTS, ev.EndTS, ev.ID.String())
	if err != nil {
		s.logger.Warn("balance check failed", zap.String("event_id", ev.ID.String()), zap.Error(err))
		return nil
	}
	return w
}

func (s *service) owners(ctx context.Context, companyID string, evs []Event) map[uuid.UUID]ownerInfo {
	if len(evs) == 0 || s.employees == nil {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(evs))
	ids := make([]string, 0, len(evs))
	for _, ev := range evs {
		if _, ok := seen[ev.UserID]; ok {
			continue
		}
		seen[ev.UserID] = struct{}{}
		ids = append(ids, ev.UserID.String())
	}

	empls, err := s.employees.FindByIDs(ctx, companyID, ids)
	if err != nil {
		s.logger.Warn("load event owners failed", zap.Error(err))
		return nil
	}
	out := make(map[uuid.UUID]ownerInfo, len(empls))
	for _, e := range empls {
		out[e.ID] = ownerInfo{Name: e.FullName, Department: e.Department}
	}
	return out
}

func parseDay(v string) (time.Time, error) {
	d, err := domain.ParseDay(strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, eventerrors.ErrInvalidDateFormat
	}
	return d, nil
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := parseDay(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, eventerrors.ErrInvalidRange
	}
	return start, end, nil
}

// applyClient enforces that only client visits carry a client, and that they
// carry exactly one of a managed client id or a one-time name.
func applyClient(ev *Event, clientID, clientName *string) error {
	id := optionalText(clientID)
	name := optionalText(clientName)

	if ev.Type != domain.EventTypeClientVisit {
		if id != nil || name != nil {
			return eventerrors.ErrClientNotAllowed
		}
		ev.ClientID, ev.OneTimeClientName = nil, nil
		return nil
	}

	switch {
	case id != nil && name != nil:
		return eventerrors.ErrClientAmbiguous
	case id == nil && name == nil:
		return eventerrors.ErrClientRequired
	case id != nil:
		parsed, err := uuid.Parse(*id)
		if err != nil {
			return eventerrors.ErrClientRequired
		}
		ev.ClientID, ev.OneTimeClientName = &parsed, nil
	default:
		ev.ClientID, ev.OneTimeClientName = nil, name
	}
	return nil
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}

func derefUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

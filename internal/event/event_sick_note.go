package event

import (
	"context"
	"errors"
	"path"
	"strings"

	"hr-calendar/internal/domain"
	eventerrors "hr-calendar/internal/event/errors"
	"hr-calendar/internal/events"
	"hr-calendar/internal/realtime"
	"hr-calendar/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SickNoteURLPrefix = "/files/sick-notes/"
	sickNoteKeyPrefix = "sick-notes/"
)

var sickNoteExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// AttachSickNote stores the document and links it to a Hospital event owned
// by the caller.
func (s *service) AttachSickNote(ctx context.Context, p domain.Principal, id string, file SickNoteUpload) (EventResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EventResponse{}, eventerrors.ErrInvalidEventID
	}
	ext, ok := sickNoteExtensions[file.ContentType]
	if !ok {
		return EventResponse{}, eventerrors.ErrSickNoteType
	}
	if s.sickNoteMaxBytes > 0 && file.Size > s.sickNoteMaxBytes {
		return EventResponse{}, eventerrors.ErrSickNoteTooLarge
	}

	current, err := s.repo.FindByID(ctx, p.CompanyID.String(), id)
	if err != nil {
		return EventResponse{}, err
	}
	if current.Type != domain.EventTypeHospital {
		return EventResponse{}, eventerrors.ErrSickNoteNotAllowed
	}
	if current.UserID != p.UserID {
		return EventResponse{}, eventerrors.ErrNotOwner
	}

	name := current.ID.String() + "-" + uuid.NewString() + ext
	if err := s.storage.Upload(ctx, sickNoteKeyPrefix+name, file.Body, file.ContentType); err != nil {
		s.logger.Error("sick note upload failed", zap.String("event_id", id), zap.Error(err))
		return EventResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return EventResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ev, err := qtx.FindByIDForUpdate(ctx, p.CompanyID.String(), id)
	if err != nil {
		return EventResponse{}, err
	}
	if ev.Type != domain.EventTypeHospital {
		return EventResponse{}, eventerrors.ErrSickNoteNotAllowed
	}

	url := SickNoteURLPrefix + name
	ev.SickNoteURL = &url
	if err := qtx.Update(ctx, ev); err != nil {
		return EventResponse{}, err
	}
	if err := s.writeOutbox(ctx, tx, ev, events.TypeEventsChanged, realtime.ActionUpdated, p.UserID); err != nil {
		return EventResponse{}, err
	}
	if err := tx.Commit().Error; err != nil {
		s.logger.Error("sick note commit failed", zap.String("event_id", id), zap.Error(err))
		return EventResponse{}, err
	}
	s.logger.Info("sick note attached", zap.String("event_id", id), zap.String("file", name))

	s.afterCommit(ctx, ev, realtime.ActionUpdated, false)

	resp := mapToResponse(*ev)
	annotate(&resp, *ev, p)
	return resp, nil
}

// OpenSickNote returns the document if the caller owns the event, runs the
// company, or is someone who reviews the request.
func (s *service) OpenSickNote(ctx context.Context, p domain.Principal, name string) (storage.Object, error) {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return storage.Object{}, eventerrors.ErrSickNoteNotFound
	}

	ev, err := s.repo.FindBySickNoteURL(ctx, p.CompanyID.String(), SickNoteURLPrefix+name)
	if err != nil {
		if errors.Is(err, eventerrors.ErrEventNotFound) {
			return storage.Object{}, eventerrors.ErrSickNoteNotFound
		}
		return storage.Object{}, err
	}
	if !canReadSickNote(ev, p) {
		s.logger.Warn("sick note access denied",
			zap.String("event_id", ev.ID.String()),
			zap.String("user_id", p.UserID.String()),
		)
		return storage.Object{}, eventerrors.ErrSickNoteForbidden
	}

	obj, err := s.storage.Get(ctx, sickNoteKeyPrefix+name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return storage.Object{}, eventerrors.ErrSickNoteNotFound
		}
		return storage.Object{}, err
	}
	return obj, nil
}

func canReadSickNote(ev *Event, p domain.Principal) bool {
	if ev.UserID == p.UserID || p.IsAdmin() {
		return true
	}
	if sameUUID(ev.FirstApproverID, p.UserID) || sameUUID(ev.SecondApproverID, p.UserID) {
		return true
	}
	pinned := ev.TwoStep || ev.FirstApproverID != nil || ev.SecondApproverID != nil
	return !pinned && p.Role == domain.RoleSupervisor
}

func sameUUID(a *uuid.UUID, b uuid.UUID) bool {
	return a != nil && *a == b
}

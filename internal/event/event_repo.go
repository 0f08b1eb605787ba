package event

import (
	"context"
	"time"

	"hr-calendar/internal/balance"
	"hr-calendar/internal/domain"
	"hr-calendar/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Start      time.Time
	End        time.Time
	Type       string
	UserID     string
	Department string
}

// LeaveRequestFilter narrows the approval queue. VisibleTo limits a
// supervisor to requests they may decide plus their own; OwnerID limits an
// employee to their own requests.
type LeaveRequestFilter struct {
	Status    string
	Type      string
	UserID    string
	OwnerID   string
	VisibleTo string
	Start     *time.Time
	End       *time.Time
}

//go:generate mockgen -source=event_repo.go -destination=mock/event_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ev *Event) error
	FindByID(ctx context.Context, companyID, id string) (*Event, error)
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Event, error)
	FindBySickNoteURL(ctx context.Context, companyID, url string) (*Event, error)
	Update(ctx context.Context, ev *Event) error
	Delete(ctx context.Context, ev *Event) error
	List(ctx context.Context, companyID string, f ListFilter) ([]Event, error)
	ListLeaveRequests(ctx context.Context, companyID string, f LeaveRequestFilter) ([]Event, error)
	FindLeaveUsage(ctx context.Context, companyID, employeeID string, from, to time.Time, excludeID string) ([]balance.LeaveEvent, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ev *Event) error {
	return mapRepositoryError(r.db.WithContext(ctx).Create(ev).Error)
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*Event, error) {
	var ev Event
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&ev, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &ev, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Event, error) {
	var ev Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&ev, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &ev, nil
}

func (r *repository) FindBySickNoteURL(ctx context.Context, companyID, url string) (*Event, error) {
	var ev Event
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&ev, "sick_note_url = ?", url).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &ev, nil
}

// Update writes every mutable column guarded by the version the caller read.
// A stale version yields ErrConcurrentUpdate and leaves the row untouched.
func (r *repository) Update(ctx context.Context, ev *Event) error {
	expected := ev.Version
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND company_id = ? AND version = ?", ev.ID, ev.CompanyID, expected).
		Updates(map[string]interface{}{
			"type":                  ev.Type,
			"start_ts":              ev.StartTS,
			"end_ts":                ev.EndTS,
			"status":                ev.Status,
			"reference":             ev.Reference,
			"requested_by_id":       ev.RequestedByID,
			"approved_by_id":        ev.ApprovedByID,
			"approved_at":           ev.ApprovedAt,
			"rejection_reason":      ev.RejectionReason,
			"two_step":              ev.TwoStep,
			"first_approver_id":     ev.FirstApproverID,
			"second_approver_id":    ev.SecondApproverID,
			"first_approved_by_id":  ev.FirstApprovedByID,
			"second_approved_by_id": ev.SecondApprovedByID,
			"client_id":             ev.ClientID,
			"one_time_client_name":  ev.OneTimeClientName,
			"note":                  ev.Note,
			"sick_note_url":         ev.SickNoteURL,
			"version":               expected + 1,
			"updated_at":            now,
		})
	if res.Error != nil {
		return mapRepositoryError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleVersion
	}

	ev.Version = expected + 1
	ev.UpdatedAt = now
	return nil
}

func (r *repository) Delete(ctx context.Context, ev *Event) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND version = ?", ev.ID, ev.CompanyID, ev.Version).
		Delete(&Event{})
	if res.Error != nil {
		return mapRepositoryError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleVersion
	}
	return nil
}

func (r *repository) List(ctx context.Context, companyID string, f ListFilter) ([]Event, error) {
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("start_ts < ? AND end_ts > ?", f.End, f.Start)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Department != "" {
		q = q.Scopes(tenant.Department(companyID, f.Department))
	}

	var events []Event
	err := q.Order("start_ts ASC").Order("created_at ASC").Find(&events).Error
	return events, err
}

func (r *repository) ListLeaveRequests(ctx context.Context, companyID string, f LeaveRequestFilter) ([]Event, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(companyID))

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	} else {
		q = q.Where("type IN ?", []string{domain.EventTypeLeave, domain.EventTypeHospital})
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.OwnerID != "" {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if f.VisibleTo != "" {
		q = q.Where(
			"(first_approver_id = ? OR second_approver_id = ? OR user_id = ? OR (two_step = FALSE AND first_approver_id IS NULL AND second_approver_id IS NULL))",
			f.VisibleTo, f.VisibleTo, f.VisibleTo,
		)
	}
	if f.Start != nil {
		q = q.Where("end_ts > ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("start_ts < ?", *f.End)
	}

	var events []Event
	err := q.Order("start_ts DESC").Find(&events).Error
	return events, err
}

type usageRow struct {
	Type    string
	Status  string
	StartTS time.Time `gorm:"column:start_ts"`
	EndTS   time.Time `gorm:"column:end_ts"`
}

func (r *repository) FindLeaveUsage(ctx context.Context, companyID, employeeID string, from, to time.Time, excludeID string) ([]balance.LeaveEvent, error) {
	q := r.db.WithContext(ctx).
		Model(&Event{}).
		Select("type", "status", "start_ts", "end_ts").
		Scopes(tenant.Scope(companyID)).
		Where("user_id = ? AND type = ? AND status = ?", employeeID, domain.EventTypeLeave, domain.StatusApproved).
		Where("start_ts < ? AND end_ts > ?", to, from)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []usageRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]balance.LeaveEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, balance.LeaveEvent{
			Type:   row.Type,
			Status: row.Status,
			Start:  row.StartTS,
			End:    row.EndTS,
		})
	}
	return out, nil
}

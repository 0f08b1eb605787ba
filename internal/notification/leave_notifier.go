package notification

import (
	"context"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/employee"
	"hr-calendar/internal/events"

	"go.uber.org/zap"
)

// Directory resolves the people a leave e-mail is addressed to.
type Directory interface {
	FindByIDs(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error)
}

type LeaveNotifier struct {
	directory Directory
	mailer    Mailer
	baseURL   string
	logger    *zap.Logger
}

func NewLeaveNotifier(directory Directory, mailer Mailer, baseURL string, logger ...*zap.Logger) *LeaveNotifier {
	l := zap.L().Named("notification.leave")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.leave")
	}
	return &LeaveNotifier{directory: directory, mailer: mailer, baseURL: baseURL, logger: l}
}

// HandleCalendarEvent mails approvers when a request needs them and the owner
// when it is decided. Other event types are ignored.
func (n *LeaveNotifier) HandleCalendarEvent(ctx context.Context, ev events.CalendarEvent) error {
	switch ev.EventType {
	case events.TypeLeaveRequested:
		if ev.Status != domain.StatusPending {
			return nil
		}
		return n.notifyApprovers(ctx, ev, n.requestApprovers(ev))
	case events.TypeLeaveStepApproved:
		if ev.SecondApproverID == "" {
			return nil
		}
		return n.notifyApprovers(ctx, ev, []string{ev.SecondApproverID})
	case events.TypeLeaveDecided:
		return n.notifyOwner(ctx, ev)
	default:
		return nil
	}
}

// requestApprovers returns the pinned approvers that must see a new request.
// A nil result means nobody is pinned and any reviewer may act.
func (n *LeaveNotifier) requestApprovers(ev events.CalendarEvent) []string {
	if ev.TwoStep {
		if ev.FirstApproverID == "" {
			return []string{}
		}
		return []string{ev.FirstApproverID}
	}
	var ids []string
	for _, id := range []string{ev.FirstApproverID, ev.SecondApproverID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (n *LeaveNotifier) notifyApprovers(ctx context.Context, ev events.CalendarEvent, approverIDs []string) error {
	var (
		approvers []employee.Employee
		err       error
	)
	if approverIDs == nil {
		approvers, err = n.reviewers(ctx, ev.CompanyID)
	} else if len(approverIDs) > 0 {
		approvers, err = n.directory.FindByIDs(ctx, ev.CompanyID, approverIDs)
	}
	if err != nil {
		n.logger.Error("resolve approvers failed", zap.String("event_id", ev.EventID), zap.Error(err))
		return err
	}

	to := emails(approvers, ev.OwnerID)
	if len(to) == 0 {
		n.logger.Warn("leave request has nobody to notify",
			zap.String("event_id", ev.EventID),
			zap.Bool("two_step", ev.TwoStep),
		)
		return nil
	}

	ownerName := ""
	if owners, err := n.directory.FindByIDs(ctx, ev.CompanyID, []string{ev.OwnerID}); err == nil && len(owners) > 0 {
		ownerName = owners[0].FullName
	}

	msg, err := LeaveRequestedMessage(ev, ownerName, to, n.baseURL)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

func (n *LeaveNotifier) notifyOwner(ctx context.Context, ev events.CalendarEvent) error {
	owners, err := n.directory.FindByIDs(ctx, ev.CompanyID, []string{ev.OwnerID})
	if err != nil {
		n.logger.Error("resolve owner failed", zap.String("event_id", ev.EventID), zap.Error(err))
		return err
	}
	to := emails(owners, "")
	if len(to) == 0 {
		n.logger.Warn("leave owner has no e-mail", zap.String("owner_id", ev.OwnerID))
		return nil
	}

	msg, err := LeaveDecidedMessage(ev, to, n.baseURL)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

func (n *LeaveNotifier) reviewers(ctx context.Context, companyID string) ([]employee.Employee, error) {
	all, err := n.directory.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]employee.Employee, 0, len(all))
	for _, e := range all {
		switch e.Role {
		case domain.RoleAdmin, domain.RoleCEO, domain.RoleSupervisor:
			out = append(out, e)
		}
	}
	return out, nil
}

func emails(empls []employee.Employee, skipID string) []string {
	seen := make(map[string]struct{}, len(empls))
	out := make([]string, 0, len(empls))
	for _, e := range empls {
		if e.Email == "" || e.ID.String() == skipID {
			continue
		}
		if _, ok := seen[e.Email]; ok {
			continue
		}
		seen[e.Email] = struct{}{}
		out = append(out, e.Email)
	}
	return out
}

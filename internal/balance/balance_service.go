package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	balanceerrors "hr-calendar/internal/balance/errors"
	"hr-calendar/internal/domain"
	"hr-calendar/internal/employee"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// UsageSource returns approved Leave events of one employee overlapping
// [from, to). excludeID, when set, drops that event from the result.
type UsageSource interface {
	FindLeaveUsage(ctx context.Context, companyID, employeeID string, from, to time.Time, excludeID string) ([]LeaveEvent, error)
}

func GenerationKey(companyID, employeeID string) string {
	return fmt.Sprintf("leave:balance:gen:%s:%s", companyID, employeeID)
}

func CacheKey(companyID, employeeID string, generation int64, asOf time.Time) string {
	return fmt.Sprintf("leave:balance:%s:%s:g%d:%s", companyID, employeeID, generation, domain.FormatDay(asOf))
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, companyID, employeeID string, asOf time.Time) (BalanceResponse, error)
	Check(ctx context.Context, companyID, employeeID string, start, end time.Time, excludeEventID string) (*Warning, error)
	Invalidate(ctx context.Context, companyID, employeeID string) error
}

type service struct {
	employees   employee.Repository
	usage       UsageSource
	rdb         *redis.Client
	entitlement decimal.Decimal
	ttl         time.Duration
	sf          *singleflight.Group
	logger      *zap.Logger
}

func NewService(
	employees employee.Repository,
	usage UsageSource,
	rdb *redis.Client,
	annualEntitlement float64,
	ttl time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{
		employees:   employees,
		usage:       usage,
		rdb:         rdb,
		entitlement: decimal.NewFromFloat(annualEntitlement),
		ttl:         ttl,
		sf:          &singleflight.Group{},
		logger:      l,
	}
}

func (s *service) GetBalance(ctx context.Context, companyID, employeeID string, asOf time.Time) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	asOf = domain.Day(asOf)

	gen, cacheable := s.generation(ctx, companyID, employeeID)
	cacheKey := CacheKey(companyID, employeeID, gen, asOf)

	if cacheable {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp BalanceResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		b, err := s.compute(ctx, companyID, employeeID, asOf, "")
		if err != nil {
			return nil, err
		}
		resp := mapToResponse(employeeID, s.entitlement.InexactFloat64(), b)

		if cacheable {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, s.ttl).Err(); err != nil {
					s.logger.Warn("balance cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return BalanceResponse{}, err
	}

	return v.(BalanceResponse), nil
}

// Check computes the balance as of the request's start date, ignoring the
// request itself, and returns a warning when the request does not fit.
func (s *service) Check(ctx context.Context, companyID, employeeID string, start, end time.Time, excludeEventID string) (*Warning, error) {
	start = domain.Day(start)
	b, err := s.compute(ctx, companyID, employeeID, start, excludeEventID)
	if err != nil {
		return nil, err
	}

	requested := RequestedDays(start, end)
	if decimal.NewFromInt(int64(requested)).LessThanOrEqual(b.Remaining) {
		return nil, nil
	}

	s.logger.Debug("leave request exceeds balance",
		zap.String("employee_id", employeeID),
		zap.Int("requested_days", requested),
		zap.String("remaining", b.Remaining.String()),
	)
	return &Warning{
		Code:          WarningInsufficientBalance,
		Message:       fmt.Sprintf("Requested %d day(s) but only %s day(s) will be available on %s", requested, b.Remaining.StringFixed(2), domain.FormatDay(start)),
		AsOf:          domain.FormatDay(start),
		RequestedDays: requested,
		Remaining:     b.Remaining.InexactFloat64(),
	}, nil
}

// Invalidate drops every cached balance of the employee by bumping its
// generation counter.
func (s *service) Invalidate(ctx context.Context, companyID, employeeID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Incr(ctx, GenerationKey(companyID, employeeID)).Err()
}

func (s *service) generation(ctx context.Context, companyID, employeeID string) (int64, bool) {
	if s.rdb == nil {
		return 0, false
	}
	gen, err := s.rdb.Get(ctx, GenerationKey(companyID, employeeID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("balance cache generation read failed", zap.String("employee_id", employeeID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *service) compute(ctx context.Context, companyID, employeeID string, asOf time.Time, excludeEventID string) (LeaveBalance, error) {
	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveBalance{}, balanceerrors.ErrEmployeeNotFound
		}
		s.logger.Error("balance load employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveBalance{}, err
	}

	in := Input{
		HireDate:          empl.HireDate,
		AnnualEntitlement: s.entitlement,
	}
	if empl.LeaveOpeningAsOf != nil {
		in.Opening = &OpeningSnapshot{
			AsOf:    *empl.LeaveOpeningAsOf,
			Accrued: empl.LeaveOpeningAccrued,
			Used:    empl.LeaveOpeningUsed,
		}
	}
	if empl.HireDate == nil {
		return Compute(in, asOf), nil
	}

	from, _ := Cycle(*empl.HireDate, asOf)
	events, err := s.usage.FindLeaveUsage(ctx, companyID, employeeID, from, domain.Day(asOf).AddDate(0, 0, 1), excludeEventID)
	if err != nil {
		s.logger.Error("balance load usage failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveBalance{}, err
	}
	in.Events = events

	return Compute(in, asOf), nil
}

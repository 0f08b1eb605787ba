package employee

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"hr-calendar/internal/domain"
	employeeerrors "hr-calendar/internal/employee/errors"
	"hr-calendar/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const EmployeeDirectoryKeyPrefix = "employees:directory:"

func GetEmployeeDirectoryKey(companyID string) string {
	return EmployeeDirectoryKeyPrefix + companyID
}

// ProfileChangeHook is notified after a leave profile is committed so derived
// data (cached balances) can be dropped.
type ProfileChangeHook interface {
	Invalidate(ctx context.Context, companyID, employeeID string) error
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	UpdateLeaveProfile(ctx context.Context, companyID, id string, req UpdateLeaveProfileRequest) (EmployeeResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	rdb    *redis.Client
	hook   ProfileChangeHook
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, hook ProfileChangeHook, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		hook:   hook,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	cacheKey := GetEmployeeDirectoryKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		empls, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			s.logger.Error("get all employees failed", zap.Error(err))
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(empls)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 10*time.Minute)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", id),
	)
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) UpdateLeaveProfile(
	ctx context.Context,
	companyID, id string,
	req UpdateLeaveProfileRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave profile requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("employee_id", id),
	)
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update leave profile begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := applyLeaveProfile(empl, req); err != nil {
		s.logger.Warn("update leave profile validation failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}
	if err := s.validateApprovers(ctx, qtx, companyID, empl); err != nil {
		s.logger.Warn("update leave profile approver check failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}

	if err := qtx.UpdateLeaveProfile(ctx, empl); err != nil {
		s.logger.Error("update leave profile persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update leave profile commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	if s.rdb != nil {
		cacheKey := GetEmployeeDirectoryKey(companyID)
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate employee directory cache",
				zap.Error(err),
				zap.String("key", cacheKey),
			)
		}
	}
	if s.hook != nil {
		if err := s.hook.Invalidate(ctx, companyID, id); err != nil {
			s.logger.Error("leave profile change hook failed", zap.String("employee_id", id), zap.Error(err))
		}
	}

	s.logger.Info("update leave profile success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)
	return mapToResponse(*empl), nil
}

func applyLeaveProfile(empl *Employee, req UpdateLeaveProfileRequest) error {
	if req.Role != nil {
		empl.Role = *req.Role
	}
	if req.Department != nil {
		empl.Department = strings.TrimSpace(*req.Department)
	}
	if req.HireDate != nil {
		d, err := parseOptionalDay(*req.HireDate)
		if err != nil {
			return employeeerrors.ErrInvalidHireDate
		}
		empl.HireDate = d
	}
	if req.RequireTwoStepLeaveApproval != nil {
		empl.RequireTwoStepLeaveApproval = *req.RequireTwoStepLeaveApproval
	}
	if req.FirstApproverID != nil {
		empl.FirstApproverID = parseOptionalID(*req.FirstApproverID)
	}
	if req.SecondApproverID != nil {
		empl.SecondApproverID = parseOptionalID(*req.SecondApproverID)
	}
	if req.LeaveOpeningAsOf != nil {
		d, err := parseOptionalDay(*req.LeaveOpeningAsOf)
		if err != nil {
			return employeeerrors.ErrInvalidOpeningDate
		}
		empl.LeaveOpeningAsOf = d
	}
	if req.LeaveOpeningAccrued != nil {
		empl.LeaveOpeningAccrued = decimal.NewFromFloat(*req.LeaveOpeningAccrued).Round(2)
	}
	if req.LeaveOpeningUsed != nil {
		empl.LeaveOpeningUsed = decimal.NewFromFloat(*req.LeaveOpeningUsed).Round(2)
	}

	if empl.LeaveOpeningUsed.GreaterThan(empl.LeaveOpeningAccrued) {
		return employeeerrors.ErrOpeningUsedExceedsAccrued
	}
	if empl.FirstApproverID != nil && empl.SecondApproverID != nil && *empl.FirstApproverID == *empl.SecondApproverID {
		return employeeerrors.ErrSameApprover
	}
	for _, approverID := range empl.ApproverIDs() {
		if approverID == empl.ID {
			return employeeerrors.ErrSelfApprover
		}
	}
	if empl.RequireTwoStepLeaveApproval && (empl.FirstApproverID == nil || empl.SecondApproverID == nil) {
		return employeeerrors.ErrTwoStepRequiresApprovers
	}
	return nil
}

func (s *service) validateApprovers(ctx context.Context, qtx Repository, companyID string, empl *Employee) error {
	ids := empl.ApproverIDs()
	if len(ids) == 0 {
		return nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	found, err := qtx.FindByIDs(ctx, companyID, strIDs)
	if err != nil {
		return mapRepositoryError(err)
	}
	roles := make(map[uuid.UUID]string, len(found))
	for _, f := range found {
		roles[f.ID] = f.Role
	}

	if empl.FirstApproverID != nil {
		role, ok := roles[*empl.FirstApproverID]
		if !ok {
			return employeeerrors.ErrApproverNotFound
		}
		if role != domain.RoleSupervisor && role != domain.RoleAdmin && role != domain.RoleCEO {
			return employeeerrors.ErrFirstApproverRole
		}
	}
	if empl.SecondApproverID != nil {
		role, ok := roles[*empl.SecondApproverID]
		if !ok {
			return employeeerrors.ErrApproverNotFound
		}
		if role != domain.RoleAdmin && role != domain.RoleCEO {
			return employeeerrors.ErrSecondApproverRole
		}
	}
	return nil
}

func parseOptionalDay(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := domain.ParseDay(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalID(v string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &id
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                          empl.ID.String(),
		CompanyID:                   empl.CompanyID.String(),
		FullName:                    empl.FullName,
		Email:                       empl.Email,
		Role:                        empl.Role,
		Department:                  empl.Department,
		RequireTwoStepLeaveApproval: empl.RequireTwoStepLeaveApproval,
		LeaveOpeningAccrued:         empl.LeaveOpeningAccrued.InexactFloat64(),
		LeaveOpeningUsed:            empl.LeaveOpeningUsed.InexactFloat64(),
	}
	if empl.HireDate != nil {
		v := domain.FormatDay(*empl.HireDate)
		resp.HireDate = &v
	}
	if empl.LeaveOpeningAsOf != nil {
		v := domain.FormatDay(*empl.LeaveOpeningAsOf)
		resp.LeaveOpeningAsOf = &v
	}
	if empl.FirstApproverID != nil {
		v := empl.FirstApproverID.String()
		resp.FirstApproverID = &v
	}
	if empl.SecondApproverID != nil {
		v := empl.SecondApproverID.String()
		resp.SecondApproverID = &v
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		resp[i] = mapToResponse(e)
	}
	return resp
}

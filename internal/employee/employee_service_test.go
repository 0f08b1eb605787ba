package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/employee"
	employeeerrors "hr-calendar/internal/employee/errors"
	employeeMock "hr-calendar/internal/employee/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeHook struct {
	calls []string
}

func (f *fakeHook) Invalidate(ctx context.Context, companyID, employeeID string) error {
	f.calls = append(f.calls, companyID+"/"+employeeID)
	return nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	redismock redismock.ClientMock
	hook      *fakeHook
}

func newGormMock(t *testing.T) (*gorm.DB, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return gdb, sqlDB, mock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	gdb, sqlDB, sqlMock := newGormMock(t)
	rdb, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	hook := &fakeHook{}

	return &serviceDeps{
		db:        sqlDB,
		sqlMock:   sqlMock,
		service:   employee.NewService(gdb, repo, rdb, hook),
		repo:      repo,
		redismock: redisMock,
		hook:      hook,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestEmployeeService_UpdateLeaveProfile(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("success - two-step with valid approvers", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		supervisor := employee.Employee{ID: uuid.New(), CompanyID: companyID, Role: domain.RoleSupervisor}
		admin := employee.Employee{ID: uuid.New(), CompanyID: companyID, Role: domain.RoleAdmin}

		req := employee.UpdateLeaveProfileRequest{
			HireDate:                    strPtr("2024-01-10"),
			RequireTwoStepLeaveApproval: boolPtr(true),
			FirstApproverID:             strPtr(supervisor.ID.String()),
			SecondApproverID:            strPtr(admin.ID.String()),
			LeaveOpeningAsOf:            strPtr("2024-06-30"),
		}
		accrued, used := 10.0, 4.5
		req.LeaveOpeningAccrued = &accrued
		req.LeaveOpeningUsed = &used

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID, Role: domain.RoleEmployee}, nil)
		deps.repo.EXPECT().
			FindByIDs(ctx, companyID.String(), []string{supervisor.ID.String(), admin.ID.String()}).
			Return([]employee.Employee{supervisor, admin}, nil)
		deps.repo.EXPECT().
			UpdateLeaveProfile(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.True(t, e.RequireTwoStepLeaveApproval)
				assert.Equal(t, supervisor.ID, *e.FirstApproverID)
				assert.Equal(t, admin.ID, *e.SecondApproverID)
				assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *e.HireDate)
				assert.Equal(t, "4.5", e.LeaveOpeningUsed.String())
				return nil
			})
		deps.redismock.ExpectDel(employee.GetEmployeeDirectoryKey(companyID.String())).SetVal(1)

		resp, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, "2024-01-10", *resp.HireDate)
		assert.Equal(t, "2024-06-30", *resp.LeaveOpeningAsOf)
		assert.Equal(t, 10.0, resp.LeaveOpeningAccrued)
		assert.Equal(t, []string{companyID.String() + "/" + emplID.String()}, deps.hook.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("two-step without second approver -> validation error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID}, nil)

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{
			RequireTwoStepLeaveApproval: boolPtr(true),
			FirstApproverID:             strPtr(uuid.NewString()),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrTwoStepRequiresApprovers)
		assert.Empty(t, deps.hook.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second approver must be admin", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		peer := employee.Employee{ID: uuid.New(), CompanyID: companyID, Role: domain.RoleEmployee}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID}, nil)
		deps.repo.EXPECT().
			FindByIDs(ctx, companyID.String(), []string{peer.ID.String()}).
			Return([]employee.Employee{peer}, nil)

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{
			SecondApproverID: strPtr(peer.ID.String()),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrSecondApproverRole)
	})

	t.Run("approver outside the company", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		outsider := uuid.New()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID}, nil)
		deps.repo.EXPECT().
			FindByIDs(ctx, companyID.String(), []string{outsider.String()}).
			Return(nil, nil)

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{
			FirstApproverID: strPtr(outsider.String()),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrApproverNotFound)
	})

	t.Run("self approval is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID, Role: domain.RoleSupervisor}, nil)

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{
			FirstApproverID: strPtr(emplID.String()),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrSelfApprover)
	})

	t.Run("opening used above accrued", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(&employee.Employee{ID: emplID, CompanyID: companyID}, nil)

		used := 3.0
		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{
			LeaveOpeningUsed: &used,
		})

		assert.ErrorIs(t, err, employeeerrors.ErrOpeningUsedExceedsAccrued)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		emplID := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByIDAndCompany(ctx, companyID.String(), emplID.String()).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), emplID.String(), employee.UpdateLeaveProfileRequest{})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateLeaveProfile(ctx, companyID.String(), "nope", employee.UpdateLeaveProfileRequest{})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	key := employee.GetEmployeeDirectoryKey(companyID)

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		empls := []employee.Employee{
			{ID: uuid.New(), FullName: "Andi", Email: "andi@comp.com", Role: domain.RoleEmployee},
			{ID: uuid.New(), FullName: "Budi", Email: "budi@comp.com", Role: domain.RoleSupervisor},
		}
		deps.redismock.ExpectGet(key).RedisNil()
		deps.repo.EXPECT().FindAllByCompany(ctx, companyID).Return(empls, nil)

		var expected []employee.EmployeeResponse
		for _, e := range empls {
			expected = append(expected, employee.EmployeeResponse{
				ID: e.ID.String(), CompanyID: uuid.Nil.String(), FullName: e.FullName, Email: e.Email, Role: e.Role,
			})
		}
		payload, _ := json.Marshal(expected)
		deps.redismock.ExpectSet(key, payload, 10*time.Minute).SetVal("OK")

		resp, err := deps.service.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(key).SetVal(`[{"id":"x","company_id":"c","full_name":"Cached","email":"c@x","role":"employee","require_two_step_leave_approval":false,"leave_opening_accrued":0,"leave_opening_used":0}]`)

		resp, err := deps.service.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Cached", resp[0].FullName)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	ctx := context.Background()
	companyID := uuid.New().String()
	id := uuid.New()
	hire := time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC)

	deps.repo.EXPECT().
		FindByIDAndCompany(ctx, companyID, id.String()).
		Return(&employee.Employee{ID: id, FullName: "Citra", HireDate: &hire}, nil)

	resp, err := deps.service.GetByID(ctx, companyID, id.String())

	assert.NoError(t, err)
	assert.Equal(t, "Citra", resp.FullName)
	assert.Equal(t, "2022-03-10", *resp.HireDate)
}

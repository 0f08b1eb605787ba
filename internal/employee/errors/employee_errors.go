package employeeerrors

import (
	"net/http"

	"hr-calendar/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hire_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidOpeningDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave_opening_as_of format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrApproverNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"approver does not belong to this company",
		http.StatusBadRequest,
	)
	ErrFirstApproverRole = apperror.New(
		apperror.CodeInvalidInput,
		"first_approver_id must be a supervisor or admin user",
		http.StatusBadRequest,
	)
	ErrSecondApproverRole = apperror.New(
		apperror.CodeInvalidInput,
		"second_approver_id must be an admin or ceo user",
		http.StatusBadRequest,
	)
	ErrSameApprover = apperror.New(
		apperror.CodeInvalidInput,
		"first_approver_id and second_approver_id must be different",
		http.StatusBadRequest,
	)
	ErrSelfApprover = apperror.New(
		apperror.CodeInvalidInput,
		"an employee cannot be their own approver",
		http.StatusBadRequest,
	)
	ErrTwoStepRequiresApprovers = apperror.New(
		apperror.CodeInvalidInput,
		"two-step leave approval requires both first_approver_id and second_approver_id",
		http.StatusBadRequest,
	)
	ErrOpeningUsedExceedsAccrued = apperror.New(
		apperror.CodeInvalidInput,
		"leave_opening_used cannot exceed leave_opening_accrued",
		http.StatusBadRequest,
	)
)

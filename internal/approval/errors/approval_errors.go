package approvalerrors

import (
	"net/http"

	"hr-calendar/internal/shared/apperror"
)

var (
	ErrNotLeaveLike = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeConflict,
		"only pending requests can be decided",
		http.StatusConflict,
	)
	ErrNotAssigned = apperror.New(
		apperror.CodeForbidden,
		"you are not assigned to decide this request",
		http.StatusForbidden,
	)
	ErrNotYourTurn = apperror.New(
		apperror.CodeForbidden,
		"first approver must approve before second approver",
		http.StatusForbidden,
	)
	ErrStepAlreadyRecorded = apperror.New(
		apperror.CodeConflict,
		"first approval already recorded",
		http.StatusConflict,
	)
	ErrSetupIncomplete = apperror.New(
		apperror.CodeApprovalSetupIncomplete,
		"two-step approval requires both first and second approver on the owner profile",
		http.StatusUnprocessableEntity,
	)
	ErrUnknownAction = apperror.New(
		apperror.CodeInvalidInput,
		"unknown approval action",
		http.StatusBadRequest,
	)
)

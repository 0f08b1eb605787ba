package eventerrors

import (
	"net/http"

	"hr-calendar/internal/shared/apperror"
)

var (
	ErrEventNotFound = apperror.New(
		apperror.CodeNotFound,
		"event not found",
		http.StatusNotFound,
	)
	ErrInvalidEventID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid event id",
		http.StatusBadRequest,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"type must be one of Leave, Hospital, ClientVisit, Training, Other",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_ts must be before end_ts",
		http.StatusBadRequest,
	)
	ErrPastDated = apperror.New(
		apperror.CodeInvalidInput,
		"events cannot start in the past",
		http.StatusBadRequest,
	)
	ErrClientRequired = apperror.New(
		apperror.CodeInvalidInput,
		"client visits need either client_id or one_time_client_name",
		http.StatusBadRequest,
	)
	ErrClientAmbiguous = apperror.New(
		apperror.CodeInvalidInput,
		"client_id and one_time_client_name are mutually exclusive",
		http.StatusBadRequest,
	)
	ErrClientNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"client fields are only allowed on client visits",
		http.StatusBadRequest,
	)
	ErrUseLeaveEndpoint = apperror.New(
		apperror.CodeInvalidInput,
		"leave must be requested through /leave/requests",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owner can change this event",
		http.StatusForbidden,
	)
	ErrEventInPast = apperror.New(
		apperror.CodeForbidden,
		"past events can no longer be changed",
		http.StatusForbidden,
	)
	ErrAdminOnlyFilter = apperror.New(
		apperror.CodeForbidden,
		"user_id and department filters are admin only",
		http.StatusForbidden,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of pending, approved, rejected",
		http.StatusBadRequest,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"the event was changed by someone else, reload and try again",
		http.StatusConflict,
	)
	ErrOwnerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"event owner has no employee profile",
		http.StatusBadRequest,
	)
	ErrSickNoteNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"sick notes can only be attached to Hospital events",
		http.StatusBadRequest,
	)
	ErrSickNoteType = apperror.New(
		apperror.CodeInvalidInput,
		"sick note must be a PDF, JPEG or PNG file",
		http.StatusBadRequest,
	)
	ErrSickNoteTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"sick note exceeds the maximum size",
		http.StatusRequestEntityTooLarge,
	)
	ErrSickNoteForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to view this sick note",
		http.StatusForbidden,
	)
	ErrSickNoteNotFound = apperror.New(
		apperror.CodeNotFound,
		"file not found",
		http.StatusNotFound,
	)
)

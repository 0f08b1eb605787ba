package balanceerrors

import (
	"net/http"

	"hr-calendar/internal/shared/apperror"
)

var (
	ErrInvalidAsOf = apperror.New(
		apperror.CodeInvalidInput,
		"invalid as_of, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
)

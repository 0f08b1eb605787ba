package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput            = "INVALID_INPUT"
	CodeValidation              = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeInvalidState            = "INVALID_STATE"
	CodeApprovalSetupIncomplete = "APPROVAL_SETUP_INCOMPLETE"
	CodeTooManyRequests         = "TOO_MANY_REQUESTS"
	CodeProcessing              = "PROCESSING"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

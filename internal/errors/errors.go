// Package errors provides custom error types for the SPAC OS API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WrapWithMessage combines Wrap and WithMessage: a custom client-facing
// message plus the internal cause for logs.
func WrapWithMessage(sentinel *AppError, message string, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrUnknownEnumValue = &AppError{Code: "UNKNOWN_ENUM_VALUE", Message: "Stored record has a value outside its vocabulary", StatusCode: http.StatusUnprocessableEntity}
	ErrUnknownEnumInput = &AppError{Code: "UNKNOWN_ENUM_VALUE", Message: "Value is outside its vocabulary", StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange = &AppError{Code: "INVALID_DATE_RANGE", Message: "End date must not precede start date", StatusCode: http.StatusBadRequest}
)

// User and team errors.
var (
	ErrUserNotFound       = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail     = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrMemberNotFound     = &AppError{Code: "MEMBER_NOT_FOUND", Message: "Team member not found", StatusCode: http.StatusNotFound}
	ErrDuplicateMember    = &AppError{Code: "DUPLICATE_MEMBER", Message: "User is already a member of this organization", StatusCode: http.StatusConflict}
	ErrLastOwner          = &AppError{Code: "LAST_OWNER", Message: "An organization must keep at least one owner", StatusCode: http.StatusConflict}
	ErrSeatLimitReached   = &AppError{Code: "SEAT_LIMIT_REACHED", Message: "All billed seats are in use", StatusCode: http.StatusPaymentRequired}
	ErrBillingNotFound    = &AppError{Code: "BILLING_NOT_FOUND", Message: "Billing account not found", StatusCode: http.StatusNotFound}
	ErrIntegrationMissing = &AppError{Code: "INTEGRATION_NOT_FOUND", Message: "Integration not found", StatusCode: http.StatusNotFound}
	ErrAPIKeyNotFound     = &AppError{Code: "API_KEY_NOT_FOUND", Message: "API key not found", StatusCode: http.StatusNotFound}
)

// SPAC errors.
var (
	ErrSPACNotFound           = &AppError{Code: "SPAC_NOT_FOUND", Message: "SPAC not found", StatusCode: http.StatusNotFound}
	ErrDuplicateTicker        = &AppError{Code: "DUPLICATE_TICKER", Message: "A SPAC with this ticker already exists", StatusCode: http.StatusConflict}
	ErrDeadlineBeforeIPO      = &AppError{Code: "DEADLINE_BEFORE_IPO", Message: "Deadline date must not precede the IPO date", StatusCode: http.StatusBadRequest}
	ErrInvalidPhaseTransition = &AppError{Code: "INVALID_PHASE_TRANSITION", Message: "SPAC phase can only advance forward", StatusCode: http.StatusConflict}
	ErrInvalidStatusChange    = &AppError{Code: "INVALID_STATUS_TRANSITION", Message: "SPAC status transition is not allowed", StatusCode: http.StatusConflict}
	ErrSPACTerminal           = &AppError{Code: "SPAC_TERMINAL", Message: "SPAC is completed or liquidated", StatusCode: http.StatusConflict}
	ErrInvalidRedemptionRate  = &AppError{Code: "INVALID_REDEMPTION_RATE", Message: "Redemption rate must be a fraction between 0 and 1", StatusCode: http.StatusBadRequest}
)

// Target and pipeline errors.
var (
	ErrTargetNotFound         = &AppError{Code: "TARGET_NOT_FOUND", Message: "Target not found", StatusCode: http.StatusNotFound}
	ErrInvalidStageTransition = &AppError{Code: "INVALID_STAGE_TRANSITION", Message: "Deal stage transition is not allowed", StatusCode: http.StatusConflict}
	ErrPassReasonRequired     = &AppError{Code: "PASS_REASON_REQUIRED", Message: "A reason is required when passing on a target", StatusCode: http.StatusBadRequest}
)

// Document, filing and task errors.
var (
	ErrDocumentNotFound = &AppError{Code: "DOCUMENT_NOT_FOUND", Message: "Document not found", StatusCode: http.StatusNotFound}
	ErrNotAFolder       = &AppError{Code: "NOT_A_FOLDER", Message: "Parent document is not a folder", StatusCode: http.StatusBadRequest}
	ErrFolderVersioning = &AppError{Code: "FOLDER_NOT_VERSIONED", Message: "Folders do not have versions", StatusCode: http.StatusBadRequest}
	ErrNotLatestVersion = &AppError{Code: "NOT_LATEST_VERSION", Message: "Only the latest version of a document can be changed", StatusCode: http.StatusConflict}
	ErrFilingNotFound   = &AppError{Code: "FILING_NOT_FOUND", Message: "Filing not found", StatusCode: http.StatusNotFound}
	ErrDuplicateFiling  = &AppError{Code: "DUPLICATE_FILING", Message: "A filing with this accession number already exists", StatusCode: http.StatusConflict}
	ErrDueBeforeFiled   = &AppError{Code: "DUE_BEFORE_FILED", Message: "Due date must not precede the filed date", StatusCode: http.StatusBadRequest}
	ErrTaskNotFound     = &AppError{Code: "TASK_NOT_FOUND", Message: "Task not found", StatusCode: http.StatusNotFound}
)

// Scoring, PIPE, cap table and trust errors.
var (
	ErrScoringUnavailable = &AppError{Code: "SCORING_UNAVAILABLE", Message: "The scoring service is unavailable", StatusCode: http.StatusBadGateway}
	ErrInvalidScore       = &AppError{Code: "INVALID_SCORE", Message: "Scores must be between 0 and 100", StatusCode: http.StatusBadRequest}
	ErrInvestorNotFound   = &AppError{Code: "INVESTOR_NOT_FOUND", Message: "PIPE investor not found", StatusCode: http.StatusNotFound}
	ErrShareClassNotFound = &AppError{Code: "SHARE_CLASS_NOT_FOUND", Message: "Share class not found", StatusCode: http.StatusNotFound}
	ErrHolderSumMismatch  = &AppError{Code: "HOLDER_SUM_MISMATCH", Message: "Holder shares must sum to the class total", StatusCode: http.StatusBadRequest}
	ErrInsufficientTrust  = &AppError{Code: "INSUFFICIENT_TRUST", Message: "Trust balance is insufficient for this withdrawal", StatusCode: http.StatusBadRequest}
	ErrEdgarUnavailable   = &AppError{Code: "EDGAR_UNAVAILABLE", Message: "SEC EDGAR could not be reached", StatusCode: http.StatusBadGateway}
	ErrMissingCIK         = &AppError{Code: "MISSING_CIK", Message: "SPAC has no SEC CIK configured", StatusCode: http.StatusBadRequest}
)

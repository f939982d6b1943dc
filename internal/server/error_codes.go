package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument      = 1000
	ErrCodeRequestTooLarge      = 1002
	ErrCodeInvalidQuery         = 1003
	ErrCodeInvalidPONumber      = 1004
	ErrCodeInvalidDate          = 1005
	ErrCodeInvalidKind          = 1006
	ErrCodeInvalidExtension     = 1007
	ErrCodeInvalidFilename      = 1008
	ErrCodeMissingRequired      = 1009
	ErrCodeInvalidExportFormat  = 1011
	ErrCodeConfirmationRequired = 1012

	// Domain state (2xxx)
	ErrCodeRecordNotFound        = 2001
	ErrCodeAttachmentUnavailable = 2003
	ErrCodePOExists              = 2101
	ErrCodeConflict              = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeExportFailed   = 4003
	ErrCodeAttachmentIO   = 4004
	ErrCodeHistoryFailure = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeRecordNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}

package response

// ErrCode is a typed error code enum for consistent error identification.
// Its message is what the student sees in the flash area.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginRequired      ErrCode = "LOGIN_REQUIRED"

	// ─── Registration ──────────────────────────────────────────────────
	ErrValidation         ErrCode = "VALIDATION_ERROR"
	ErrRollNoNotNumeric   ErrCode = "ROLL_NO_NOT_NUMERIC"
	ErrRollNoOutOfRange   ErrCode = "ROLL_NO_OUT_OF_RANGE"
	ErrRollNoTaken        ErrCode = "ROLL_NO_TAKEN"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrPasswordTooLong    ErrCode = "PASSWORD_TOO_LONG"
	ErrUnsupportedPhoto   ErrCode = "UNSUPPORTED_PHOTO"
	ErrInvalidSnapshot    ErrCode = "INVALID_SNAPSHOT"
	ErrFileTooLarge       ErrCode = "FILE_TOO_LARGE"
	ErrRateLimitExceeded  ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrResultUnavailable  ErrCode = "RESULT_UNAVAILABLE"
	ErrAssessmentFinished ErrCode = "ASSESSMENT_FINISHED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password"
	case ErrLoginRequired:
		return "Please log in to continue"

	case ErrValidation:
		return "Please fill in all required fields"
	case ErrRollNoNotNumeric:
		return "Code must be a number"
	case ErrRollNoOutOfRange:
		return "Code must be between 100 and 110"
	case ErrRollNoTaken:
		return "This code is already used"
	case ErrEmailTaken:
		return "Email already registered"
	case ErrPasswordTooLong:
		return "Password must be at most 72 bytes"
	case ErrUnsupportedPhoto:
		return "Upload JPG or PNG photo only"
	case ErrInvalidSnapshot:
		return "Invalid snapshot payload"
	case ErrFileTooLarge:
		return "File is too large"
	case ErrRateLimitExceeded:
		return "Too many attempts. Please try again later."
	case ErrResultUnavailable:
		return "Complete the assessment to see your result"
	case ErrAssessmentFinished:
		return "You have already completed the assessment"

	case ErrInternal:
		return "Something went wrong. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

package domain

// Display messages produced at the API boundary.
const (
	// MsgGenericError is used when no more specific message applies.
	MsgGenericError = "An error occurred"
	// MsgCaptionFailed is shown when a failure carries no message at all.
	MsgCaptionFailed = "Failed to generate caption"
	// MsgNotImage mirrors the server's content-type rejection.
	MsgNotImage = "File must be an image (JPG, PNG, etc.)"
	// MsgEmptyFile mirrors the server's empty-upload rejection.
	MsgEmptyFile = "Empty file uploaded"
)

// CaptionError carries a single human-readable message for display.
// The underlying cause is kept only so callers can detect cancellation.
type CaptionError struct {
	Message string
	cause   error
}

// NewCaptionError builds a CaptionError around an optional cause.
func NewCaptionError(message string, cause error) *CaptionError {
	return &CaptionError{Message: message, cause: cause}
}

func (e *CaptionError) Error() string {
	return e.Message
}

func (e *CaptionError) Unwrap() error {
	return e.cause
}

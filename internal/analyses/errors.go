package analyses

import "errors"

var (
	// ErrInvalidInput wraps submissions rejected before any model call.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// User-facing messages.
const (
	MsgMissingFiles   = "Missing required files"
	MsgExtractFailed  = "Failed to extract text from files"
	MsgTooLittleText  = "The uploaded files contain too little text to analyze"
	MsgAnalyzeFailed  = "Failed to analyze resume. Please try again with different files."
	MsgNotFound       = "Analysis not found"
	MsgInvalidPayload = "Invalid request body"
)

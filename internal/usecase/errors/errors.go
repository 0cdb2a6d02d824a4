package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Meeting errors
var (
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrMeetingNotStarted  = errors.New("meeting has not started")
	ErrMeetingLeftEarly   = errors.New("meeting was left early")
	ErrAlreadyCompleted   = errors.New("meeting already completed")
	ErrInvalidTopicIndex  = errors.New("topic index out of range")
	ErrTopicMismatch      = errors.New("topic id does not match the current topic")
	ErrCursorMismatch     = errors.New("cursor does not belong to this meeting")
	ErrMeetingBusy        = errors.New("another operation is in progress for this meeting")
	ErrInvalidMeetingKind = errors.New("invalid meeting kind")
)

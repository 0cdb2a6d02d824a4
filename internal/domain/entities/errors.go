package entities

import "errors"

// Domain errors
var (
	// Message construction errors
	ErrEmptyMessageContent = errors.New("message content is empty")
	ErrUnknownParticipant  = errors.New("participant is not on the meeting roster")
	ErrInvalidSentiment    = errors.New("sentiment is not a recognized value")

	// Log errors
	ErrMeetingRetired = errors.New("meeting is retired and accepts no further messages")
	ErrCursorMismatch = errors.New("cursor message belongs to a different meeting")

	// Validation errors
	ErrInvalidMeetingKind = errors.New("invalid meeting kind")
	ErrNoTopics           = errors.New("meeting must have at least one topic")
	ErrNoParticipants     = errors.New("meeting must have at least one participant")
)

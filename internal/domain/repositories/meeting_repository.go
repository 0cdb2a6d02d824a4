package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access. It is the
// only surface touching the persistent store; no business logic lives behind
// it.
type MeetingRepository interface {
	// Create persists a new meeting with an empty conversation log
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// UpdateFields applies an atomic field-map update to one meeting document
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// AppendMessages atomically appends one or more messages to the end of the
	// meeting's conversation log, assigning sequence numbers that continue from
	// the log's current length. Appends to one meeting are serialized; retired
	// meetings reject appends with entities.ErrMeetingRetired.
	AppendMessages(ctx context.Context, meetingID uuid.UUID, messages []*entities.ConversationMessage) ([]*entities.ConversationMessage, error)

	// MessagesSince reads the conversation log relative to a cursor message
	// id. A nil cursor returns the entire history in order. A cursor that is
	// not found returns the entire history (the caller is idempotent against
	// resends). A cursor owned by a different meeting fails with
	// entities.ErrCursorMismatch.
	MessagesSince(ctx context.Context, meetingID uuid.UUID, cursor *uuid.UUID) ([]*entities.ConversationMessage, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	"github.com/careerquest-team/careerquest-backend/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create persists a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&meeting).Error

	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateFields applies an atomic field-map update to one meeting
func (r *meetingRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendMessages appends messages to the meeting's conversation log inside a
// single transaction. The meeting row is locked for the duration so that the
// next sequence number is read and the rows inserted without gaps or
// collisions even if two writers race on the same meeting.
func (r *meetingRepository) AppendMessages(ctx context.Context, meetingID uuid.UUID, messages []*entities.ConversationMessage) ([]*entities.ConversationMessage, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meeting entities.Meeting
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", meetingID).
			First(&meeting).Error; err != nil {
			return err
		}

		if meeting.IsRetired() {
			return entities.ErrMeetingRetired
		}

		var next int64
		if err := tx.Model(&entities.ConversationMessage{}).
			Where("meeting_id = ?", meetingID).
			Count(&next).Error; err != nil {
			return err
		}

		for i, msg := range messages {
			msg.MeetingID = meetingID
			msg.SequenceNumber = int(next) + i
		}

		return tx.Create(messages).Error
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MessagesSince reads the log relative to a cursor message id. Stale cursors
// degrade to the full history rather than erroring; a cursor from another
// meeting's log is a hard mismatch.
func (r *meetingRepository) MessagesSince(ctx context.Context, meetingID uuid.UUID, cursor *uuid.UUID) ([]*entities.ConversationMessage, error) {
	var exists int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", meetingID).
		Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	afterSequence := -1
	if cursor != nil {
		var cursorMsg entities.ConversationMessage
		err := r.db.WithContext(ctx).
			Where("id = ?", *cursor).
			First(&cursorMsg).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Stale cursor: resend everything, the client dedupes.
		case err != nil:
			return nil, err
		case cursorMsg.MeetingID != meetingID:
			return nil, entities.ErrCursorMismatch
		default:
			afterSequence = cursorMsg.SequenceNumber
		}
	}

	var messages []*entities.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND sequence_number > ?", meetingID, afterSequence).
		Order("sequence_number ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

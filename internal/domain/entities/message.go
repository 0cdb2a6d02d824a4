package entities

import (
	"time"

	"github.com/google/uuid"
)

// MessageType is the closed set of conversation message variants.
type MessageType string

const (
	// MessageTypeTopicIntro marks the start of a topic. System-authored.
	MessageTypeTopicIntro MessageType = "topic_intro"
	// MessageTypeAIResponse is an utterance by an AI participant.
	MessageTypeAIResponse MessageType = "ai_response"
	// MessageTypePlayerResponse is an utterance by the human player.
	MessageTypePlayerResponse MessageType = "player_response"
	// MessageTypePlayerTurn is a sentinel signaling the floor has passed to
	// the human. It carries no content beyond its position in the log.
	MessageTypePlayerTurn MessageType = "player_turn"
	// MessageTypeSystem is a free-form operational note.
	MessageTypeSystem MessageType = "system"
)

// Sentiment tags an AI response with its conversational tone.
type Sentiment string

const (
	SentimentPositive     Sentiment = "positive"
	SentimentNeutral      Sentiment = "neutral"
	SentimentConstructive Sentiment = "constructive"
	SentimentChallenging  Sentiment = "challenging"
)

// IsValid reports whether the sentiment is one of the closed enumeration.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentConstructive, SentimentChallenging:
		return true
	}
	return false
}

// ConversationMessage is one entry in a meeting's append-only conversation
// log. SequenceNumber is assigned by the log itself at append time, never by
// the caller; appends to one meeting are serialized so numbers are strictly
// increasing and gap-free from zero.
//
// Per-variant required fields are enforced by the constructors below, not at
// read time.
type ConversationMessage struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	MeetingID       uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_meeting_sequence,priority:1" json:"meeting_id"`
	Type            MessageType `gorm:"type:varchar(20);not null" json:"type"`
	ParticipantID   *string     `gorm:"type:varchar(64)" json:"participant_id,omitempty"`
	ParticipantName *string     `gorm:"type:varchar(255)" json:"participant_name,omitempty"`
	Sentiment       *Sentiment  `gorm:"type:varchar(20)" json:"sentiment,omitempty"`
	Content         string      `gorm:"type:text" json:"content"`
	SequenceNumber  int         `gorm:"not null;uniqueIndex:idx_meeting_sequence,priority:2" json:"sequence_number"`
	CreatedAt       time.Time   `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for ConversationMessage
func (ConversationMessage) TableName() string {
	return "conversation_messages"
}

// NewTopicIntroMessage builds the system-authored message that opens a topic.
func NewTopicIntroMessage(meetingID uuid.UUID, topic Topic) (*ConversationMessage, error) {
	if topic.Question == "" {
		return nil, ErrEmptyMessageContent
	}
	return &ConversationMessage{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Type:      MessageTypeTopicIntro,
		Content:   topic.Question,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewAIResponseMessage builds an utterance authored by a roster participant.
func NewAIResponseMessage(meetingID uuid.UUID, p Participant, content string, sentiment Sentiment) (*ConversationMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessageContent
	}
	if p.ID == "" {
		return nil, ErrUnknownParticipant
	}
	if !sentiment.IsValid() {
		return nil, ErrInvalidSentiment
	}
	pid, name, s := p.ID, p.Name, sentiment
	return &ConversationMessage{
		ID:              uuid.New(),
		MeetingID:       meetingID,
		Type:            MessageTypeAIResponse,
		ParticipantID:   &pid,
		ParticipantName: &name,
		Sentiment:       &s,
		Content:         content,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// NewPlayerResponseMessage builds an utterance authored by the human player.
func NewPlayerResponseMessage(meetingID uuid.UUID, content string) (*ConversationMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessageContent
	}
	return &ConversationMessage{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Type:      MessageTypePlayerResponse,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewPlayerTurnMessage builds the sentinel that passes the floor to the human.
func NewPlayerTurnMessage(meetingID uuid.UUID) *ConversationMessage {
	return &ConversationMessage{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Type:      MessageTypePlayerTurn,
		CreatedAt: time.Now().UTC(),
	}
}

// NewSystemMessage builds a free-form operational note.
func NewSystemMessage(meetingID uuid.UUID, content string) (*ConversationMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessageContent
	}
	return &ConversationMessage{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Type:      MessageTypeSystem,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsPlayerAuthored reports whether the message was written by the human.
func (m *ConversationMessage) IsPlayerAuthored() bool {
	return m.Type == MessageTypePlayerResponse
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingKind categorizes the workplace scenario a meeting simulates.
// The kind drives completion thresholds and conversational tone.
type MeetingKind string

const (
	MeetingKindStandup                 MeetingKind = "standup"
	MeetingKindOneOnOne                MeetingKind = "one_on_one"
	MeetingKindProjectReview           MeetingKind = "project_review"
	MeetingKindStakeholderPresentation MeetingKind = "stakeholder_presentation"
	MeetingKindPerformanceReview       MeetingKind = "performance_review"
	MeetingKindFeedbackSession         MeetingKind = "feedback_session"
)

// ValidMeetingKinds lists every supported meeting kind.
var ValidMeetingKinds = []MeetingKind{
	MeetingKindStandup,
	MeetingKindOneOnOne,
	MeetingKindProjectReview,
	MeetingKindStakeholderPresentation,
	MeetingKindPerformanceReview,
	MeetingKindFeedbackSession,
}

// IsValid reports whether the kind is one of the closed enumeration.
func (k MeetingKind) IsValid() bool {
	for _, v := range ValidMeetingKinds {
		if k == v {
			return true
		}
	}
	return false
}

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusLeftEarly  MeetingStatus = "left_early"
)

// MeetingPriority represents the priority tier of a meeting
type MeetingPriority string

const (
	MeetingPriorityLow      MeetingPriority = "low"
	MeetingPriorityNormal   MeetingPriority = "normal"
	MeetingPriorityHigh     MeetingPriority = "high"
	MeetingPriorityCritical MeetingPriority = "critical"
)

// PersonalityArchetype is the closed set of AI participant personalities.
type PersonalityArchetype string

const (
	ArchetypeSupportive     PersonalityArchetype = "supportive"
	ArchetypeAnalytical     PersonalityArchetype = "analytical"
	ArchetypeDirect         PersonalityArchetype = "direct"
	ArchetypeCollaborative  PersonalityArchetype = "collaborative"
	ArchetypeChallenging    PersonalityArchetype = "challenging"
	ArchetypeEnthusiastic   PersonalityArchetype = "enthusiastic"
	ArchetypePragmatic      PersonalityArchetype = "pragmatic"
	ArchetypeDetailOriented PersonalityArchetype = "detail_oriented"
)

// ValidArchetypes lists every supported participant personality.
var ValidArchetypes = []PersonalityArchetype{
	ArchetypeSupportive,
	ArchetypeAnalytical,
	ArchetypeDirect,
	ArchetypeCollaborative,
	ArchetypeChallenging,
	ArchetypeEnthusiastic,
	ArchetypePragmatic,
	ArchetypeDetailOriented,
}

// IsValid reports whether the archetype is one of the closed enumeration.
func (a PersonalityArchetype) IsValid() bool {
	for _, v := range ValidArchetypes {
		if a == v {
			return true
		}
	}
	return false
}

// Topic is one discussion unit within a meeting, advanced one at a time.
type Topic struct {
	ID                string   `json:"id"`
	Question          string   `json:"question"`
	Context           string   `json:"context,omitempty"`
	ExpectedPoints    []string `json:"expected_points,omitempty"`
	DiscussionPrompts []string `json:"discussion_prompts,omitempty"`
}

// Participant is an AI-driven attendee of a meeting.
type Participant struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Role      string               `json:"role"`
	Archetype PersonalityArchetype `json:"archetype"`
	Color     string               `json:"color,omitempty"`
}

// Meeting represents one simulated workplace meeting instance.
//
// The conversation history lives in its own table (ConversationMessage) and is
// append-only for the lifetime of the meeting; topics and participants are
// immutable after creation and stored as JSONB.
type Meeting struct {
	ID                uuid.UUID                       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID         uuid.UUID                       `gorm:"type:uuid;not null;index" json:"session_id"`
	Kind              MeetingKind                     `gorm:"type:varchar(40);not null;index" json:"kind"`
	Title             string                          `gorm:"type:varchar(255);not null" json:"title"`
	Objective         string                          `gorm:"type:text" json:"objective,omitempty"`
	Topics            datatypes.JSONSlice[Topic]      `gorm:"type:jsonb;default:'[]'" json:"topics"`
	Participants      datatypes.JSONSlice[Participant] `gorm:"type:jsonb;default:'[]'" json:"participants"`
	EstimatedMinutes  int                             `gorm:"default:30" json:"estimated_minutes"`
	Priority          MeetingPriority                 `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	Status            MeetingStatus                   `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	CurrentTopicIndex int                             `gorm:"default:0" json:"current_topic_index"`
	IsPlayerTurn      bool                            `gorm:"default:false" json:"is_player_turn"`
	CreatedAt         time.Time                       `gorm:"default:now()" json:"created_at"`
	StartedAt         *time.Time                      `json:"started_at,omitempty"`
	CompletedAt       *time.Time                      `json:"completed_at,omitempty"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// IsInProgress checks if the meeting is currently running
func (m *Meeting) IsInProgress() bool {
	return m.Status == MeetingStatusInProgress
}

// IsRetired checks if the meeting has reached a terminal state. Retired
// meetings reject any further message appends or state transitions.
func (m *Meeting) IsRetired() bool {
	return m.Status == MeetingStatusCompleted || m.Status == MeetingStatusLeftEarly
}

// TopicAt returns the topic at the given 0-based index.
func (m *Meeting) TopicAt(index int) (Topic, bool) {
	if index < 0 || index >= len(m.Topics) {
		return Topic{}, false
	}
	return m.Topics[index], true
}

// CurrentTopic returns the topic under the cursor.
func (m *Meeting) CurrentTopic() (Topic, bool) {
	return m.TopicAt(m.CurrentTopicIndex)
}

// RemainingTopics counts topics after the current cursor position.
func (m *Meeting) RemainingTopics() int {
	remaining := len(m.Topics) - m.CurrentTopicIndex - 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ParticipantByID looks up a participant on the roster.
func (m *Meeting) ParticipantByID(id string) (Participant, bool) {
	for _, p := range m.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// ElapsedSince returns how long the meeting has been running at the given
// instant. Zero before the meeting starts.
func (m *Meeting) ElapsedSince(now time.Time) time.Duration {
	if m.StartedAt == nil {
		return 0
	}
	return now.Sub(*m.StartedAt)
}

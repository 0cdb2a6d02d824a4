package meeting

// TopicRequest describes one discussion topic in a meeting creation request.
type TopicRequest struct {
	Question          string   `json:"question" validate:"required"`
	Context           string   `json:"context,omitempty"`
	ExpectedPoints    []string `json:"expected_points,omitempty"`
	DiscussionPrompts []string `json:"discussion_prompts,omitempty"`
}

// ParticipantRequest describes one AI participant in a meeting creation request.
type ParticipantRequest struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role,omitempty"`
	Archetype string `json:"archetype" validate:"required,archetype"`
	Color     string `json:"color,omitempty"`
}

// CreateMeetingRequest represents a request to create a meeting
type CreateMeetingRequest struct {
	SessionID        string               `json:"session_id" validate:"required,uuid"`
	Kind             string               `json:"kind" validate:"required,meeting_kind"`
	Title            string               `json:"title" validate:"required,max=255"`
	Objective        string               `json:"objective,omitempty"`
	Topics           []TopicRequest       `json:"topics" validate:"required,min=1,dive"`
	Participants     []ParticipantRequest `json:"participants" validate:"required,min=1,dive"`
	EstimatedMinutes int                  `json:"estimated_minutes,omitempty" validate:"omitempty,min=1,max=480"`
	Priority         string               `json:"priority,omitempty" validate:"omitempty,oneof=low normal high critical"`
}

// StartTopicRequest carries no body; the topic index rides in the path.

// PlayerResponseRequest represents the player's contribution to the current topic
type PlayerResponseRequest struct {
	TopicID string `json:"topic_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

package meeting

import "time"

// TopicResponse describes one topic of a meeting
type TopicResponse struct {
	ID                string   `json:"id"`
	Question          string   `json:"question"`
	Context           string   `json:"context,omitempty"`
	ExpectedPoints    []string `json:"expected_points,omitempty"`
	DiscussionPrompts []string `json:"discussion_prompts,omitempty"`
}

// ParticipantResponse describes one AI participant of a meeting
type ParticipantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Archetype string `json:"archetype"`
	Color     string `json:"color,omitempty"`
}

// MeetingResponse represents meeting state in API responses
type MeetingResponse struct {
	ID                string                `json:"id"`
	SessionID         string                `json:"session_id"`
	Kind              string                `json:"kind"`
	Title             string                `json:"title"`
	Objective         string                `json:"objective,omitempty"`
	Topics            []TopicResponse       `json:"topics"`
	Participants      []ParticipantResponse `json:"participants"`
	EstimatedMinutes  int                   `json:"estimated_minutes"`
	Priority          string                `json:"priority"`
	Status            string                `json:"status"`
	CurrentTopicIndex int                   `json:"current_topic_index"`
	IsPlayerTurn      bool                  `json:"is_player_turn"`
	CreatedAt         time.Time             `json:"created_at"`
	StartedAt         *time.Time            `json:"started_at,omitempty"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
}

// MessageResponse represents one conversation log entry
type MessageResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ParticipantID   *string   `json:"participant_id,omitempty"`
	ParticipantName *string   `json:"participant_name,omitempty"`
	Sentiment       *string   `json:"sentiment,omitempty"`
	Content         string    `json:"content,omitempty"`
	SequenceNumber  int       `json:"sequence_number"`
	CreatedAt       time.Time `json:"created_at"`
}

// CompletionResponse surfaces the engine's completion decision to the client
type CompletionResponse struct {
	TopicComplete     bool   `json:"topic_complete"`
	MeetingComplete   bool   `json:"meeting_complete"`
	Reason            string `json:"reason,omitempty"`
	TransitionMessage string `json:"transition_message,omitempty"`
	Confidence        string `json:"confidence"`
}

// TopicDiscussionResponse is the result of starting a topic
type TopicDiscussionResponse struct {
	Meeting  *MeetingResponse   `json:"meeting"`
	Messages []*MessageResponse `json:"messages"`
}

// PlayerResponseResponse is the result of processing a player turn
type PlayerResponseResponse struct {
	Meeting    *MeetingResponse    `json:"meeting"`
	Messages   []*MessageResponse  `json:"messages"`
	Completion *CompletionResponse `json:"completion"`
}

// MessagesResponse answers a polling query
type MessagesResponse struct {
	Messages          []*MessageResponse `json:"messages"`
	IsPlayerTurn      bool               `json:"is_player_turn"`
	Status            string             `json:"status"`
	CurrentTopicIndex int                `json:"current_topic_index"`
}

package entities

// DialogueStage tags which generation task is being requested.
type DialogueStage string

const (
	// StageInitialDiscussion asks participants to open a freshly started topic.
	StageInitialDiscussion DialogueStage = "initial_discussion"
	// StageResponseToPlayer asks participants to react to the player's latest
	// utterance.
	StageResponseToPlayer DialogueStage = "response_to_player"
)

// DialogueRequest is the context bundle handed to the content generation
// service: everything the model needs to produce in-character turns.
type DialogueRequest struct {
	Meeting         *Meeting
	Topic           Topic
	Stage           DialogueStage
	PlayerUtterance string
	RecentHistory   []*ConversationMessage
}

// DialogueTurn is one generated participant utterance before it becomes a
// conversation message.
type DialogueTurn struct {
	ParticipantID string    `json:"participant_id"`
	Content       string    `json:"content"`
	Sentiment     Sentiment `json:"sentiment"`
}

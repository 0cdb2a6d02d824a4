package entities

// ConfidenceTier grades how strongly the completion signals agree.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// CompletionAnalysis is the structured evidence behind a completion decision.
type CompletionAnalysis struct {
	PlayerContributions int  `json:"player_contributions"`
	TotalContributions  int  `json:"total_contributions"`
	KeyPointsTouched    int  `json:"key_points_touched"`
	Repetition          bool `json:"repetition"`
	TimePressure        bool `json:"time_pressure"`
}

// CompletionDecision is the completion policy's verdict for the current topic
// and the meeting as a whole. It is ephemeral: the booleans land back on the
// meeting document, the transition message goes to the player.
type CompletionDecision struct {
	TopicComplete     bool               `json:"topic_complete"`
	MeetingComplete   bool               `json:"meeting_complete"`
	Reason            string             `json:"reason"`
	TransitionMessage string             `json:"transition_message"`
	Confidence        ConfidenceTier     `json:"confidence"`
	Analysis          CompletionAnalysis `json:"analysis"`
}

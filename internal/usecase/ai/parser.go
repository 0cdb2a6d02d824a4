package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

// Parser handles parsing and validation of Groq dialogue responses. The model
// is asked for structured JSON but occasionally wraps it in markdown fences
// or pads it with prose; extraction failure is treated as retryable by the
// caller.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// dialogueResponse is the JSON shape the model is prompted to return.
type dialogueResponse struct {
	Turns []struct {
		ParticipantID string `json:"participant_id"`
		Content       string `json:"content"`
		Sentiment     string `json:"sentiment"`
	} `json:"turns"`
}

// ParseDialogueResponse parses the model output into validated dialogue
// turns. Every turn must reference a roster participant, carry non-empty
// content and a recognized sentiment tag.
func (p *Parser) ParseDialogueResponse(raw string, roster []entities.Participant) ([]entities.DialogueTurn, error) {
	raw = extractJSON(raw)

	var resp dialogueResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if len(resp.Turns) == 0 {
		return nil, fmt.Errorf("no turns in response")
	}

	onRoster := make(map[string]bool, len(roster))
	for _, participant := range roster {
		onRoster[participant.ID] = true
	}

	turns := make([]entities.DialogueTurn, 0, len(resp.Turns))
	for i, turn := range resp.Turns {
		if !onRoster[turn.ParticipantID] {
			return nil, fmt.Errorf("turn %d references unknown participant %q", i, turn.ParticipantID)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return nil, fmt.Errorf("turn %d has empty content", i)
		}

		sentiment := entities.Sentiment(strings.ToLower(strings.TrimSpace(turn.Sentiment)))
		if sentiment == "" {
			sentiment = entities.SentimentNeutral
		}
		if !sentiment.IsValid() {
			return nil, fmt.Errorf("turn %d has unrecognized sentiment %q", i, turn.Sentiment)
		}

		turns = append(turns, entities.DialogueTurn{
			ParticipantID: turn.ParticipantID,
			Content:       strings.TrimSpace(turn.Content),
			Sentiment:     sentiment,
		})
	}

	return turns, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	// Models sometimes pad the object with prose on either side.
	if start := strings.Index(content, "{"); start > 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	return strings.TrimSpace(content)
}

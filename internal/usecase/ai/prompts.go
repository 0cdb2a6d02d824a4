package ai

import (
	"fmt"
	"strings"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

const dialogueSystemPrompt = `You are the dialogue engine for a simulated workplace meeting in a career game.
You write short, natural utterances for the AI-driven participants listed below.
Respond ONLY with a JSON object of this exact shape, no prose and no markdown:
{"turns":[{"participant_id":"...","content":"...","sentiment":"positive|neutral|constructive|challenging"}]}
Each turn must use a participant_id from the roster. Keep each utterance to 1-3 sentences and stay in character for the participant's personality.`

// buildDialoguePrompt assembles the context bundle into chat messages for the
// generation service.
func buildDialoguePrompt(req *entities.DialogueRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Meeting kind: %s\n", req.Meeting.Kind)
	fmt.Fprintf(&b, "Meeting title: %s\n", req.Meeting.Title)
	if req.Meeting.Objective != "" {
		fmt.Fprintf(&b, "Objective: %s\n", req.Meeting.Objective)
	}

	fmt.Fprintf(&b, "\nCurrent topic: %s\n", req.Topic.Question)
	if req.Topic.Context != "" {
		fmt.Fprintf(&b, "Topic context: %s\n", req.Topic.Context)
	}
	if len(req.Topic.ExpectedPoints) > 0 {
		fmt.Fprintf(&b, "Points worth steering toward: %s\n", strings.Join(req.Topic.ExpectedPoints, "; "))
	}

	b.WriteString("\nParticipants:\n")
	for _, p := range req.Meeting.Participants {
		fmt.Fprintf(&b, "- id=%s name=%s role=%s personality=%s\n", p.ID, p.Name, p.Role, p.Archetype)
	}

	if len(req.RecentHistory) > 0 {
		b.WriteString("\nRecent conversation:\n")
		b.WriteString(formatHistory(req.RecentHistory))
	}

	switch req.Stage {
	case entities.StageInitialDiscussion:
		b.WriteString("\nThe topic was just introduced. Write 1-3 turns where participants open the discussion")
		if len(req.Topic.DiscussionPrompts) > 0 {
			fmt.Fprintf(&b, ", drawing on these starters: %s", strings.Join(req.Topic.DiscussionPrompts, "; "))
		}
		b.WriteString(". End by inviting the player to weigh in.\n")
	case entities.StageResponseToPlayer:
		fmt.Fprintf(&b, "\nThe player just said: %q\n", req.PlayerUtterance)
		b.WriteString("Write 1-2 turns where participants react to the player's point.\n")
	}

	return b.String()
}

// formatHistory renders recent log entries as speaker-labeled lines.
func formatHistory(messages []*entities.ConversationMessage) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Type {
		case entities.MessageTypeTopicIntro:
			fmt.Fprintf(&b, "[topic] %s\n", msg.Content)
		case entities.MessageTypeAIResponse:
			name := "participant"
			if msg.ParticipantName != nil {
				name = *msg.ParticipantName
			}
			fmt.Fprintf(&b, "%s: %s\n", name, msg.Content)
		case entities.MessageTypePlayerResponse:
			fmt.Fprintf(&b, "player: %s\n", msg.Content)
		}
	}
	return b.String()
}

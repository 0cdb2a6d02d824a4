package meeting

import (
	"fmt"
	"strings"
	"time"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

// kindThresholds holds the per-kind completion tuning: how many player
// contributions a topic needs before it may close, and the wall-clock ceiling
// past which the meeting is forced to conclude.
type kindThresholds struct {
	minPlayerTurns int
	timeCeiling    time.Duration
}

var thresholdsByKind = map[entities.MeetingKind]kindThresholds{
	entities.MeetingKindStandup:                 {minPlayerTurns: 2, timeCeiling: 15 * time.Minute},
	entities.MeetingKindOneOnOne:                {minPlayerTurns: 3, timeCeiling: 30 * time.Minute},
	entities.MeetingKindProjectReview:           {minPlayerTurns: 3, timeCeiling: 45 * time.Minute},
	entities.MeetingKindStakeholderPresentation: {minPlayerTurns: 3, timeCeiling: 40 * time.Minute},
	entities.MeetingKindPerformanceReview:       {minPlayerTurns: 4, timeCeiling: 60 * time.Minute},
	entities.MeetingKindFeedbackSession:         {minPlayerTurns: 3, timeCeiling: 30 * time.Minute},
}

var defaultThresholds = kindThresholds{minPlayerTurns: 2, timeCeiling: 30 * time.Minute}

func thresholdsFor(kind entities.MeetingKind) kindThresholds {
	if th, ok := thresholdsByKind[kind]; ok {
		return th
	}
	return defaultThresholds
}

// CompletionPolicy decides, from conversation shape and elapsed time, whether
// the current topic should end and whether the whole meeting should end. It
// is advisory: the orchestrator owns the actual transition.
type CompletionPolicy struct{}

// NewCompletionPolicy creates a new completion policy
func NewCompletionPolicy() *CompletionPolicy {
	return &CompletionPolicy{}
}

// Evaluate produces a completion decision for the current topic. topicMessages
// is the sub-sequence of the log belonging to the current topic (from its
// intro message onward); remaining counts topics after the current one.
func (p *CompletionPolicy) Evaluate(m *entities.Meeting, topic entities.Topic, topicMessages []*entities.ConversationMessage, remaining int, elapsed time.Duration) entities.CompletionDecision {
	th := thresholdsFor(m.Kind)

	analysis := analyzeTopic(topic, topicMessages)
	analysis.TimePressure = elapsed > th.timeCeiling

	minMet := analysis.PlayerContributions >= th.minPlayerTurns
	justStarted := analysis.TotalContributions < 3
	pointsUnaddressed := len(topic.ExpectedPoints) > 0 && analysis.KeyPointsTouched == 0

	topicComplete := minMet && !justStarted && !pointsUnaddressed
	meetingComplete := false
	forced := false

	if analysis.TimePressure {
		// Time ceiling overrides everything, including an incomplete topic.
		topicComplete = true
		meetingComplete = true
		forced = true
	} else if topicComplete && remaining == 0 {
		meetingComplete = true
	}

	decision := entities.CompletionDecision{
		TopicComplete:     topicComplete,
		MeetingComplete:   meetingComplete,
		Confidence:        p.confidence(analysis, th, minMet, forced),
		Analysis:          analysis,
		Reason:            p.reason(analysis, th, minMet, justStarted, pointsUnaddressed, forced),
		TransitionMessage: p.transitionMessage(topicComplete, meetingComplete, forced),
	}
	return decision
}

// confidence grades how strongly the independent signals agree.
func (p *CompletionPolicy) confidence(a entities.CompletionAnalysis, th kindThresholds, minMet, forced bool) entities.ConfidenceTier {
	if forced && !minMet {
		// Forced close against an unfinished topic: signals conflict.
		return entities.ConfidenceLow
	}

	signals := 0
	if minMet {
		signals++
	}
	if a.KeyPointsTouched > 0 {
		signals++
	}
	if !a.TimePressure {
		signals++
	}

	switch {
	case signals >= 3:
		return entities.ConfidenceHigh
	case signals == 2:
		return entities.ConfidenceMedium
	default:
		return entities.ConfidenceLow
	}
}

func (p *CompletionPolicy) reason(a entities.CompletionAnalysis, th kindThresholds, minMet, justStarted, pointsUnaddressed, forced bool) string {
	switch {
	case forced:
		return fmt.Sprintf("elapsed time exceeded the %s ceiling for this meeting kind", th.timeCeiling)
	case justStarted:
		return "the discussion has only just started"
	case !minMet:
		return fmt.Sprintf("player has contributed %d of the %d turns this meeting kind expects", a.PlayerContributions, th.minPlayerTurns)
	case pointsUnaddressed:
		return "none of the expected discussion points have been touched yet"
	default:
		return fmt.Sprintf("player contributed %d turns and %d expected points were touched", a.PlayerContributions, a.KeyPointsTouched)
	}
}

// transitionMessage is the player-facing line shown when a topic or the
// meeting closes. A forced conclusion must acknowledge the time constraint.
func (p *CompletionPolicy) transitionMessage(topicComplete, meetingComplete, forced bool) string {
	switch {
	case forced:
		return "We're up against the clock, so let's wrap the meeting here. Thanks everyone for the discussion."
	case meetingComplete:
		return "That covers everything on our agenda today. Thanks everyone, good meeting."
	case topicComplete:
		return "Good discussion on that one. Let's move on to the next item."
	default:
		return "Let's dig into this a bit more before we move on."
	}
}

// analyzeTopic extracts the structured evidence the policy reasons over.
func analyzeTopic(topic entities.Topic, messages []*entities.ConversationMessage) entities.CompletionAnalysis {
	analysis := entities.CompletionAnalysis{}

	var transcript strings.Builder
	var playerTexts []string

	for _, msg := range messages {
		switch msg.Type {
		case entities.MessageTypePlayerResponse:
			analysis.PlayerContributions++
			analysis.TotalContributions++
			playerTexts = append(playerTexts, normalizeText(msg.Content))
			transcript.WriteString(strings.ToLower(msg.Content))
			transcript.WriteString(" ")
		case entities.MessageTypeAIResponse:
			analysis.TotalContributions++
			transcript.WriteString(strings.ToLower(msg.Content))
			transcript.WriteString(" ")
		}
	}

	analysis.KeyPointsTouched = countPointsTouched(topic.ExpectedPoints, transcript.String())
	analysis.Repetition = hasRepetition(playerTexts)
	return analysis
}

// countPointsTouched checks how many expected points have at least one
// significant word present in the transcript. Guidance-level matching only,
// not mechanical grading.
func countPointsTouched(expectedPoints []string, transcript string) int {
	touched := 0
	for _, point := range expectedPoints {
		for _, word := range strings.Fields(strings.ToLower(point)) {
			word = strings.Trim(word, ".,!?;:'\"")
			if len(word) <= 3 {
				continue
			}
			if strings.Contains(transcript, word) {
				touched++
				break
			}
		}
	}
	return touched
}

// hasRepetition flags the player saying the same thing twice.
func hasRepetition(playerTexts []string) bool {
	seen := make(map[string]bool, len(playerTexts))
	for _, text := range playerTexts {
		if text == "" {
			continue
		}
		if seen[text] {
			return true
		}
		seen[text] = true
	}
	return false
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// messagesForCurrentTopic returns the tail of the history belonging to the
// topic under discussion: everything from the last topic_intro onward.
func messagesForCurrentTopic(history []*entities.ConversationMessage) []*entities.ConversationMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type == entities.MessageTypeTopicIntro {
			return history[i:]
		}
	}
	return history
}

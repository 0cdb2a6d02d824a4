package meeting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
)

func policyMeeting(kind entities.MeetingKind) *entities.Meeting {
	return &entities.Meeting{
		ID:           uuid.New(),
		Kind:         kind,
		Participants: testParticipants(),
	}
}

func introMsg(t *testing.T, meetingID uuid.UUID, topic entities.Topic) *entities.ConversationMessage {
	t.Helper()
	msg, err := entities.NewTopicIntroMessage(meetingID, topic)
	require.NoError(t, err)
	return msg
}

func playerMsg(t *testing.T, meetingID uuid.UUID, content string) *entities.ConversationMessage {
	t.Helper()
	msg, err := entities.NewPlayerResponseMessage(meetingID, content)
	require.NoError(t, err)
	return msg
}

func aiMsg(t *testing.T, meetingID uuid.UUID, content string) *entities.ConversationMessage {
	t.Helper()
	msg, err := entities.NewAIResponseMessage(meetingID, testParticipants()[0], content, entities.SentimentNeutral)
	require.NoError(t, err)
	return msg
}

func TestEvaluate_JustStartedTopicStaysOpen(t *testing.T) {
	policy := NewCompletionPolicy()
	m := policyMeeting(entities.MeetingKindStandup)
	topic := entities.Topic{Question: "How is the rollout going?"}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		playerMsg(t, m.ID, "fine"),
	}

	decision := policy.Evaluate(m, topic, msgs, 2, 5*time.Minute)
	assert.False(t, decision.TopicComplete)
	assert.False(t, decision.MeetingComplete)
	assert.Contains(t, decision.Reason, "just started")
}

func TestEvaluate_ThresholdMetClosesTopic(t *testing.T) {
	policy := NewCompletionPolicy()
	m := policyMeeting(entities.MeetingKindStandup)
	topic := entities.Topic{
		Question:       "How is the rollout going?",
		ExpectedPoints: []string{"deployment status"},
	}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		aiMsg(t, m.ID, "How far along is the deployment?"),
		playerMsg(t, m.ID, "Deployment is at eighty percent."),
		aiMsg(t, m.ID, "Nice progress."),
		playerMsg(t, m.ID, "We expect to finish tomorrow."),
	}

	decision := policy.Evaluate(m, topic, msgs, 1, 5*time.Minute)
	assert.True(t, decision.TopicComplete)
	assert.False(t, decision.MeetingComplete, "topics remain")
	assert.Equal(t, entities.ConfidenceHigh, decision.Confidence)
	assert.Equal(t, 2, decision.Analysis.PlayerContributions)
	assert.Equal(t, 1, decision.Analysis.KeyPointsTouched)
}

func TestEvaluate_LastTopicClosesMeeting(t *testing.T) {
	policy := NewCompletionPolicy()
	m := policyMeeting(entities.MeetingKindStandup)
	topic := entities.Topic{Question: "Anything blocking you?"}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		aiMsg(t, m.ID, "Any blockers on your side?"),
		playerMsg(t, m.ID, "No blockers, the pipeline is green."),
		playerMsg(t, m.ID, "One flaky test but it is quarantined."),
	}

	decision := policy.Evaluate(m, topic, msgs, 0, 5*time.Minute)
	assert.True(t, decision.TopicComplete)
	assert.True(t, decision.MeetingComplete)
}

func TestEvaluate_TimeCeilingForcesClose(t *testing.T) {
	policy := NewCompletionPolicy()
	m := policyMeeting(entities.MeetingKindStandup)
	topic := entities.Topic{Question: "How is the rollout going?"}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		playerMsg(t, m.ID, "fine"),
	}

	decision := policy.Evaluate(m, topic, msgs, 3, time.Hour)
	assert.True(t, decision.TopicComplete)
	assert.True(t, decision.MeetingComplete)
	assert.True(t, decision.Analysis.TimePressure)
	// A forced close against an unfinished topic is a low-confidence call, and
	// the player-facing message must own up to the time constraint.
	assert.Equal(t, entities.ConfidenceLow, decision.Confidence)
	assert.Contains(t, decision.TransitionMessage, "clock")
}

func TestEvaluate_KindsHaveDifferentThresholds(t *testing.T) {
	policy := NewCompletionPolicy()
	topic := entities.Topic{Question: "How has the quarter gone for you?"}

	msgs := func(m *entities.Meeting) []*entities.ConversationMessage {
		return []*entities.ConversationMessage{
			introMsg(t, m.ID, topic),
			aiMsg(t, m.ID, "Walk me through your quarter."),
			playerMsg(t, m.ID, "Shipped the billing revamp."),
			playerMsg(t, m.ID, "Mentored two new joiners."),
		}
	}

	// Two player turns satisfy a standup...
	standup := policyMeeting(entities.MeetingKindStandup)
	assert.True(t, policy.Evaluate(standup, topic, msgs(standup), 1, time.Minute).TopicComplete)

	// ...but not a performance review, which wants four.
	review := policyMeeting(entities.MeetingKindPerformanceReview)
	assert.False(t, policy.Evaluate(review, topic, msgs(review), 1, time.Minute).TopicComplete)
}

func TestEvaluate_UnknownKindUsesDefaults(t *testing.T) {
	policy := NewCompletionPolicy()
	m := policyMeeting("offsite")
	topic := entities.Topic{Question: "Thoughts?"}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		aiMsg(t, m.ID, "What do you think?"),
		playerMsg(t, m.ID, "I think we should do it."),
		playerMsg(t, m.ID, "And soon."),
	}

	decision := policy.Evaluate(m, topic, msgs, 0, time.Minute)
	assert.True(t, decision.TopicComplete)
}

func TestAnalyzeTopic_DetectsRepetition(t *testing.T) {
	m := policyMeeting(entities.MeetingKindStandup)
	topic := entities.Topic{Question: "Status?"}

	msgs := []*entities.ConversationMessage{
		introMsg(t, m.ID, topic),
		playerMsg(t, m.ID, "All good here."),
		playerMsg(t, m.ID, "  all   GOOD here. "),
	}

	analysis := analyzeTopic(topic, msgs)
	assert.True(t, analysis.Repetition)
	assert.Equal(t, 2, analysis.PlayerContributions)
}

func TestCountPointsTouched(t *testing.T) {
	points := []string{"budget approval", "timeline risks", "ok"}
	transcript := "we talked about the budget and the approval process at length"

	// "ok" has no significant words; "timeline risks" never came up.
	assert.Equal(t, 1, countPointsTouched(points, transcript))
	assert.Equal(t, 0, countPointsTouched(points, ""))
	assert.Equal(t, 0, countPointsTouched(nil, transcript))
}

func TestMessagesForCurrentTopic(t *testing.T) {
	m := policyMeeting(entities.MeetingKindStandup)
	first := entities.Topic{Question: "Topic one?"}
	second := entities.Topic{Question: "Topic two?"}

	history := []*entities.ConversationMessage{
		introMsg(t, m.ID, first),
		playerMsg(t, m.ID, "answer one"),
		introMsg(t, m.ID, second),
		playerMsg(t, m.ID, "answer two"),
	}

	current := messagesForCurrentTopic(history)
	require.Len(t, current, 2)
	assert.Equal(t, "Topic two?", current[0].Content)
}

package meeting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	usecaseErrors "github.com/careerquest-team/careerquest-backend/internal/usecase/errors"
)

// memoryMeetingRepo mirrors the store contract: serialized appends with
// log-assigned sequence numbers, retired meetings rejecting writes, cursor
// reads with stale-cursor recovery.
type memoryMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
	logs     map[uuid.UUID][]*entities.ConversationMessage

	// failNext makes the next n calls of any mutating method fail with a
	// transient error, to exercise the retry path.
	failNext int
}

func newMemoryMeetingRepo() *memoryMeetingRepo {
	return &memoryMeetingRepo{
		meetings: make(map[uuid.UUID]*entities.Meeting),
		logs:     make(map[uuid.UUID][]*entities.ConversationMessage),
	}
}

var errTransient = errors.New("transient store failure")

func (r *memoryMeetingRepo) transientFailure() bool {
	if r.failNext > 0 {
		r.failNext--
		return true
	}
	return false
}

func (r *memoryMeetingRepo) Create(_ context.Context, meeting *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transientFailure() {
		return errTransient
	}
	clone := *meeting
	r.meetings[meeting.ID] = &clone
	return nil
}

func (r *memoryMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memoryMeetingRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transientFailure() {
		return errTransient
	}
	m, ok := r.meetings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			m.Status = value.(entities.MeetingStatus)
		case "is_player_turn":
			m.IsPlayerTurn = value.(bool)
		case "current_topic_index":
			m.CurrentTopicIndex = value.(int)
		case "started_at":
			t := value.(time.Time)
			m.StartedAt = &t
		case "completed_at":
			t := value.(time.Time)
			m.CompletedAt = &t
		}
	}
	return nil
}

func (r *memoryMeetingRepo) AppendMessages(_ context.Context, meetingID uuid.UUID, messages []*entities.ConversationMessage) ([]*entities.ConversationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transientFailure() {
		return nil, errTransient
	}
	m, ok := r.meetings[meetingID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if m.IsRetired() {
		return nil, entities.ErrMeetingRetired
	}
	next := len(r.logs[meetingID])
	for i, msg := range messages {
		msg.SequenceNumber = next + i
	}
	r.logs[meetingID] = append(r.logs[meetingID], messages...)
	return messages, nil
}

func (r *memoryMeetingRepo) MessagesSince(_ context.Context, meetingID uuid.UUID, cursor *uuid.UUID) ([]*entities.ConversationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[meetingID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	log := r.logs[meetingID]
	if cursor == nil {
		return append([]*entities.ConversationMessage{}, log...), nil
	}
	for _, msg := range log {
		if msg.ID == *cursor {
			return append([]*entities.ConversationMessage{}, log[msg.SequenceNumber+1:]...), nil
		}
	}
	// A cursor found in some other meeting's log is a caller bug, not a
	// stale-cursor recovery case.
	for otherID, otherLog := range r.logs {
		if otherID == meetingID {
			continue
		}
		for _, msg := range otherLog {
			if msg.ID == *cursor {
				return nil, entities.ErrCursorMismatch
			}
		}
	}
	return append([]*entities.ConversationMessage{}, log...), nil
}

// stubGenerator returns canned turns, or errors to exercise the fallback path.
type stubGenerator struct {
	turns []entities.DialogueTurn
	err   error
	calls int
}

func (g *stubGenerator) GenerateTurns(_ context.Context, _ *entities.DialogueRequest) ([]entities.DialogueTurn, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.turns, nil
}

func testTopics(n int) []entities.Topic {
	topics := make([]entities.Topic, 0, n)
	for i := 0; i < n; i++ {
		topics = append(topics, entities.Topic{
			Question:       "What is the status of workstream " + string(rune('A'+i)) + "?",
			ExpectedPoints: []string{"progress update", "blockers"},
		})
	}
	return topics
}

func testParticipants() []entities.Participant {
	return []entities.Participant{
		{ID: "p1", Name: "Dana", Role: "Tech Lead", Archetype: entities.ArchetypeAnalytical},
		{ID: "p2", Name: "Morgan", Role: "PM", Archetype: entities.ArchetypeSupportive},
	}
}

func newTestService(repo *memoryMeetingRepo, gen DialogueGenerator, requireDepth bool) *MeetingService {
	return NewMeetingService(repo, gen, NewCompletionPolicy(), NewKeyedMutex(), zap.NewNop(), requireDepth)
}

func createTestMeeting(t *testing.T, svc *MeetingService, topics int) *entities.Meeting {
	t.Helper()
	m, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		SessionID:    uuid.New(),
		Kind:         entities.MeetingKindStandup,
		Title:        "Daily standup",
		Topics:       testTopics(topics),
		Participants: testParticipants(),
	})
	require.NoError(t, err)
	return m
}

func defaultTurns() []entities.DialogueTurn {
	return []entities.DialogueTurn{
		{ParticipantID: "p1", Content: "I think the progress update looks solid.", Sentiment: entities.SentimentPositive},
	}
}

func TestCreateMeeting_Validation(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{}, false)
	ctx := context.Background()

	_, err := svc.CreateMeeting(ctx, CreateMeetingInput{
		SessionID:    uuid.New(),
		Kind:         "brainstorm",
		Topics:       testTopics(1),
		Participants: testParticipants(),
	})
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidMeetingKind)

	_, err = svc.CreateMeeting(ctx, CreateMeetingInput{
		SessionID:    uuid.New(),
		Kind:         entities.MeetingKindStandup,
		Participants: testParticipants(),
	})
	assert.ErrorIs(t, err, entities.ErrNoTopics)

	_, err = svc.CreateMeeting(ctx, CreateMeetingInput{
		SessionID: uuid.New(),
		Kind:      entities.MeetingKindStandup,
		Topics:    testTopics(1),
	})
	assert.ErrorIs(t, err, entities.ErrNoParticipants)
}

func TestCreateMeeting_Defaults(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{}, false)

	m := createTestMeeting(t, svc, 2)
	assert.Equal(t, entities.MeetingStatusScheduled, m.Status)
	assert.Equal(t, entities.MeetingPriorityNormal, m.Priority)
	assert.Equal(t, 30, m.EstimatedMinutes)
	assert.False(t, m.IsPlayerTurn)
	for _, topic := range m.Topics {
		assert.NotEmpty(t, topic.ID)
	}
}

func TestStartTopicDiscussion_OpensTopicAndPassesFloor(t *testing.T) {
	repo := newMemoryMeetingRepo()
	gen := &stubGenerator{turns: defaultTurns()}
	svc := newTestService(repo, gen, false)

	m := createTestMeeting(t, svc, 3)
	out, err := svc.StartTopicDiscussion(context.Background(), m.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, entities.MeetingStatusInProgress, out.Meeting.Status)
	assert.NotNil(t, out.Meeting.StartedAt)
	assert.True(t, out.Meeting.IsPlayerTurn)

	require.Len(t, out.Messages, 3)
	assert.Equal(t, entities.MessageTypeTopicIntro, out.Messages[0].Type)
	assert.Equal(t, entities.MessageTypeAIResponse, out.Messages[1].Type)
	assert.Equal(t, entities.MessageTypePlayerTurn, out.Messages[2].Type)
}

func TestStartTopicDiscussion_InvalidIndex(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{turns: defaultTurns()}, false)
	m := createTestMeeting(t, svc, 2)

	_, err := svc.StartTopicDiscussion(context.Background(), m.ID, 5)
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidTopicIndex)

	_, err = svc.StartTopicDiscussion(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingNotFound)
}

func TestProcessPlayerResponse_RequiresStartedMeeting(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{turns: defaultTurns()}, false)
	m := createTestMeeting(t, svc, 2)

	_, err := svc.ProcessPlayerResponse(context.Background(), m.ID, m.Topics[0].ID, "hello")
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingNotStarted)
}

func TestProcessPlayerResponse_TopicMismatch(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{turns: defaultTurns()}, false)
	m := createTestMeeting(t, svc, 2)

	_, err := svc.StartTopicDiscussion(context.Background(), m.ID, 0)
	require.NoError(t, err)

	_, err = svc.ProcessPlayerResponse(context.Background(), m.ID, m.Topics[1].ID, "wrong topic")
	assert.ErrorIs(t, err, usecaseErrors.ErrTopicMismatch)
}

func TestProcessPlayerResponse_EmptyContent(t *testing.T) {
	svc := newTestService(newMemoryMeetingRepo(), &stubGenerator{turns: defaultTurns()}, false)
	m := createTestMeeting(t, svc, 1)

	_, err := svc.StartTopicDiscussion(context.Background(), m.ID, 0)
	require.NoError(t, err)

	_, err = svc.ProcessPlayerResponse(context.Background(), m.ID, m.Topics[0].ID, "")
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidInput)
}

// One response per topic walks a three-topic meeting to completion under the
// default advancement mode.
func TestMeetingFlow_ThreeTopicsOneResponseEach(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 3)

	for i := 0; i < 3; i++ {
		started, err := svc.StartTopicDiscussion(ctx, m.ID, i)
		require.NoError(t, err)
		topic, ok := started.Meeting.TopicAt(i)
		require.True(t, ok)

		out, err := svc.ProcessPlayerResponse(ctx, m.ID, topic.ID, "Here is my progress update, no blockers.")
		require.NoError(t, err)

		if i < 2 {
			assert.False(t, out.Decision.MeetingComplete, "topic %d should not end the meeting", i)
			assert.Equal(t, i+1, out.Meeting.CurrentTopicIndex)
		} else {
			assert.True(t, out.Decision.MeetingComplete)
			assert.Equal(t, entities.MeetingStatusCompleted, out.Meeting.Status)
			assert.NotNil(t, out.Meeting.CompletedAt)
			assert.False(t, out.Meeting.IsPlayerTurn)
		}
	}

	// Retired meetings reject every further operation.
	_, err := svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[2].ID, "one more thing")
	assert.ErrorIs(t, err, usecaseErrors.ErrAlreadyCompleted)
	_, err = svc.StartTopicDiscussion(ctx, m.ID, 0)
	assert.ErrorIs(t, err, usecaseErrors.ErrAlreadyCompleted)
	_, err = svc.LeaveMeeting(ctx, m.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrAlreadyCompleted)
}

// Sequence numbers are gap-free from zero across every operation touching the log.
func TestConversationLog_SequenceNumbersGapFree(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 2)
	_, err := svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)
	_, err = svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "update one")
	require.NoError(t, err)
	_, err = svc.StartTopicDiscussion(ctx, m.ID, 1)
	require.NoError(t, err)

	out, err := svc.GetMessagesSince(ctx, m.ID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out.Messages)
	for i, msg := range out.Messages {
		assert.Equal(t, i, msg.SequenceNumber)
	}
}

// A generator that always fails degrades to fallback content instead of
// stalling the meeting.
func TestGenerationFailure_FallbackKeepsFlowMoving(t *testing.T) {
	repo := newMemoryMeetingRepo()
	gen := &stubGenerator{err: errors.New("model unavailable")}
	svc := newTestService(repo, gen, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 1)
	out, err := svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.True(t, out.Meeting.IsPlayerTurn)

	var aiMessages []*entities.ConversationMessage
	for _, msg := range out.Messages {
		if msg.Type == entities.MessageTypeAIResponse {
			aiMessages = append(aiMessages, msg)
		}
	}
	require.Len(t, aiMessages, 1, "fallback should produce exactly one AI message")
	assert.Equal(t, "p1", *aiMessages[0].ParticipantID)
	assert.Equal(t, entities.SentimentNeutral, *aiMessages[0].Sentiment)

	resp, err := svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "still works without a model")
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusCompleted, resp.Meeting.Status)
}

// Turns referencing participants not on the roster are dropped; if everything
// is dropped the fallback substitutes.
func TestUnknownParticipantTurnsAreDropped(t *testing.T) {
	repo := newMemoryMeetingRepo()
	gen := &stubGenerator{turns: []entities.DialogueTurn{
		{ParticipantID: "ghost", Content: "I should not exist", Sentiment: entities.SentimentNeutral},
		{ParticipantID: "p2", Content: "I'm on the roster.", Sentiment: entities.SentimentPositive},
	}}
	svc := newTestService(repo, gen, false)

	out, err := svc.StartTopicDiscussion(context.Background(), createTestMeeting(t, svc, 1).ID, 0)
	require.NoError(t, err)

	for _, msg := range out.Messages {
		if msg.Type == entities.MessageTypeAIResponse {
			assert.Equal(t, "p2", *msg.ParticipantID)
		}
	}
}

func TestGetMessagesSince_CursorSemantics(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 1)
	started, err := svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)

	full, err := svc.GetMessagesSince(ctx, m.ID, nil)
	require.NoError(t, err)
	require.Len(t, full.Messages, len(started.Messages))
	assert.True(t, full.IsPlayerTurn)
	assert.Equal(t, entities.MeetingStatusInProgress, full.Status)

	// Poll from the first message: everything after it comes back.
	cursor := full.Messages[0].ID
	tailOut, err := svc.GetMessagesSince(ctx, m.ID, &cursor)
	require.NoError(t, err)
	assert.Len(t, tailOut.Messages, len(full.Messages)-1)

	// A stale cursor falls back to full history so the client recovers.
	stale := uuid.New()
	recovered, err := svc.GetMessagesSince(ctx, m.ID, &stale)
	require.NoError(t, err)
	assert.Len(t, recovered.Messages, len(full.Messages))

	// A cursor that belongs to a different meeting is rejected.
	other := createTestMeeting(t, svc, 1)
	_, err = svc.StartTopicDiscussion(ctx, other.ID, 0)
	require.NoError(t, err)
	otherOut, err := svc.GetMessagesSince(ctx, other.ID, nil)
	require.NoError(t, err)
	foreign := otherOut.Messages[0].ID
	_, err = svc.GetMessagesSince(ctx, m.ID, &foreign)
	assert.ErrorIs(t, err, usecaseErrors.ErrCursorMismatch)
}

func TestLeaveMeeting_IsOneWay(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 2)

	// Leaving before the first topic starts is rejected.
	_, err := svc.LeaveMeeting(ctx, m.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingNotStarted)

	_, err = svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)

	left, err := svc.LeaveMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusLeftEarly, left.Status)
	assert.NotNil(t, left.CompletedAt)
	assert.False(t, left.IsPlayerTurn)

	// The departure note is the final log entry, appended before retirement.
	out, err := svc.GetMessagesSince(ctx, m.ID, nil)
	require.NoError(t, err)
	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, entities.MessageTypeSystem, last.Type)

	// No operation revives a left meeting.
	_, err = svc.LeaveMeeting(ctx, m.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingLeftEarly)
	_, err = svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "wait, I'm back")
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingLeftEarly)
	_, err = svc.StartTopicDiscussion(ctx, m.ID, 1)
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingLeftEarly)
}

// Past the kind's time ceiling the meeting concludes mid-agenda and the
// transition message acknowledges the clock.
func TestTimeCeiling_ForcesConclusion(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 5)

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }

	_, err := svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)

	// Standups cap at 15 minutes.
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	out, err := svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "quick update")
	require.NoError(t, err)

	assert.True(t, out.Decision.MeetingComplete)
	assert.True(t, out.Decision.Analysis.TimePressure)
	assert.Equal(t, entities.MeetingStatusCompleted, out.Meeting.Status)
	assert.Contains(t, out.Decision.TransitionMessage, "clock")

	var systemNotes int
	for _, msg := range out.Messages {
		if msg.Type == entities.MessageTypeSystem {
			systemNotes++
			assert.Contains(t, msg.Content, "clock")
		}
	}
	assert.Equal(t, 1, systemNotes)
}

// Depth mode keeps a topic open until the policy's thresholds are met.
func TestRequireTopicDepth_KeepsTopicOpen(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, true)
	ctx := context.Background()

	m := createTestMeeting(t, svc, 2)
	_, err := svc.StartTopicDiscussion(ctx, m.ID, 0)
	require.NoError(t, err)

	out, err := svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "brief note")
	require.NoError(t, err)

	assert.False(t, out.Decision.MeetingComplete)
	assert.Equal(t, 0, out.Meeting.CurrentTopicIndex, "topic should stay open")
	assert.True(t, out.Meeting.IsPlayerTurn, "floor should pass back to the player")

	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, entities.MessageTypePlayerTurn, last.Type)

	// A second, substantive contribution satisfies the standup threshold.
	out, err = svc.ProcessPlayerResponse(ctx, m.ID, m.Topics[0].ID, "Here is the full progress update and the blockers we hit.")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Meeting.CurrentTopicIndex)
}

// Transient store failures are retried and absorbed; the caller never sees them.
func TestStoreRetry_AbsorbsTransientFailures(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)

	repo.failNext = 2
	m := createTestMeeting(t, svc, 1)

	stored, err := svc.GetMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, stored.ID)
}

func TestStoreRetry_ExhaustionSurfaces(t *testing.T) {
	repo := newMemoryMeetingRepo()
	svc := newTestService(repo, &stubGenerator{turns: defaultTurns()}, false)

	// More failures than the store profile's attempt budget.
	repo.failNext = 10
	_, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		SessionID:    uuid.New(),
		Kind:         entities.MeetingKindStandup,
		Title:        "Doomed",
		Topics:       testTopics(1),
		Participants: testParticipants(),
	})
	assert.ErrorIs(t, err, errTransient)
}

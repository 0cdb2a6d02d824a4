package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	"github.com/careerquest-team/careerquest-backend/internal/domain/repositories"
	usecaseErrors "github.com/careerquest-team/careerquest-backend/internal/usecase/errors"
	"github.com/careerquest-team/careerquest-backend/pkg/retry"
)

// historyWindow bounds how much recent conversation is handed to the
// generation service as context.
const historyWindow = 12

// DialogueGenerator produces AI participant turns for a context bundle. The
// implementation owns its own retry budget and fallback content; the
// orchestrator additionally degrades to a fallback turn if the generator
// errors anyway, so the flow never stalls on a broken generation call.
type DialogueGenerator interface {
	GenerateTurns(ctx context.Context, req *entities.DialogueRequest) ([]entities.DialogueTurn, error)
}

// Service is the engine's only entry point for the surrounding application.
type Service interface {
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error)
	GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)
	StartTopicDiscussion(ctx context.Context, meetingID uuid.UUID, topicIndex int) (*TopicDiscussionOutput, error)
	ProcessPlayerResponse(ctx context.Context, meetingID uuid.UUID, topicID string, content string) (*PlayerResponseOutput, error)
	GetMessagesSince(ctx context.Context, meetingID uuid.UUID, cursor *uuid.UUID) (*MessagesOutput, error)
	LeaveMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)
}

// MeetingService orchestrates the turn-taking state machine, the message log
// and the completion policy into the player-visible operations.
type MeetingService struct {
	meetingRepo       repositories.MeetingRepository
	dialogue          DialogueGenerator
	policy            *CompletionPolicy
	locks             Locker
	logger            *zap.Logger
	requireTopicDepth bool
	now               func() time.Time
}

// NewMeetingService creates a new meeting service. When requireTopicDepth is
// set, topic advancement is gated on the completion policy's per-kind
// thresholds instead of the default one-contribution advance.
func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	dialogue DialogueGenerator,
	policy *CompletionPolicy,
	locks Locker,
	logger *zap.Logger,
	requireTopicDepth bool,
) *MeetingService {
	return &MeetingService{
		meetingRepo:       meetingRepo,
		dialogue:          dialogue,
		policy:            policy,
		locks:             locks,
		logger:            logger,
		requireTopicDepth: requireTopicDepth,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	SessionID        uuid.UUID
	Kind             entities.MeetingKind
	Title            string
	Objective        string
	Topics           []entities.Topic
	Participants     []entities.Participant
	EstimatedMinutes int
	Priority         entities.MeetingPriority
}

// TopicDiscussionOutput is the result of starting a topic: the meeting's new
// state and every message appended by the operation.
type TopicDiscussionOutput struct {
	Meeting  *entities.Meeting
	Messages []*entities.ConversationMessage
}

// PlayerResponseOutput is the result of processing a player turn.
type PlayerResponseOutput struct {
	Meeting  *entities.Meeting
	Messages []*entities.ConversationMessage
	Decision entities.CompletionDecision
}

// MessagesOutput answers a polling query: new messages plus the state the
// client needs to render whose turn it is.
type MessagesOutput struct {
	Messages          []*entities.ConversationMessage
	IsPlayerTurn      bool
	Status            entities.MeetingStatus
	CurrentTopicIndex int
}

// CreateMeeting persists a new meeting in scheduled state with an empty
// conversation log. Called by game-progression logic, not by the player.
func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	if !input.Kind.IsValid() {
		return nil, usecaseErrors.ErrInvalidMeetingKind
	}
	if len(input.Topics) == 0 {
		return nil, entities.ErrNoTopics
	}
	if len(input.Participants) == 0 {
		return nil, entities.ErrNoParticipants
	}

	topics := make([]entities.Topic, len(input.Topics))
	copy(topics, input.Topics)
	for i := range topics {
		if topics[i].ID == "" {
			topics[i].ID = uuid.New().String()
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = entities.MeetingPriorityNormal
	}
	estimated := input.EstimatedMinutes
	if estimated <= 0 {
		estimated = 30
	}

	meeting := &entities.Meeting{
		ID:               uuid.New(),
		SessionID:        input.SessionID,
		Kind:             input.Kind,
		Title:            input.Title,
		Objective:        input.Objective,
		Topics:           topics,
		Participants:     input.Participants,
		EstimatedMinutes: estimated,
		Priority:         priority,
		Status:           entities.MeetingStatusScheduled,
		CreatedAt:        s.now(),
	}

	if err := s.storeDo(ctx, "create_meeting", meeting.ID, func() error {
		return s.meetingRepo.Create(ctx, meeting)
	}); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return meeting, nil
}

// GetMeeting retrieves a meeting by ID
func (s *MeetingService) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	return s.fetchMeeting(ctx, meetingID)
}

// StartTopicDiscussion moves the meeting onto the given topic: persists the
// cursor, appends the topic intro, generates the opening AI discussion and
// passes the floor to the player. The first start also transitions the
// meeting from scheduled to in_progress.
func (s *MeetingService) StartTopicDiscussion(ctx context.Context, meetingID uuid.UUID, topicIndex int) (*TopicDiscussionOutput, error) {
	release, err := s.locks.Acquire(ctx, meetingID)
	if err != nil {
		return nil, usecaseErrors.ErrMeetingBusy
	}
	defer release()

	meeting, err := s.fetchMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := guardActive(meeting); err != nil {
		return nil, err
	}

	topic, ok := meeting.TopicAt(topicIndex)
	if !ok {
		return nil, usecaseErrors.ErrInvalidTopicIndex
	}

	fields := map[string]interface{}{
		"current_topic_index": topicIndex,
		"is_player_turn":      false,
	}
	if meeting.Status == entities.MeetingStatusScheduled {
		startedAt := s.now()
		fields["status"] = entities.MeetingStatusInProgress
		fields["started_at"] = startedAt
		meeting.Status = entities.MeetingStatusInProgress
		meeting.StartedAt = &startedAt
	}
	if err := s.storeDo(ctx, "start_topic", meetingID, func() error {
		return s.meetingRepo.UpdateFields(ctx, meetingID, fields)
	}); err != nil {
		return nil, s.mapStoreErr(err)
	}
	meeting.CurrentTopicIndex = topicIndex
	meeting.IsPlayerTurn = false

	intro, err := entities.NewTopicIntroMessage(meetingID, topic)
	if err != nil {
		return nil, err
	}
	appended := []*entities.ConversationMessage{intro}
	if err := s.appendMessages(ctx, "start_topic", meetingID, appended); err != nil {
		return nil, err
	}

	turns := s.generateTurns(ctx, &entities.DialogueRequest{
		Meeting:       meeting,
		Topic:         topic,
		Stage:         entities.StageInitialDiscussion,
		RecentHistory: []*entities.ConversationMessage{intro},
	})

	batch := s.turnsToMessages(meeting, turns)
	batch = append(batch, entities.NewPlayerTurnMessage(meetingID))
	if err := s.appendMessages(ctx, "start_topic", meetingID, batch); err != nil {
		return nil, err
	}
	appended = append(appended, batch...)

	if err := s.storeDo(ctx, "start_topic", meetingID, func() error {
		return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{"is_player_turn": true})
	}); err != nil {
		return nil, s.mapStoreErr(err)
	}
	meeting.IsPlayerTurn = true

	return &TopicDiscussionOutput{Meeting: meeting, Messages: appended}, nil
}

// ProcessPlayerResponse records the player's contribution to the current
// topic, generates the AI reaction, and advances the state machine. When the
// cursor runs off the end of the topic list, or the completion policy forces
// a time-based close, the meeting completes.
func (s *MeetingService) ProcessPlayerResponse(ctx context.Context, meetingID uuid.UUID, topicID string, content string) (*PlayerResponseOutput, error) {
	release, err := s.locks.Acquire(ctx, meetingID)
	if err != nil {
		return nil, usecaseErrors.ErrMeetingBusy
	}
	defer release()

	meeting, err := s.fetchMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := guardActive(meeting); err != nil {
		return nil, err
	}
	if meeting.Status == entities.MeetingStatusScheduled {
		return nil, usecaseErrors.ErrMeetingNotStarted
	}

	topic, ok := meeting.CurrentTopic()
	if !ok {
		return nil, usecaseErrors.ErrInvalidTopicIndex
	}
	if topic.ID != topicID {
		return nil, usecaseErrors.ErrTopicMismatch
	}

	playerMsg, err := entities.NewPlayerResponseMessage(meetingID, content)
	if err != nil {
		return nil, usecaseErrors.ErrInvalidInput
	}
	appended := []*entities.ConversationMessage{playerMsg}
	if err := s.appendMessages(ctx, "player_response", meetingID, appended); err != nil {
		return nil, err
	}

	if err := s.storeDo(ctx, "player_response", meetingID, func() error {
		return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{"is_player_turn": false})
	}); err != nil {
		return nil, s.mapStoreErr(err)
	}
	meeting.IsPlayerTurn = false

	history, err := s.readHistory(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	turns := s.generateTurns(ctx, &entities.DialogueRequest{
		Meeting:         meeting,
		Topic:           topic,
		Stage:           entities.StageResponseToPlayer,
		PlayerUtterance: content,
		RecentHistory:   tail(history, historyWindow),
	})

	aiMsgs := s.turnsToMessages(meeting, turns)
	if err := s.appendMessages(ctx, "player_response", meetingID, aiMsgs); err != nil {
		return nil, err
	}
	appended = append(appended, aiMsgs...)
	history = append(history, aiMsgs...)

	decision := s.policy.Evaluate(
		meeting,
		topic,
		messagesForCurrentTopic(history),
		meeting.RemainingTopics(),
		meeting.ElapsedSince(s.now()),
	)

	advance := true
	if s.requireTopicDepth && !decision.TopicComplete {
		advance = false
	}
	forced := decision.MeetingComplete && decision.Analysis.TimePressure

	nextIndex := meeting.CurrentTopicIndex
	if advance {
		nextIndex++
	}
	meetingDone := forced || nextIndex >= len(meeting.Topics)

	if advance && !decision.TopicComplete {
		// One-shot advancement: a single contribution moves the topic along
		// even when the policy would like more depth.
		decision.TopicComplete = true
		decision.TransitionMessage = s.policy.transitionMessage(true, meetingDone, forced)
	}
	decision.MeetingComplete = meetingDone

	if meetingDone || advance {
		if note, noteErr := entities.NewSystemMessage(meetingID, decision.TransitionMessage); noteErr == nil {
			if err := s.appendMessages(ctx, "player_response", meetingID, []*entities.ConversationMessage{note}); err != nil {
				return nil, err
			}
			appended = append(appended, note)
		}
	}

	if meetingDone {
		if nextIndex > len(meeting.Topics) {
			nextIndex = len(meeting.Topics)
		}
		completedAt := s.now()
		if err := s.storeDo(ctx, "player_response", meetingID, func() error {
			return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{
				"status":              entities.MeetingStatusCompleted,
				"is_player_turn":      false,
				"current_topic_index": nextIndex,
				"completed_at":        completedAt,
			})
		}); err != nil {
			return nil, s.mapStoreErr(err)
		}
		meeting.Status = entities.MeetingStatusCompleted
		meeting.CompletedAt = &completedAt
		meeting.CurrentTopicIndex = nextIndex
		s.logger.Info("meeting completed",
			zap.String("meeting_id", meetingID.String()),
			zap.Bool("forced_by_time", forced),
			zap.String("confidence", string(decision.Confidence)),
		)
	} else if advance {
		if err := s.storeDo(ctx, "player_response", meetingID, func() error {
			return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{"current_topic_index": nextIndex})
		}); err != nil {
			return nil, s.mapStoreErr(err)
		}
		meeting.CurrentTopicIndex = nextIndex
	} else {
		// Depth mode kept the topic open: pass the floor back to the player.
		sentinel := entities.NewPlayerTurnMessage(meetingID)
		if err := s.appendMessages(ctx, "player_response", meetingID, []*entities.ConversationMessage{sentinel}); err != nil {
			return nil, err
		}
		appended = append(appended, sentinel)
		if err := s.storeDo(ctx, "player_response", meetingID, func() error {
			return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{"is_player_turn": true})
		}); err != nil {
			return nil, s.mapStoreErr(err)
		}
		meeting.IsPlayerTurn = true
	}

	return &PlayerResponseOutput{Meeting: meeting, Messages: appended, Decision: decision}, nil
}

// GetMessagesSince answers a polling query. A nil cursor returns the full
// history; an unrecognized cursor also returns the full history so an
// out-of-sync client recovers instead of stalling.
func (s *MeetingService) GetMessagesSince(ctx context.Context, meetingID uuid.UUID, cursor *uuid.UUID) (*MessagesOutput, error) {
	meeting, err := s.fetchMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	var messages []*entities.ConversationMessage
	err = s.storeDo(ctx, "get_messages", meetingID, func() error {
		var readErr error
		messages, readErr = s.meetingRepo.MessagesSince(ctx, meetingID, cursor)
		return readErr
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	return &MessagesOutput{
		Messages:          messages,
		IsPlayerTurn:      meeting.IsPlayerTurn,
		Status:            meeting.Status,
		CurrentTopicIndex: meeting.CurrentTopicIndex,
	}, nil
}

// LeaveMeeting transitions an in-progress meeting directly to left_early,
// freezing the history. Downstream reward calculation treats this differently
// from normal completion.
func (s *MeetingService) LeaveMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	release, err := s.locks.Acquire(ctx, meetingID)
	if err != nil {
		return nil, usecaseErrors.ErrMeetingBusy
	}
	defer release()

	meeting, err := s.fetchMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := guardActive(meeting); err != nil {
		return nil, err
	}
	if meeting.Status == entities.MeetingStatusScheduled {
		return nil, usecaseErrors.ErrMeetingNotStarted
	}

	// The note lands before the terminal status so the frozen-history
	// invariant holds.
	if note, noteErr := entities.NewSystemMessage(meetingID, "You left the meeting early."); noteErr == nil {
		if err := s.appendMessages(ctx, "leave_meeting", meetingID, []*entities.ConversationMessage{note}); err != nil {
			return nil, err
		}
	}

	completedAt := s.now()
	if err := s.storeDo(ctx, "leave_meeting", meetingID, func() error {
		return s.meetingRepo.UpdateFields(ctx, meetingID, map[string]interface{}{
			"status":         entities.MeetingStatusLeftEarly,
			"is_player_turn": false,
			"completed_at":   completedAt,
		})
	}); err != nil {
		return nil, s.mapStoreErr(err)
	}
	meeting.Status = entities.MeetingStatusLeftEarly
	meeting.IsPlayerTurn = false
	meeting.CompletedAt = &completedAt

	s.logger.Info("meeting left early", zap.String("meeting_id", meetingID.String()))
	return meeting, nil
}

// generateTurns asks the dialogue generator for participant turns and
// degrades to a deterministic fallback if it fails anyway. Generation
// failures are never fatal to the request.
func (s *MeetingService) generateTurns(ctx context.Context, req *entities.DialogueRequest) []entities.DialogueTurn {
	turns, err := s.dialogue.GenerateTurns(ctx, req)
	if err != nil || len(turns) == 0 {
		if err != nil {
			s.logger.Warn("dialogue generation failed, substituting fallback",
				zap.String("meeting_id", req.Meeting.ID.String()),
				zap.String("stage", string(req.Stage)),
				zap.Error(err),
			)
		}
		return fallbackTurns(req)
	}
	return turns
}

// turnsToMessages converts generated turns into log messages, dropping turns
// that reference participants not on the roster.
func (s *MeetingService) turnsToMessages(meeting *entities.Meeting, turns []entities.DialogueTurn) []*entities.ConversationMessage {
	messages := make([]*entities.ConversationMessage, 0, len(turns))
	for _, turn := range turns {
		participant, ok := meeting.ParticipantByID(turn.ParticipantID)
		if !ok {
			s.logger.Warn("dropping turn for unknown participant",
				zap.String("meeting_id", meeting.ID.String()),
				zap.String("participant_id", turn.ParticipantID),
			)
			continue
		}
		msg, err := entities.NewAIResponseMessage(meeting.ID, participant, turn.Content, turn.Sentiment)
		if err != nil {
			s.logger.Warn("dropping invalid generated turn",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		for _, turn := range fallbackTurns(&entities.DialogueRequest{Meeting: meeting}) {
			if participant, ok := meeting.ParticipantByID(turn.ParticipantID); ok {
				if msg, err := entities.NewAIResponseMessage(meeting.ID, participant, turn.Content, turn.Sentiment); err == nil {
					messages = append(messages, msg)
				}
			}
		}
	}
	return messages
}

// fallbackTurns is the deterministic substitute content used when the
// generation service is unavailable: exactly one bland utterance from the
// first roster participant, so the turn can still pass to the player.
func fallbackTurns(req *entities.DialogueRequest) []entities.DialogueTurn {
	if req.Meeting == nil || len(req.Meeting.Participants) == 0 {
		return nil
	}
	speaker := req.Meeting.Participants[0]
	content := "Thanks for sharing that. Let's keep things moving."
	if req.Stage == entities.StageInitialDiscussion {
		content = "Let's hear your thoughts on this one. How would you approach it?"
	}
	return []entities.DialogueTurn{{
		ParticipantID: speaker.ID,
		Content:       content,
		Sentiment:     entities.SentimentNeutral,
	}}
}

func (s *MeetingService) fetchMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	var meeting *entities.Meeting
	err := s.storeDo(ctx, "fetch_meeting", meetingID, func() error {
		var fetchErr error
		meeting, fetchErr = s.meetingRepo.FindByID(ctx, meetingID)
		return fetchErr
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return meeting, nil
}

func (s *MeetingService) appendMessages(ctx context.Context, op string, meetingID uuid.UUID, messages []*entities.ConversationMessage) error {
	err := s.storeDo(ctx, op, meetingID, func() error {
		_, appendErr := s.meetingRepo.AppendMessages(ctx, meetingID, messages)
		return appendErr
	})
	if err != nil {
		return s.mapStoreErr(err)
	}
	return nil
}

func (s *MeetingService) readHistory(ctx context.Context, meetingID uuid.UUID) ([]*entities.ConversationMessage, error) {
	var history []*entities.ConversationMessage
	err := s.storeDo(ctx, "read_history", meetingID, func() error {
		var readErr error
		history, readErr = s.meetingRepo.MessagesSince(ctx, meetingID, nil)
		return readErr
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return history, nil
}

// storeDo wraps a store operation with the store retry profile. Not-found and
// invariant violations are permanent; transient failures retry with backoff
// and escalate loudly after exhaustion.
func (s *MeetingService) storeDo(ctx context.Context, op string, meetingID uuid.UUID, fn func() error) error {
	attempts := 0
	err := retry.Do(ctx, retry.Store(), func() error {
		attempts++
		opErr := fn()
		if opErr == nil {
			return nil
		}
		if errors.Is(opErr, gorm.ErrRecordNotFound) ||
			errors.Is(opErr, entities.ErrMeetingRetired) ||
			errors.Is(opErr, entities.ErrCursorMismatch) {
			return retry.Permanent(opErr)
		}
		return opErr
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) &&
		!errors.Is(err, entities.ErrMeetingRetired) &&
		!errors.Is(err, entities.ErrCursorMismatch) {
		s.logger.Error("store operation failed after retries",
			zap.String("operation", op),
			zap.String("meeting_id", meetingID.String()),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
	}
	return err
}

func (s *MeetingService) mapStoreErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return usecaseErrors.ErrMeetingNotFound
	case errors.Is(err, entities.ErrCursorMismatch):
		return usecaseErrors.ErrCursorMismatch
	case errors.Is(err, entities.ErrMeetingRetired):
		return usecaseErrors.ErrAlreadyCompleted
	default:
		return err
	}
}

func guardActive(m *entities.Meeting) error {
	switch m.Status {
	case entities.MeetingStatusCompleted:
		return usecaseErrors.ErrAlreadyCompleted
	case entities.MeetingStatusLeftEarly:
		return usecaseErrors.ErrMeetingLeftEarly
	}
	return nil
}

func tail(messages []*entities.ConversationMessage, n int) []*entities.ConversationMessage {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	pkgai "github.com/careerquest-team/careerquest-backend/pkg/ai"
	"github.com/careerquest-team/careerquest-backend/pkg/retry"
)

// ChatCompleter is the transport to the content generation service.
// *pkgai.GroqClient satisfies it.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []pkgai.ChatMessage) (string, error)
}

// DialogueService turns a context bundle into validated participant turns. A
// malformed model response counts as a retryable failure; the retry budget is
// deliberately small so a flaky model call cannot hold up the player, and
// exhaustion surfaces as an error for the orchestrator to degrade on.
type DialogueService struct {
	chat   ChatCompleter
	parser *Parser
	logger *zap.Logger
}

// NewDialogueService creates a new dialogue service
func NewDialogueService(chat ChatCompleter, logger *zap.Logger) *DialogueService {
	return &DialogueService{
		chat:   chat,
		parser: NewParser(),
		logger: logger,
	}
}

// GenerateTurns requests AI participant utterances for the given stage.
func (s *DialogueService) GenerateTurns(ctx context.Context, req *entities.DialogueRequest) ([]entities.DialogueTurn, error) {
	messages := []pkgai.ChatMessage{
		{Role: "system", Content: dialogueSystemPrompt},
		{Role: "user", Content: buildDialoguePrompt(req)},
	}

	var turns []entities.DialogueTurn
	attempts := 0
	err := retry.Do(ctx, retry.Generation(), func() error {
		attempts++
		content, callErr := s.chat.ChatCompletion(ctx, messages)
		if callErr != nil {
			return fmt.Errorf("generation call failed: %w", callErr)
		}
		parsed, parseErr := s.parser.ParseDialogueResponse(content, req.Meeting.Participants)
		if parseErr != nil {
			// Malformed output is as retryable as a failed call.
			return parseErr
		}
		turns = parsed
		return nil
	})
	if err != nil {
		s.logger.Warn("dialogue generation exhausted its retry budget",
			zap.String("meeting_id", req.Meeting.ID.String()),
			zap.String("stage", string(req.Stage)),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("dialogue generated",
		zap.String("meeting_id", req.Meeting.ID.String()),
		zap.String("stage", string(req.Stage)),
		zap.Int("turns", len(turns)),
	)
	return turns, nil
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/careerquest-team/careerquest-backend/errors"
	meetingDTO "github.com/careerquest-team/careerquest-backend/internal/adapter/dto/meeting"
	"github.com/careerquest-team/careerquest-backend/internal/adapter/presenter"
	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	meetingUsecase "github.com/careerquest-team/careerquest-backend/internal/usecase/meeting"
)

// Meeting handles meeting conversation HTTP requests
type Meeting struct {
	meetingService meetingUsecase.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService meetingUsecase.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		meetingService: meetingService,
		logger:         logger,
	}
}

// CreateMeeting handles POST /meetings
func (h *Meeting) CreateMeeting(c echo.Context) error {
	var req meetingDTO.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("session_id must be a valid UUID"))
	}

	topics := make([]entities.Topic, 0, len(req.Topics))
	for _, t := range req.Topics {
		topics = append(topics, entities.Topic{
			Question:          t.Question,
			Context:           t.Context,
			ExpectedPoints:    t.ExpectedPoints,
			DiscussionPrompts: t.DiscussionPrompts,
		})
	}

	participants := make([]entities.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, entities.Participant{
			ID:        p.ID,
			Name:      p.Name,
			Role:      p.Role,
			Archetype: entities.PersonalityArchetype(p.Archetype),
			Color:     p.Color,
		})
	}

	input := meetingUsecase.CreateMeetingInput{
		SessionID:        sessionID,
		Kind:             entities.MeetingKind(req.Kind),
		Title:            req.Title,
		Objective:        req.Objective,
		Topics:           topics,
		Participants:     participants,
		EstimatedMinutes: req.EstimatedMinutes,
		Priority:         entities.MeetingPriority(req.Priority),
	}

	created, err := h.meetingService.CreateMeeting(c.Request().Context(), input)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusCreated, presenter.ToMeetingResponse(created))
}

// GetMeeting handles GET /meetings/:id
func (h *Meeting) GetMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	m, err := h.meetingService.GetMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusOK, presenter.ToMeetingResponse(m))
}

// StartTopicDiscussion handles POST /meetings/:id/topics/:index/start
func (h *Meeting) StartTopicDiscussion(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	topicIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil || topicIndex < 0 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("topic index must be a non-negative integer"))
	}

	out, err := h.meetingService.StartTopicDiscussion(c.Request().Context(), meetingID, topicIndex)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusOK, &meetingDTO.TopicDiscussionResponse{
		Meeting:  presenter.ToMeetingResponse(out.Meeting),
		Messages: presenter.ToMessageResponses(out.Messages),
	})
}

// ProcessPlayerResponse handles POST /meetings/:id/responses
func (h *Meeting) ProcessPlayerResponse(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	var req meetingDTO.PlayerResponseRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	out, err := h.meetingService.ProcessPlayerResponse(c.Request().Context(), meetingID, req.TopicID, req.Content)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusOK, &meetingDTO.PlayerResponseResponse{
		Meeting:    presenter.ToMeetingResponse(out.Meeting),
		Messages:   presenter.ToMessageResponses(out.Messages),
		Completion: presenter.ToCompletionResponse(out.Decision),
	})
}

// GetMessages handles GET /meetings/:id/messages?since=<message-id>
func (h *Meeting) GetMessages(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	var cursor *uuid.UUID
	if since := c.QueryParam("since"); since != "" {
		parsed, parseErr := uuid.Parse(since)
		if parseErr != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("since must be a valid message UUID"))
		}
		cursor = &parsed
	}

	out, err := h.meetingService.GetMessagesSince(c.Request().Context(), meetingID, cursor)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusOK, presenter.ToMessagesResponse(out))
}

// LeaveMeeting handles POST /meetings/:id/leave
func (h *Meeting) LeaveMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting ID must be a valid UUID"))
	}

	m, err := h.meetingService.LeaveMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, h.toAppError(c, err))
	}

	return c.JSON(http.StatusOK, presenter.ToMeetingResponse(m))
}

// toAppError maps usecase sentinel errors onto the transport error shape.
func (h *Meeting) toAppError(c echo.Context, err error) error {
	return MapServiceError(c.Param("id"), err)
}

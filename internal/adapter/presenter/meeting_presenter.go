package presenter

import (
	"github.com/careerquest-team/careerquest-backend/internal/adapter/dto/meeting"
	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	meetingUsecase "github.com/careerquest-team/careerquest-backend/internal/usecase/meeting"
)

// ToMeetingResponse converts a Meeting entity to its API response shape
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	topics := make([]meeting.TopicResponse, 0, len(m.Topics))
	for _, t := range m.Topics {
		topics = append(topics, meeting.TopicResponse{
			ID:                t.ID,
			Question:          t.Question,
			Context:           t.Context,
			ExpectedPoints:    t.ExpectedPoints,
			DiscussionPrompts: t.DiscussionPrompts,
		})
	}

	participants := make([]meeting.ParticipantResponse, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, meeting.ParticipantResponse{
			ID:        p.ID,
			Name:      p.Name,
			Role:      p.Role,
			Archetype: string(p.Archetype),
			Color:     p.Color,
		})
	}

	return &meeting.MeetingResponse{
		ID:                m.ID.String(),
		SessionID:         m.SessionID.String(),
		Kind:              string(m.Kind),
		Title:             m.Title,
		Objective:         m.Objective,
		Topics:            topics,
		Participants:      participants,
		EstimatedMinutes:  m.EstimatedMinutes,
		Priority:          string(m.Priority),
		Status:            string(m.Status),
		CurrentTopicIndex: m.CurrentTopicIndex,
		IsPlayerTurn:      m.IsPlayerTurn,
		CreatedAt:         m.CreatedAt,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
	}
}

// ToMessageResponse converts a ConversationMessage entity to its API shape
func ToMessageResponse(msg *entities.ConversationMessage) *meeting.MessageResponse {
	if msg == nil {
		return nil
	}

	var sentiment *string
	if msg.Sentiment != nil {
		s := string(*msg.Sentiment)
		sentiment = &s
	}

	return &meeting.MessageResponse{
		ID:              msg.ID.String(),
		Type:            string(msg.Type),
		ParticipantID:   msg.ParticipantID,
		ParticipantName: msg.ParticipantName,
		Sentiment:       sentiment,
		Content:         msg.Content,
		SequenceNumber:  msg.SequenceNumber,
		CreatedAt:       msg.CreatedAt,
	}
}

// ToMessageResponses converts a slice of conversation messages
func ToMessageResponses(msgs []*entities.ConversationMessage) []*meeting.MessageResponse {
	out := make([]*meeting.MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, ToMessageResponse(msg))
	}
	return out
}

// ToCompletionResponse converts a completion decision to its API shape
func ToCompletionResponse(d entities.CompletionDecision) *meeting.CompletionResponse {
	return &meeting.CompletionResponse{
		TopicComplete:     d.TopicComplete,
		MeetingComplete:   d.MeetingComplete,
		Reason:            d.Reason,
		TransitionMessage: d.TransitionMessage,
		Confidence:        string(d.Confidence),
	}
}

// ToMessagesResponse converts a polling query result to its API shape
func ToMessagesResponse(out *meetingUsecase.MessagesOutput) *meeting.MessagesResponse {
	return &meeting.MessagesResponse{
		Messages:          ToMessageResponses(out.Messages),
		IsPlayerTurn:      out.IsPlayerTurn,
		Status:            string(out.Status),
		CurrentTopicIndex: out.CurrentTopicIndex,
	}
}

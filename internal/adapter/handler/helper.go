package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/careerquest-team/careerquest-backend/errors"
	"github.com/careerquest-team/careerquest-backend/internal/domain/entities"
	usecaseErrors "github.com/careerquest-team/careerquest-backend/internal/usecase/errors"
)

// Response shapes
type errs struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// MapServiceError converts usecase sentinel errors into AppErrors so HandleError
// can pick the right status code. Unrecognized errors fall through as internal.
func MapServiceError(meetingID string, err error) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrCursorMismatch):
		return errors.ErrCursorNotFound(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyCompleted):
		return errors.ErrMeetingAlreadyCompleted(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrMeetingLeftEarly):
		return errors.ErrMeetingLeftEarly(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrMeetingNotStarted):
		return errors.ErrMeetingNotStarted(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrInvalidTopicIndex):
		return errors.ErrInvalidTopicIndex()
	case stdErrors.Is(err, usecaseErrors.ErrTopicMismatch):
		return errors.ErrTopicMismatch()
	case stdErrors.Is(err, usecaseErrors.ErrMeetingBusy):
		return errors.ErrMeetingBusy(meetingID)
	case stdErrors.Is(err, usecaseErrors.ErrInvalidMeetingKind):
		return errors.ErrInvalidArgument("kind is not a supported meeting kind")
	case stdErrors.Is(err, entities.ErrNoTopics):
		return errors.ErrInvalidArgument("a meeting needs at least one topic")
	case stdErrors.Is(err, entities.ErrNoParticipants):
		return errors.ErrInvalidArgument("a meeting needs at least one participant")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument("response content must not be empty")
	default:
		return errors.ErrInternal(err)
	}
}

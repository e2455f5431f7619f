// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrorHandler normalizes component errors at the flow boundary.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleTurnError handles any error raised while processing a conversation turn.
// It returns the FlowError the engine should render; the session itself survives.
func (h *ErrorHandler) HandleTurnError(sessionID, component string, err error) *FlowError {
	stdErr := h.normalizeError(err)
	flowErr := ConvertToFlowError(stdErr)

	h.logError(sessionID, component, stdErr, flowErr)

	return flowErr
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(sessionID, component string, stdErr *StandardError, flowErr *FlowError) {
	h.logger.Error("Turn failed", map[string]interface{}{
		"sessionId":     sessionID,
		"component":     component,
		"errorCode":     string(stdErr.Code),
		"flowErrorCode": flowErr.Code,
		"message":       flowErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}

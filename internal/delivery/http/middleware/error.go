package middleware

import (
	"context"
	"errors"
	"log"

	"skill-swap/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError carries the HTTP status and client-facing message for a failure.
// Cause is logged, never rendered.
type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("[HTTP] panic recovered rid=%s method=%s path=%s panic=%v", requestID(c), c.Method(), c.Path(), r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= fiber.StatusInternalServerError {
			m.logger.Printf("[HTTP] request failed rid=%s method=%s path=%s status=%d err=%v", requestID(c), c.Method(), c.Path(), status, err)
		}
		return response.Error(c, status, msg, data)
	}
}

// normalizeError maps err to a status, message and payload. Server-side
// failures keep their status but never expose their message or data.
func normalizeError(err error) (int, string, any) {
	var (
		status int
		msg    string
		data   any
	)

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case err == nil:
	case errors.As(err, &appErr):
		status, msg, data = appErr.StatusCode, appErr.Message, appErr.Data
	case errors.As(err, &fiberErr):
		status, msg = fiberErr.Code, fiberErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}

	if status <= 0 {
		status = fiber.StatusInternalServerError
	}
	if status >= fiber.StatusInternalServerError || msg == "" {
		msg = response.DefaultMessage(status)
	}
	if status >= fiber.StatusInternalServerError {
		data = nil
	}
	return status, msg, data
}

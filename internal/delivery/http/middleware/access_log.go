package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	HeaderRequestID   = "X-Request-ID"
	CtxRequestIDKey   = "request_id"
	defaultReqTimeout = 15 * time.Second
)

type AccessLogMiddleware struct {
	logger *log.Logger
}

func NewAccessLogMiddleware(logger *log.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AccessLogMiddleware{logger: logger}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil && status < fiber.StatusBadRequest {
			// Status is written later by the error middleware.
			status = errorStatus(err)
		}

		user := "-"
		if id, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok {
			user = id.String()
		}

		m.logger.Printf(
			"[HTTP] rid=%s ip=%s method=%s path=%s status=%d latency=%s user=%s ua=%q",
			rid, c.IP(), c.Method(), c.OriginalURL(), status, time.Since(start), user, c.Get("User-Agent"),
		)

		return err
	}
}

// RequestTimeout bounds the request context handed to usecases.
func RequestTimeout(d time.Duration) fiber.Handler {
	if d <= 0 {
		d = defaultReqTimeout
	}
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), d)
		defer cancel()
		c.SetContext(ctx)
		return c.Next()
	}
}

func requestID(c fiber.Ctx) string {
	if rid, ok := c.Locals(CtxRequestIDKey).(string); ok {
		return rid
	}
	return c.Get(HeaderRequestID)
}

func errorStatus(err error) int {
	status, _, _ := normalizeError(err)
	return status
}

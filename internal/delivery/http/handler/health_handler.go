package handler

import (
	"context"
	"time"

	"skill-swap/internal/database"
	"skill-swap/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStatser interface {
	Stats() database.PoolStats
}

type componentHealth struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Pool   *database.PoolStats `json:"pool,omitempty"`
}

type healthResponse struct {
	Status   string          `json:"status"`
	Database componentHealth `json:"database"`
	Redis    componentHealth `json:"redis"`
}

// HealthHandler reports dependency health. A nil dependency is reported as
// "disabled" and does not degrade the overall status.
type HealthHandler struct {
	db      Pinger
	redis   Pinger
	timeout time.Duration
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	res := healthResponse{
		Status:   "ok",
		Database: check(ctx, h.db),
		Redis:    check(ctx, h.redis),
	}
	if st, ok := h.db.(poolStatser); ok && res.Database.Status == "ok" {
		stats := st.Stats()
		res.Database.Pool = &stats
	}

	status := fiber.StatusOK
	if res.Database.Status == "down" || res.Redis.Status == "down" {
		res.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	return response.Success(c, status, res.Status, res)
}

func check(ctx context.Context, p Pinger) componentHealth {
	if disabled(p) {
		return componentHealth{Status: "disabled"}
	}
	if err := p.Ping(ctx); err != nil {
		return componentHealth{Status: "down", Error: err.Error()}
	}
	return componentHealth{Status: "ok"}
}

// disabled treats an unset dependency, or a cache that bypassed Redis at
// startup, as switched off rather than down.
func disabled(p Pinger) bool {
	if p == nil {
		return true
	}
	if a, ok := p.(interface{ Available() bool }); ok {
		return !a.Available()
	}
	return false
}

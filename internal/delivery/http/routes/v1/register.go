package v1

import (
	"skill-swap/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// Handlers are the /api/v1 route owners. Auth guards every route below it.
type Handlers struct {
	Auth  fiber.Handler
	Swaps *handler.SwapHandler
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	protected := r
	if h.Auth != nil {
		protected = r.Group("", h.Auth)
	}

	if h.Swaps != nil {
		h.Swaps.RegisterRoutes(protected)
	}
}

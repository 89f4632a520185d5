package routes

import (
	"skill-swap/internal/delivery/http/handler"
	v1 "skill-swap/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Health *handler.HealthHandler
	// Events serves the swap event websocket behind EventsAuth.
	Events     fiber.Handler
	EventsAuth fiber.Handler
	V1         v1.Handlers
}

type Registry struct {
	h Handlers
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{h: h}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerEvents(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerEvents(app *fiber.App) {
	if r.h.Events == nil || r.h.EventsAuth == nil {
		return
	}
	app.Get("/ws", r.h.EventsAuth, r.h.Events)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.h.V1)
}

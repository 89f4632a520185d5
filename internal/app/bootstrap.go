package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skill-swap/internal/delivery/http/handler"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/delivery/http/routes"
	v1 "skill-swap/internal/delivery/http/routes/v1"
	"skill-swap/internal/pkg/validator"
	"skill-swap/internal/ws"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	// Access log wraps the error middleware so it sees the final status.
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	app.Use(middleware.RequestTimeout(c.Config.App.RequestTimeout))
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	var db handler.Pinger
	if c.DB != nil {
		db = c.DB
	}

	auth := middleware.NewAuthMiddleware(c.JWT)
	routes.NewRegistry(routes.Handlers{
		Health:     handler.NewHealthHandler(db, c.Redis),
		Events:     ws.NewHandler(c.Hub, c.Logger).HandleSwapEvents,
		EventsAuth: auth.QueryMiddleware("token"),
		V1: v1.Handlers{
			Auth:  auth.Middleware(),
			Swaps: handler.NewSwapHandler(c.Swaps, validator.New()),
		},
	}).Register(app)
}

// Run serves HTTP alongside the hub, the notification workers and the Redis
// relay until ctx ends or one of them fails.
func (a *App) Run(ctx context.Context, addr string) error {
	c := a.Container
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Hub.Run(gctx)
		return nil
	})

	poolDone := c.Pool.Run(gctx)
	g.Go(func() error {
		<-poolDone
		return nil
	})

	g.Go(func() error {
		if err := c.Relay.Run(gctx); err != nil {
			// Local delivery still works without the relay.
			c.Logger.Printf("[Notify] relay stopped err=%v", err)
		}
		return nil
	})

	g.Go(func() error {
		c.Logger.Printf("[App] listening addr=%s env=%s", addr, c.Config.App.Environment)
		if err := a.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := c.Config.App.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		c.Logger.Printf("[App] shutting down timeout=%s", timeout)
		return a.Fiber.ShutdownWithContext(sctx)
	})

	return g.Wait()
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

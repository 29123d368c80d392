package router

import (
	"fmt"
	"net/http"
	"time"

	handlers "github.com/NeuralTrust/LearnGate/pkg/handlers/http"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath   = "/health"
	PingPath     = "/__/ping"
	CatchAllPath = "/*"
)

type proxyRouter struct {
	middlewareTransport middleware.Transport
	handlerTransport    handlers.HandlerTransport
	routes              []string
}

// NewProxyRouter registers every route template ahead of the catch-all so
// that its path parameters reach the security filter.
func NewProxyRouter(
	middlewareTransport middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	routes []string,
) ServerRouter {
	return &proxyRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		routes:              routes,
	}
}

func (r *proxyRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport.ForwardedHandler == nil {
		return fmt.Errorf("%w: forwarded handler", ErrMissingHandler)
	}
	if r.middlewareTransport.SecurityFilterMiddleware == nil {
		return fmt.Errorf("%w: security filter", ErrMissingHandler)
	}

	if r.middlewareTransport.SecurityHeadersMiddleware != nil {
		router.Use(r.middlewareTransport.SecurityHeadersMiddleware.Middleware())
	}

	router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	for _, h := range r.middlewareTransport.Handlers() {
		router.Use(h)
	}

	filter := r.middlewareTransport.SecurityFilterMiddleware.Middleware()
	forward := r.handlerTransport.ForwardedHandler.Handle
	for _, route := range r.routes {
		router.All(route, filter, forward)
	}
	router.All(CatchAllPath, filter, forward)

	return nil
}

package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Proxy
	ForwardedHandler Handler

	// Security events
	ListSecurityEventsHandler   Handler
	SecurityEventSummaryHandler Handler

	// Policy
	GetPolicyHandler Handler

	// System
	GetVersionHandler Handler
	HealthHandler     Handler
}

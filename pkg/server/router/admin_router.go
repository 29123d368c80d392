package router

import (
	"fmt"

	_ "github.com/NeuralTrust/LearnGate/docs"
	handlers "github.com/NeuralTrust/LearnGate/pkg/handlers/http"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const DefaultDocsURL = "/docs/doc.json"

type adminRouter struct {
	adminAuth        middleware.Middleware
	security         middleware.Middleware
	handlerTransport handlers.HandlerTransport
	docsURL          string
}

// NewAdminRouter exposes the security event API behind admin
// authentication. docsURL is where the swagger UI fetches the OpenAPI
// document from; empty means the document served under /docs.
func NewAdminRouter(
	security middleware.Middleware,
	adminAuth middleware.Middleware,
	handlerTransport handlers.HandlerTransport,
	docsURL string,
) ServerRouter {
	ar := &adminRouter{
		adminAuth:        adminAuth,
		security:         security,
		handlerTransport: handlerTransport,
		docsURL:          docsURL,
	}
	if docsURL == "" {
		ar.docsURL = DefaultDocsURL
	}
	return ar
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	ht := r.handlerTransport
	for name, h := range map[string]handlers.Handler{
		"list security events":   ht.ListSecurityEventsHandler,
		"security event summary": ht.SecurityEventSummaryHandler,
		"get policy":             ht.GetPolicyHandler,
		"get version":            ht.GetVersionHandler,
		"health":                 ht.HealthHandler,
	} {
		if h == nil {
			return fmt.Errorf("%w: %s", ErrMissingHandler, name)
		}
	}

	if r.security != nil {
		router.Use(r.security.Middleware())
	}

	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: r.docsURL,
	}))

	router.Get("/health", ht.HealthHandler.Handle)
	router.Get("/version", ht.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		if r.adminAuth != nil {
			v1.Use(r.adminAuth.Middleware())
		}

		events := v1.Group("/security-events")
		{
			events.Get("", ht.ListSecurityEventsHandler.Handle)
			events.Get("/summary", ht.SecurityEventSummaryHandler.Handle)
		}

		v1.Get("/policy", ht.GetPolicyHandler.Handle)
	}
	return nil
}

package http

import (
	"errors"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ListSecurityEventsResponse struct {
	Items  []security_event.SecurityEvent `json:"items"`
	Total  int64                          `json:"total"`
	Offset int                            `json:"offset"`
	Limit  int                            `json:"limit"`
}

type listSecurityEventsHandler struct {
	logger *logrus.Logger
	repo   security_event.Repository
}

func NewListSecurityEventsHandler(logger *logrus.Logger, repo security_event.Repository) Handler {
	return &listSecurityEventsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary List security events
// @Description Returns persisted rejections, newest first
// @Tags Security Events
// @Produce json
// @Security BearerAuth
// @Param code query string false "Rejection code"
// @Param stage query string false "Stage that rejected the request"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 500)"
// @Success 200 {object} ListSecurityEventsResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/security-events [get]
func (h *listSecurityEventsHandler) Handle(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", security_event.DefaultLimit)
	if offset < 0 || limit < 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.NewErrorResponse("offset and limit must be positive", types.CodeBadRequest))
	}

	filter := security_event.Filter{
		Code:   c.Query("code"),
		Stage:  c.Query("stage"),
		Offset: offset,
		Limit:  limit,
	}.Normalize()

	events, total, err := h.repo.List(c.Context(), filter)
	if err != nil {
		if errors.Is(err, security_event.ErrStorageDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(types.NewErrorResponse("Security event storage is disabled", types.CodeStorageDisabled))
		}
		h.logger.WithError(err).Error("failed to list security events")
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.NewErrorResponse("Internal server error", types.CodeInternalError))
	}
	if events == nil {
		events = []security_event.SecurityEvent{}
	}

	return c.Status(fiber.StatusOK).JSON(ListSecurityEventsResponse{
		Items:  events,
		Total:  total,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

package handler

import (
	"bytes"

	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/internal/pkg/serverutils"
	"rickshaw-client/internal/service"
	"rickshaw-client/internal/view"

	"github.com/gofiber/fiber/v2"
)

type PageHandler struct {
	service service.ISubmissionService
	page    *view.Page
	logger  logger.ILogger
}

func NewPageHandler(service service.ISubmissionService, page *view.Page, log logger.ILogger) *PageHandler {
	return &PageHandler{service: service, page: page, logger: log}
}

// Index renders the page for the caller's session, creating the session on first visit.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	snap := h.service.Open(c.UserContext(), serverutils.SessionID(c))

	var buf bytes.Buffer
	if err := h.page.Render(&buf, snap); err != nil {
		h.logger.Error("PageHandler", "Failed to render page", map[string]interface{}{
			"session_id": snap.Id.String(),
			"error":      err.Error(),
		})
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.Index)
}

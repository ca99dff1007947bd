package handler

import (
	"encoding/json"

	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/internal/pkg/serverutils"
	"rickshaw-client/internal/service"
	internalWS "rickshaw-client/internal/websocket"
	"rickshaw-client/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveHandler streams a session's snapshots to the browser over a websocket.
type LiveHandler struct {
	service service.ISubmissionService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewLiveHandler(service service.ISubmissionService, hub *internalWS.Hub, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// ServeWs upgrades the request. The session comes from the cookie, so a tab only
// ever sees its own session.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionID := serverutils.SessionID(c)
	snap := h.service.Open(c.UserContext(), sessionID)

	initial, err := json.Marshal(dto.LiveEvent{Type: events.TypeSessionUpdated, Data: snap})
	if err != nil {
		h.logger.Error("LiveHandler", "Failed to encode initial snapshot", map[string]interface{}{"error": err.Error()})
		initial = nil
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("LiveHandler", "Starting live session", map[string]interface{}{"session_id": sessionID.String()})
		internalWS.ServeWs(h.hub, conn, sessionID, initial)
		h.logger.Info("LiveHandler", "Live session ended", map[string]interface{}{"session_id": sessionID.String()})
	})(c)
}

// RegisterRoutes registers the live stream route. The session middleware must
// already be mounted on router.
func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/analysis/v1/live", h.ServeWs)
}

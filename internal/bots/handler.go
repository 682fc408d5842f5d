package bots

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPHandler exposes the bot runtime via Echo routes: the event webhook the
// clinical data store delivers resource notifications to, plus bot
// management endpoints.
type HTTPHandler struct {
	engine *Engine
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(engine *Engine) *HTTPHandler {
	return &HTTPHandler{engine: engine}
}

// RegisterRoutes binds all runtime routes to the given Echo group.
func (h *HTTPHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/events", h.HandleEvent)
	g.GET("/bots", h.ListBots)
	g.GET("/bots/logs", h.ListAllLogs)
	g.GET("/bots/:id", h.GetBot)
	g.DELETE("/bots/:id", h.DeleteBot)
	g.POST("/bots/:id/execute", h.ExecuteBot)
	g.GET("/bots/:id/logs", h.GetBotLogs)
	g.POST("/bots/:id/activate", h.ActivateBot)
	g.POST("/bots/:id/deactivate", h.DeactivateBot)
}

// eventRequest is the JSON body for POST /events.
type eventRequest struct {
	ResourceType string                 `json:"resource_type"`
	Event        string                 `json:"event"`
	Resource     map[string]interface{} `json:"resource"`
}

// HandleEvent handles POST /events: the inbound resource-event trigger.
func (h *HTTPHandler) HandleEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ResourceType == "" || req.Event == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "resource_type and event are required"})
	}

	outcomes := h.engine.DispatchEvent(c.Request().Context(), req.ResourceType, req.Event, req.Resource)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  outcomes,
		"total": len(outcomes),
	})
}

// ListBots handles GET /bots.
func (h *HTTPHandler) ListBots(c echo.Context) error {
	status := c.QueryParam("status")
	bots := h.engine.List(status)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  bots,
		"total": len(bots),
	})
}

// GetBot handles GET /bots/:id.
func (h *HTTPHandler) GetBot(c echo.Context) error {
	id := c.Param("id")
	bot, err := h.engine.Get(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bot not found"})
	}
	return c.JSON(http.StatusOK, bot)
}

// DeleteBot handles DELETE /bots/:id.
func (h *HTTPHandler) DeleteBot(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.Delete(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bot not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ExecuteBot handles POST /bots/:id/execute (manual trigger).
func (h *HTTPHandler) ExecuteBot(c echo.Context) error {
	id := c.Param("id")

	if _, err := h.engine.Get(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bot not found"})
	}

	var input Event
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	outcome, err := h.engine.Execute(c.Request().Context(), id, input)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, outcome)
}

// GetBotLogs handles GET /bots/:id/logs.
func (h *HTTPHandler) GetBotLogs(c echo.Context) error {
	id := c.Param("id")
	logs := h.engine.Logs(id)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  logs,
		"total": len(logs),
	})
}

// ListAllLogs handles GET /bots/logs.
func (h *HTTPHandler) ListAllLogs(c echo.Context) error {
	logs := h.engine.AllLogs()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  logs,
		"total": len(logs),
	})
}

// ActivateBot handles POST /bots/:id/activate.
func (h *HTTPHandler) ActivateBot(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.SetStatus(id, "active"); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bot not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "active"})
}

// DeactivateBot handles POST /bots/:id/deactivate.
func (h *HTTPHandler) DeactivateBot(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.SetStatus(id, "inactive"); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bot not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "inactive"})
}

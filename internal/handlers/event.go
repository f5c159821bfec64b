package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new calendar event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// ListEvents handles GET /api/v1/events?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err, "list events")
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetTodayEvents handles GET /api/v1/events/today
func (h *EventHandler) GetTodayEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	events, err := h.eventService.GetTodayEvents(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "today events")
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent handles GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent handles POST /api/v1/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent handles PATCH /api/v1/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err, "update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/v1/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err, "delete event")
		return
	}

	c.Status(http.StatusNoContent)
}

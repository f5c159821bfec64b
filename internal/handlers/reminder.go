package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
	}
}

// ListReminders handles GET /api/v1/reminders
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListReminders(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "list reminders")
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// CreateReminder handles POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateReminderRequest
	if !bindJSON(c, &req) {
		return
	}

	reminder, err := h.reminderService.CreateReminder(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "create reminder")
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// DeleteReminder handles DELETE /api/v1/reminders/:id
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err, "delete reminder")
		return
	}

	c.Status(http.StatusNoContent)
}

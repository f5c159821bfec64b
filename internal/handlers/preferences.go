package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type PreferencesHandler struct {
	preferencesService service.PreferencesService
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(preferencesService service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
	}
}

// GetPreferences handles GET /api/v1/preferences
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	prefs, err := h.preferencesService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "get preferences")
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /api/v1/preferences
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.preferencesService.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "update preferences")
		return
	}

	c.JSON(http.StatusOK, prefs)
}

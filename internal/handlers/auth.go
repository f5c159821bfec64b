package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "register")
		return
	}

	c.JSON(http.StatusCreated, authResp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, user)
}

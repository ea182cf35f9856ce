package handlers

import (
	"net/http"

	"github.com/beslove/backend/internal/middleware"
	"github.com/beslove/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetPhone returns the caller's verified phone in masked form.
func (h *UserHandler) GetPhone(c *gin.Context) {
	openID := c.GetString(middleware.ContextOpenIDKey)

	masked, err := h.userService.MaskedPhone(openID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"phone": masked},
	})
}

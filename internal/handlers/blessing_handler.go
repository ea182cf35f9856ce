package handlers

import (
	"net/http"
	"strconv"

	"github.com/beslove/backend/internal/middleware"
	"github.com/beslove/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type BlessingHandler struct {
	blessingService *services.BlessingService
}

func NewBlessingHandler(blessingService *services.BlessingService) *BlessingHandler {
	return &BlessingHandler{blessingService: blessingService}
}

// Send delivers an anonymous blessing SMS to the receiver phone.
func (h *BlessingHandler) Send(c *gin.Context) {
	var req struct {
		ReceiverPhone string `json:"receiver_phone" binding:"required"`
		Content       string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	senderOpenID := c.GetString(middleware.ContextOpenIDKey)
	result, err := h.blessingService.Send(senderOpenID, req.ReceiverPhone, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Blessing sent",
		"data":    result,
	})
}

// List returns the caller's own blessings, receiver masked
func (h *BlessingHandler) List(c *gin.Context) {
	senderOpenID := c.GetString(middleware.ContextOpenIDKey)
	views, err := h.blessingService.History(senderOpenID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// Delete soft-deletes one of the caller's own blessings
func (h *BlessingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	senderOpenID := c.GetString(middleware.ContextOpenIDKey)
	if err := h.blessingService.Delete(senderOpenID, uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blessing deleted"})
}

// Templates returns the static blessing template list
func (h *BlessingHandler) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.blessingService.Templates()})
}

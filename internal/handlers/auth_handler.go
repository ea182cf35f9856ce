package handlers

import (
	"net/http"

	"github.com/beslove/backend/internal/middleware"
	"github.com/beslove/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// WxLogin handles the provider-authorized login: code exchange, phone
// decrypt, user upsert, token issue.
func (h *AuthHandler) WxLogin(c *gin.Context) {
	var req struct {
		Code          string `json:"code" binding:"required"`
		EncryptedData string `json:"encrypted_data" binding:"required"`
		IV            string `json:"iv" binding:"required"`
		NickName      string `json:"nick_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(req.Code, req.EncryptedData, req.IV, req.NickName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    result,
	})
}

// WxOpenID exchanges a login code for the raw openid and session key, used
// by the mini-program bootstrap before the full login.
func (h *AuthHandler) WxOpenID(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code parameter required"})
		return
	}

	session, err := h.authService.ExchangeCode(code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"openid":      session.OpenID,
			"session_key": session.SessionKey,
		},
	})
}

// WxPhone captures the caller's verified phone from the provider. This is
// the single endpoint that returns a full phone number.
func (h *AuthHandler) WxPhone(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	openID := c.GetString(middleware.ContextOpenIDKey)
	phone, err := h.authService.CapturePhone(req.Code, openID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"phone": phone},
	})
}

// RefreshToken issues a new access token from a refresh token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"access_token": accessToken},
	})
}

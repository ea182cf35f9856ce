package handlers

import (
	"log"
	"net/http"

	"github.com/beslove/backend/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError maps taxonomy codes to HTTP statuses. Only the caller-safe
// message crosses the wire; causes stay in the server log.
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodeInvalidPhone, apperrors.CodeSelfSendDenied,
		apperrors.CodeInvalidContent, apperrors.CodeDisallowedContent,
		apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeSenderQuotaExceeded, apperrors.CodeReceiverQuotaExceeded:
		status = http.StatusTooManyRequests
	case apperrors.CodeDeliveryFailed, apperrors.CodeIdentityProvider:
		status = http.StatusBadGateway
	case apperrors.CodeStorage:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}

	c.JSON(status, gin.H{
		"code":  code,
		"error": apperrors.MessageOf(err),
	})
}

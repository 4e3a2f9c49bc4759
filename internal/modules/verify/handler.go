package verify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"terminbook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/verify/request", h.RequestCode)
	rg.POST("/verify/confirm", h.Confirm)
}

func (h *Handler) RequestCode(c *gin.Context) {
	var req RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	handle, err := h.service.RequestCode(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		switch err {
		case ErrInvalidPhone:
			response.Error(c, http.StatusBadRequest, "INVALID_PHONE", "Phone number must be in E.164 format")
		case ErrRateLimited:
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Please wait before requesting another code")
		case ErrChallengeSetupFailed:
			response.Error(c, http.StatusBadGateway, "CHALLENGE_SETUP_FAILED", "Could not deliver the verification code")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to request verification code")
		}
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"challenge_id": handle.ID})
}

func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	identity, err := h.service.Confirm(c.Request.Context(), req.ChallengeID, req.Code)
	if err != nil {
		switch err {
		case ErrVerificationFailed:
			response.Error(c, http.StatusUnauthorized, "VERIFICATION_FAILED", "Wrong or expired verification code")
		case ErrTooManyAttempts:
			response.Error(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Verification attempt limit reached, request a new code")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to confirm verification code")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"identity": identity})
}

package admin

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

// RegisterPublicRoutes mounts the login endpoint outside the auth middleware.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.Login)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/bookings", h.List)
	rg.PATCH("/admin/bookings/:id/confirm", h.Confirm)
	rg.DELETE("/admin/bookings/:id", h.Delete)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Login failed")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}

func (h *Handler) List(c *gin.Context) {
	views, err := h.service.ListReservations(c.Request.Context(), c.Query("weekday"))
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown weekday filter")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to list reservations")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": views})
}

func (h *Handler) Confirm(c *gin.Context) {
	res, err := h.service.ConfirmReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to confirm reservation")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":        res.ID,
		"confirmed": res.Confirmed,
	})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.CancelReservation(c.Request.Context(), c.Param("id")); err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to delete reservation")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

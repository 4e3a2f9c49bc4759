package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"terminbook/internal/pkg/response"
	"terminbook/internal/pkg/validator"
)

// Store and gateway calls get a bounded wait before the client sees an error.
const requestTimeout = 10 * time.Second

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/days", h.Days)
	rg.GET("/slots", h.Slots)
	rg.POST("/bookings", h.CreateBooking)
}

func (h *Handler) Days(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"days": h.service.BookableDays()})
}

func (h *Handler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	day, err := h.service.SlotsForDay(ctx, date)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date")
		case ErrStoreUnavailable:
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database service is not available")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to load slots")
		}
		return
	}

	response.Success(c, http.StatusOK, day)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req AttemptBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(c, details)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	res, err := h.service.AttemptBooking(ctx, req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
		case ErrVerificationRequired:
			response.Error(c, http.StatusForbidden, "VERIFICATION_REQUIRED", "Phone number is not verified")
		case ErrSlotUnavailable:
			response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "This time slot is no longer available")
		case ErrPhoneHasBooking:
			response.Error(c, http.StatusConflict, "PHONE_HAS_BOOKING", "This phone number already has an active booking")
		case ErrStoreUnavailable:
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database service is not available")
		default:
			response.Error(c, http.StatusInternalServerError, "SERVER_ERROR", "An unexpected error occurred while booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"booking_id":      res.ID,
		"date":            res.Date,
		"time":            res.Time,
		"phone_last_four": res.PhoneLastFour,
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/flightops/internal/service/booking"
	"github.com/Domenick1991/flightops/internal/service/passengers"
)

type PassengerHandler struct {
	bookings   booking.BookingUseCase
	passengers passengers.PassengerUseCase
}

type createWithBookingResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	BookingID   int64  `json:"booking_id"`
	PassengerID int64  `json:"passenger_id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Method      string `json:"method"`
}

func NewPassengerHandler(bookings booking.BookingUseCase, passengers passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{bookings: bookings, passengers: passengers}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.POST("/create-with-booking", h.createWithBooking)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/booking-count", h.bookingCount)
}

func (h *PassengerHandler) createWithBooking(c *gin.Context) {
	var req booking.CreatePassengerBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}

	result, err := h.bookings.CreatePassengerWithBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createWithBookingResponse{
		Success:     true,
		Message:     "Passenger and booking created successfully",
		BookingID:   result.BookingID,
		PassengerID: result.PassengerID,
		FirstName:   result.FirstName,
		LastName:    result.LastName,
		Method:      string(result.Method),
	})
}

func (h *PassengerHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.passengers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "passenger": p})
}

func (h *PassengerHandler) bookingCount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	count, err := h.passengers.BookingCount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "passenger_id": id, "booking_count": count})
}

func (h *PassengerHandler) create(c *gin.Context) {
	var req passengers.CreatePassengerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	p, err := h.passengers.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Passenger created successfully", "passenger_id": p.ID})
}

func (h *PassengerHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req passengers.UpdatePassengerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid JSON body")
		return
	}
	p, err := h.passengers.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "passenger": p})
}

func (h *PassengerHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.passengers.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Passenger deleted successfully"})
}

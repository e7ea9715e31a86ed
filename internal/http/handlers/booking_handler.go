// README: Booking handlers for intake, customer views, driver trip progress and admin payment/board.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtc/internal/http/middleware"
	"vtc/internal/modules/booking"
	"vtc/internal/modules/fare"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type createBookingReq struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Passengers  int         `json:"passengers"`
	Luggage     int         `json:"luggage"`
	AddOns      fare.AddOns `json:"add_ons"`
	Notes       string      `json:"notes"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		Requester:   middleware.Caller(c),
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        req.Date,
		Time:        req.Time,
		Passengers:  req.Passengers,
		Luggage:     req.Luggage,
		AddOns:      req.AddOns,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	list, err := h.booking.ListMine(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": toBookingList(list)})
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.booking.Get(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResponse(b))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	b, err := h.booking.Cancel(c.Request.Context(), middleware.Caller(c), c.Param("id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) ListAssigned(c *gin.Context) {
	list, err := h.booking.ListAssigned(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": toBookingList(list)})
}

func (h *BookingHandler) Start(c *gin.Context) {
	b, err := h.booking.Start(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) Complete(c *gin.Context) {
	b, err := h.booking.Complete(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResponse(b))
}

// Board is the admin dispatch board, optionally filtered by ?status=.
func (h *BookingHandler) Board(c *gin.Context) {
	list, err := h.booking.ListByStatus(c.Request.Context(), middleware.Caller(c), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": toBookingList(list)})
}

type paymentReq struct {
	Status booking.PaymentStatus `json:"status"`
}

// Payment records a payment-status change: {"status":"paid"} or {"status":"refunded"}.
func (h *BookingHandler) Payment(c *gin.Context) {
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var (
		b   *booking.Booking
		err error
	)
	switch req.Status {
	case booking.PaymentPaid:
		b, err = h.booking.MarkPaid(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	case booking.PaymentRefunded:
		b, err = h.booking.Refund(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	default:
		writeError(c, http.StatusBadRequest, "status must be paid or refunded")
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBookingResponse(b))
}

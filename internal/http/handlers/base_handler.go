// README: Base handler utilities (JSON helpers, error mapping, response shapes).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vtc/internal/http/middleware"
	"vtc/internal/modules/access"
	"vtc/internal/modules/booking"
	"vtc/internal/modules/fare"
	"vtc/internal/types"
)

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Field    string `json:"field,omitempty"`
	Guard    string `json:"guard,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var (
		ve types.ValidationError
		gv types.GuardViolation
		nf types.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: "validation", Field: ve.Field})
	case errors.Is(err, types.ErrNotAuthorized):
		writeJSON(c, http.StatusForbidden, errorResponse{
			Error:    "forbidden",
			Code:     "not_authorized",
			Redirect: access.Landing(middleware.CallerRole(c)),
		})
	case errors.As(err, &nf):
		writeJSON(c, http.StatusNotFound, errorResponse{Error: nf.Error(), Code: "not_found"})
	case errors.Is(err, types.ErrStaleState):
		writeJSON(c, http.StatusConflict, errorResponse{Error: "booking changed concurrently; reload and retry", Code: "stale_state"})
	case errors.As(err, &gv):
		writeJSON(c, http.StatusConflict, errorResponse{Error: gv.Error(), Code: "guard_violation", Guard: gv.Guard})
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "request_id", middleware.RequestID(c), "err", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

type bookingResponse struct {
	ID            types.ID              `json:"id"`
	Reference     string                `json:"reference"`
	RequesterID   types.ID              `json:"requester_id"`
	Origin        string                `json:"origin"`
	Destination   string                `json:"destination"`
	Date          string                `json:"date"`
	Time          string                `json:"time"`
	ScheduledAt   time.Time             `json:"scheduled_at"`
	Passengers    int                   `json:"passengers"`
	Luggage       int                   `json:"luggage"`
	AddOns        fare.AddOns           `json:"add_ons"`
	Notes         string                `json:"notes,omitempty"`
	Price         types.Money           `json:"price"`
	FareRule      fare.Rule             `json:"fare_rule"`
	Status        booking.Status        `json:"status"`
	PaymentStatus booking.PaymentStatus `json:"payment_status"`
	DriverID      *types.ID             `json:"driver_id,omitempty"`
	AssignedAt    *time.Time            `json:"assigned_at,omitempty"`
	AssignedBy    *types.ID             `json:"assigned_by,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason  *string               `json:"cancel_reason,omitempty"`
}

func toBookingResponse(b *booking.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		Reference:     b.Reference,
		RequesterID:   b.RequesterID,
		Origin:        b.Origin,
		Destination:   b.Destination,
		Date:          b.ScheduledDate(),
		Time:          b.ScheduledTime(),
		ScheduledAt:   b.ScheduledAt,
		Passengers:    b.Passengers,
		Luggage:       b.Luggage,
		AddOns:        b.AddOns,
		Notes:         b.Notes,
		Price:         b.Price,
		FareRule:      b.FareRule,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		DriverID:      b.DriverID,
		AssignedAt:    b.AssignedAt,
		AssignedBy:    b.AssignedBy,
		CreatedAt:     b.CreatedAt,
		StartedAt:     b.StartedAt,
		CompletedAt:   b.CompletedAt,
		CancelledAt:   b.CancelledAt,
		CancelReason:  b.CancelReason,
	}
}

func toBookingList(list []*booking.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResponse(b))
	}
	return out
}

// Me reports who the caller is and where the UI should land them.
func Me(c *gin.Context) {
	r := middleware.CallerRole(c)
	writeJSON(c, http.StatusOK, gin.H{
		"id":      middleware.CallerUID(c),
		"role":    r,
		"landing": access.Landing(r),
	})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// README: Fare preview handler (public, no persistence).
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vtc/internal/modules/fare"
)

type FareHandler struct {
	calc *fare.Calculator
}

func NewFareHandler(calc *fare.Calculator) *FareHandler {
	return &FareHandler{calc: calc}
}

type quoteReq struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Passengers  int         `json:"passengers"`
	AddOns      fare.AddOns `json:"add_ons"`
}

func (h *FareHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	if req.Passengers == 0 {
		req.Passengers = fare.MinPassengers
	}
	writeJSON(c, http.StatusOK, h.calc.Quote(fare.Request{
		Origin:      req.Origin,
		Destination: req.Destination,
		Passengers:  req.Passengers,
		AddOns:      req.AddOns,
	}))
}

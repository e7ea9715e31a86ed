// README: Dispatch handlers: assign a driver, list eligible drivers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtc/internal/http/middleware"
	"vtc/internal/modules/dispatch"
	"vtc/internal/modules/driver"
	"vtc/internal/types"
)

type DispatchHandler struct {
	dispatch *dispatch.Service
}

func NewDispatchHandler(svc *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{dispatch: svc}
}

type assignReq struct {
	DriverID string `json:"driver_id"`
}

func (h *DispatchHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	a, err := h.dispatch.Assign(c.Request.Context(), middleware.Caller(c), c.Param("id"), types.ID(req.DriverID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, a)
}

func (h *DispatchHandler) Eligible(c *gin.Context) {
	list, err := h.dispatch.Eligible(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []*driver.Driver{}
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": list})
}

// README: Driver handlers for application and admin activation/roster.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vtc/internal/http/middleware"
	"vtc/internal/modules/driver"
	"vtc/internal/types"
)

type DriverHandler struct {
	driver *driver.Service
}

func NewDriverHandler(svc *driver.Service) *DriverHandler {
	return &DriverHandler{driver: svc}
}

type applyReq struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	VehicleMake   string `json:"vehicle_make"`
	VehicleModel  string `json:"vehicle_model"`
	VehicleYear   int    `json:"vehicle_year"`
	Plate         string `json:"plate"`
}

func (h *DriverHandler) Apply(c *gin.Context) {
	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.driver.Apply(c.Request.Context(), driver.ApplyCommand{
		Applicant:     middleware.Caller(c),
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		VehicleMake:   req.VehicleMake,
		VehicleModel:  req.VehicleModel,
		VehicleYear:   req.VehicleYear,
		Plate:         req.Plate,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, d)
}

// List returns the roster; ?active=false includes inactive applicants.
func (h *DriverHandler) List(c *gin.Context) {
	activeOnly := true
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "active must be a boolean")
			return
		}
		activeOnly = b
	}
	list, err := h.driver.List(c.Request.Context(), middleware.Caller(c), activeOnly)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []*driver.Driver{}
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": list})
}

func (h *DriverHandler) Activate(c *gin.Context) {
	d, err := h.driver.Activate(c.Request.Context(), middleware.Caller(c), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *DriverHandler) Deactivate(c *gin.Context) {
	d, err := h.driver.Deactivate(c.Request.Context(), middleware.Caller(c), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

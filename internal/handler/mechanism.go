package handler

import (
	"errors"
	"net/http"

	"kinlab-backend/internal/model"
	"kinlab-backend/internal/service"
	"kinlab-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MechanismHandler struct {
	mechanismService *service.MechanismService
}

func NewMechanismHandler(mechanismService *service.MechanismService) *MechanismHandler {
	return &MechanismHandler{
		mechanismService: mechanismService,
	}
}

// Upload creates a new session from a raw mechanism document. A failed
// upload leaves the previous session (if any) active.
func (h *MechanismHandler) Upload(c *gin.Context) {
	var req model.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}

	resp, err := h.mechanismService.Upload(c.Request.Context(), req.Data)
	if err != nil {
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MechanismHandler) GetSession(c *gin.Context) {
	resp, err := h.mechanismService.ActiveSession()
	if err != nil {
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MechanismHandler) GetRates(c *gin.Context) {
	var req model.RateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}

	report, err := h.mechanismService.QueryRates(c.Request.Context(), &req)
	if err != nil {
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *MechanismHandler) GetPlot(c *gin.Context) {
	var req model.PlotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}

	view, err := h.mechanismService.QueryPlot(c.Request.Context(), &req)
	if err != nil {
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// writeFailure maps the failure taxonomy onto HTTP statuses. Validation
// failures never made it to the kinetics service; rejected/transport
// failures did and came back bad.
func writeFailure(c *gin.Context, err error) {
	var invalidInput *model.InvalidInputError
	var rejected *model.ServerRejectedError
	var transport *model.TransportError

	switch {
	case errors.Is(err, model.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "no_active_session"})
	case errors.As(err, &invalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_input", "species": invalidInput.Species})
	case errors.Is(err, model.ErrInvalidTemperature):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_temperature"})
	case errors.Is(err, model.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_range"})
	case errors.Is(err, model.ErrInvalidMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_mode"})
	case errors.Is(err, model.ErrSessionReplaced):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "session_replaced"})
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "server_rejected", "reason": rejected.Reason})
	case errors.As(err, &transport):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "transport_failure", "status_code": transport.StatusCode})
	default:
		logger.Errorf("unclassified failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "internal"})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/service/network"
)

// UnitHandler exposes the unit CRUD and IP availability endpoints.
type UnitHandler struct {
	svc    *network.Service
	logger *zap.Logger
}

// NewUnitHandler constructs the HTTP handler adapter.
func NewUnitHandler(svc *network.Service, logger *zap.Logger) *UnitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitHandler{svc: svc, logger: logger}
}

// List returns every unit, ordered by IP ascending.
func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.svc.ListUnits(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// Create registers a new unit.
func (h *UnitHandler) Create(c *gin.Context) {
	var input network.UnitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid unit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	unit, err := h.svc.CreateUnit(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// Get fetches one unit by name.
func (h *UnitHandler) Get(c *gin.Context) {
	unit, err := h.svc.GetUnit(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Update applies a partial update to one unit.
func (h *UnitHandler) Update(c *gin.Context) {
	var input network.UnitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid unit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	unit, err := h.svc.UpdateUnit(c.Request.Context(), c.Param("name"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

// Delete removes one unit by name.
func (h *UnitHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteUnit(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckIP answers the live availability probe: 201 when the address could be
// assigned, 400 when it is malformed or already taken.
func (h *UnitHandler) CheckIP(c *gin.Context) {
	var req struct {
		IP string `json:"ip" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CheckIP(c.Request.Context(), req.IP); err != nil {
		if errors.Is(err, models.ErrInvalidIPFormat) || errors.Is(err, models.ErrDuplicateIP) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "available"})
}

// AvailableIPs returns, per configured gateway, the free last octets.
func (h *UnitHandler) AvailableIPs(c *gin.Context) {
	available, err := h.svc.AvailableIPs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, available)
}

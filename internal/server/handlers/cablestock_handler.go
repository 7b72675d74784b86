package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/service/cablestock"
)

// CableStockHandler exposes snapshot upload, lookup and comparison endpoints.
type CableStockHandler struct {
	svc    *cablestock.Service
	logger *zap.Logger
}

// NewCableStockHandler constructs the HTTP handler adapter.
func NewCableStockHandler(svc *cablestock.Service, logger *zap.Logger) *CableStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CableStockHandler{svc: svc, logger: logger}
}

// List returns the snapshots uploaded for the last 12 months.
func (h *CableStockHandler) List(c *gin.Context) {
	snapshots, err := h.svc.Recent(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// Get fetches one snapshot. The MM/YYYY key may arrive with an escaped
// slash or with a dash in its place.
func (h *CableStockHandler) Get(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context(), monthParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Upload ingests a cable stock workbook from a multipart form.
func (h *CableStockHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn("invalid upload request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	snapshot, err := h.svc.Ingest(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// Compare diffs two monthly snapshots given as ?from=&to=.
func (h *CableStockHandler) Compare(c *gin.Context) {
	from := normalizeMonth(c.Query("from"))
	to := normalizeMonth(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to months are required"})
		return
	}

	records, err := h.svc.Compare(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func monthParam(c *gin.Context) string {
	return normalizeMonth(c.Param("month"))
}

func normalizeMonth(month string) string {
	return strings.ReplaceAll(month, "-", "/")
}

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/export"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/service"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/storage"
)

type ReplenishmentHandler struct {
	service *service.ReplenishmentService
	store   storage.ObjectStorage
}

// NewReplenishmentHandler wires the plan endpoints. store may be nil; CSV
// export still works, it just is not published anywhere.
func NewReplenishmentHandler(service *service.ReplenishmentService, store storage.ObjectStorage) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service, store: store}
}

func (h *ReplenishmentHandler) parseWindow(c *gin.Context) (int, bool) {
	raw := c.Query("window_days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be a positive integer"})
		return 0, false
	}
	return days, true
}

func (h *ReplenishmentHandler) GetPlan(c *gin.Context) {
	days, ok := h.parseWindow(c)
	if !ok {
		return
	}

	plan, err := h.service.GeneratePlan(c.Request.Context(), days)
	if err != nil {
		var refErr *replenishment.InvalidReferenceError
		if errors.As(err, &refErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": refErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *ReplenishmentHandler) ExportPlanCSV(c *gin.Context) {
	days, ok := h.parseWindow(c)
	if !ok {
		return
	}

	plan, err := h.service.GeneratePlan(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := export.WritePlanCSV(&buf, plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("replenishment-plan-%s.csv", plan.GeneratedAt.Format("2006-01-02"))

	if h.store != nil && c.Query("publish") == "true" {
		key := fmt.Sprintf("plans/%s/%s", plan.GeneratedAt.Format("2006"), filename)
		if err := h.store.UploadObject(c.Request.Context(), key, "text/csv", buf.Bytes()); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("plan export upload failed")
		} else {
			log.Info().Str("key", key).Msg("plan export published")
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

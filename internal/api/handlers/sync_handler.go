package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/service"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/stocksync"
)

type SyncHandler struct {
	service *service.StockSyncService
}

func NewSyncHandler(service *service.StockSyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

func (h *SyncHandler) RunAll(c *gin.Context) {
	result, err := h.service.SyncAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) RunCollection(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}

	result, err := h.service.SyncCollection(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) RunPiece(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid piece id"})
		return
	}

	result, err := h.service.SyncPiece(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, stocksync.ErrNotLinked) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

package handler

import (
	"net/http"

	"craftledger/internal/apierror"
	"craftledger/internal/dto"
	"craftledger/internal/middleware"
	"craftledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc *service.InventoryService }

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item_id"))
		return
	}

	var createdBy *string
	if claims := middleware.GetClaims(c); claims != nil {
		createdBy = &claims.Username
	}

	resp, err := h.svc.AdjustStock(c.Request.Context(), service.AdjustStockParams{
		ItemID:        itemID,
		QuantityDelta: req.QuantityDelta,
		Reason:        req.Reason,
		Notes:         req.Notes,
		CreatedBy:     createdBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	var filter dto.AdjustmentFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListAdjustments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLink(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) ListLinks(c *gin.Context) {
	resp, err := h.svc.ListLinks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) DeleteLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.RemoveLink(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.LowStockAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

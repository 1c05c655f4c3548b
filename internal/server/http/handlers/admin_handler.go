package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/server/http/dto"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
)

// AdminHandler exposes staff-only fulfilment and pricing endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Start handles POST /api/admin/orders/:id/start.
func (h *AdminHandler) Start(c *gin.Context) {
	h.transition(c, h.facade.StartWork)
}

// Complete handles POST /api/admin/orders/:id/complete.
func (h *AdminHandler) Complete(c *gin.Context) {
	h.transition(c, h.facade.CompleteOrder)
}

// Refund handles POST /api/admin/orders/:id/refund.
func (h *AdminHandler) Refund(c *gin.Context) {
	h.transition(c, h.facade.RefundOrder)
}

// Deliver handles POST /api/admin/orders/:id/files with a multipart "file".
func (h *AdminHandler) Deliver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !parseMultipart(c) {
		return
	}
	att, closeFile, err := formFile(c, "file", model.FileCategoryFinalProduct)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid file")
		return
	}
	defer closeFile()
	if att == nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := h.facade.AttachDelivery(c.Request.Context(), id, att)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileResponse(file))
}

// UpdatePrices handles PATCH /api/admin/packages/:id/prices.
func (h *AdminHandler) UpdatePrices(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.facade.UpdatePackagePrices(c.Request.Context(), id, req.PriceINR, req.PriceUSD); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) transition(c *gin.Context, op func(context.Context, int64) (*model.Order, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

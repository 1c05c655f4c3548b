package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/server/http/dto"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
)

// PaymentHandler drives checkout and confirmation.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Checkout handles POST /api/orders/:id/checkout.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	checkout, err := h.facade.Checkout(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		OrderID:       checkout.OrderID,
		OrderNumber:   checkout.OrderNumber,
		RemoteOrderID: checkout.RemoteOrderID,
		Amount:        checkout.AmountMinor,
		Currency:      string(checkout.Currency),
		KeyID:         checkout.KeyID,
	})
}

// Verify handles POST /api/orders/:id/payment/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.facade.ConfirmPayment(c.Request.Context(), CurrentPrincipal(c), id, model.PaymentCallback{
		PaymentID:     req.PaymentID,
		RemoteOrderID: req.RemoteOrderID,
		Signature:     req.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Failed handles POST /api/orders/:id/payment/failed.
func (h *PaymentHandler) Failed(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.FailPayment(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

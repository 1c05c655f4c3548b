package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prowriters/internal/domain/model"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/server/http/dto"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
)

type orderOperation func(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders. The body is a multipart form with
// package_id, currency, requirements and an optional resume file.
func (h *OrderHandler) Create(c *gin.Context) {
	if !parseMultipart(c) {
		return
	}
	packageID, err := strconv.ParseInt(c.Request.FormValue("package_id"), 10, 64)
	if err != nil || packageID <= 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid package_id")
		return
	}

	resume, closeFile, err := formFile(c, "resume", model.FileCategoryResume)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid resume file")
		return
	}
	defer closeFile()

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentPrincipal(c).UserID, model.OrderRequest{
		PackageID:    packageID,
		Currency:     c.Request.FormValue("currency"),
		Requirements: c.Request.FormValue("requirements"),
		Resume:       resume,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	h.respondOrder(c, h.facade.Order)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.respondOrder(c, h.facade.CancelOrder)
}

// Revision handles POST /api/orders/:id/revision.
func (h *OrderHandler) Revision(c *gin.Context) {
	h.respondOrder(c, h.facade.RequestRevision)
}

// Files handles GET /api/orders/:id/files.
func (h *OrderHandler) Files(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	files, err := h.facade.OrderFiles(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.FileResponse, 0, len(files))
	for i := range files {
		response = append(response, toFileResponse(&files[i]))
	}
	c.JSON(http.StatusOK, response)
}

// File handles GET /api/orders/:id/files/:fileID and returns a temporary
// download link.
func (h *OrderHandler) File(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fileID, ok := pathID(c, "fileID")
	if !ok {
		return
	}
	url, err := h.facade.FileURL(c.Request.Context(), CurrentPrincipal(c), id, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FileURLResponse{URL: url})
}

func (h *OrderHandler) respondOrder(c *gin.Context, op orderOperation) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prowriters/internal/server/http/dto"
)

// CatalogHandler serves the public service catalog.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// List handles GET /api/services.
func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.facade.Services(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		response = append(response, toServiceResponse(&services[i], false))
	}
	c.JSON(http.StatusOK, response)
}

// Service handles GET /api/services/:slug.
func (h *CatalogHandler) Service(c *gin.Context) {
	svc, err := h.facade.Service(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServiceResponse(svc, true))
}

// Package handles GET /api/packages/:id.
func (h *CatalogHandler) Package(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pkg, svc, err := h.facade.Package(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPackageResponse(pkg, svc.Slug))
}

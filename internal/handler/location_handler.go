package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
)

// LocationHandler exposes pincode and post office lookups plus the public
// class category catalog.
type LocationHandler struct {
	locations *service.LocationService
	catalog   *service.CatalogService
}

// NewLocationHandler constructs a LocationHandler.
func NewLocationHandler(locations *service.LocationService, catalog *service.CatalogService) *LocationHandler {
	return &LocationHandler{locations: locations, catalog: catalog}
}

// Pincode godoc
// @Summary Resolve a pincode
// @Tags Locations
// @Produce json
// @Param code path string true "6 digit pincode"
// @Param state query string false "State hint for the state-specific directory"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /locations/pincodes/{code} [get]
func (h *LocationHandler) Pincode(c *gin.Context) {
	location, err := h.locations.Resolve(c.Request.Context(), strings.TrimSpace(c.Param("code")), c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// PostOffices godoc
// @Summary Search post offices by branch name
// @Tags Locations
// @Produce json
// @Param name path string true "Branch name"
// @Success 200 {object} response.Envelope
// @Router /locations/postoffices/{name} [get]
func (h *LocationHandler) PostOffices(c *gin.Context) {
	offices, err := h.locations.PostOffices(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offices, nil)
}

// ClassCategories godoc
// @Summary List class categories with their subjects
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/class-categories [get]
func (h *LocationHandler) ClassCategories(c *gin.Context) {
	categories, hit, err := h.catalog.Lookup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, categories, nil, middleware.ExtractMeta(c))
}

package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// PlacesHandler serves the structured catalog listing for the UI.
type PlacesHandler struct {
	store service.CatalogStore
}

// NewPlacesHandler creates a new places handler.
func NewPlacesHandler(store service.CatalogStore) *PlacesHandler {
	return &PlacesHandler{store: store}
}

// List handles GET /api/places?category=&search=
func (h *PlacesHandler) List(c *gin.Context) {
	category := c.Query("category")
	if category == "todos" {
		category = ""
	}
	search := c.Query("search")

	places, err := h.store.FilterPlaces(c.Request.Context(), category, search, nil)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"places": []model.Place{}, "error": err.Error()})
		return
	}
	if places == nil {
		places = []model.Place{}
	}

	c.JSON(http.StatusOK, gin.H{
		"places": places,
		"total":  len(places),
	})
}

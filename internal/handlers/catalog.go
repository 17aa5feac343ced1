package handlers

import (
	"net/http"

	"layer-backend/internal/catalog"
	"layer-backend/internal/models"
)

// CatalogHandler serves the static layer catalog
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// CatalogCategory is one category with its layer options.
type CatalogCategory struct {
	Category models.LayerCategory  `json:"category"`
	Layers   []catalog.LayerOption `json:"layers"`
}

// GetCatalog handles GET /api/v1/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	categories := catalog.ListCategories()
	out := make([]CatalogCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, CatalogCategory{
			Category: c,
			Layers:   catalog.LayersFor(c),
		})
	}
	respondJSON(w, http.StatusOK, map[string][]CatalogCategory{"categories": out})
}

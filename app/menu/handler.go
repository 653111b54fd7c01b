// Package menu serves the public digital menu.
package menu

import (
	"context"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/app/catalog"
	"github.com/arraiapos/pos/models"
)

// Uncategorized is the section holding products without a category.
const Uncategorized = "Geral"

type ProductProvider interface {
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
}

type Section struct {
	Category string            `json:"category"`
	Products []catalog.Product `json:"products"`
}

type Response struct {
	Sections []Section `json:"sections"`
}

// GroupByCategory buckets products into name-ordered sections. Product
// order inside a section follows the input.
func GroupByCategory(products []models.Product) []Section {
	index := make(map[string]int)
	sections := make([]Section, 0)
	for _, p := range products {
		name := p.CategoryName(Uncategorized)
		i, ok := index[name]
		if !ok {
			i = len(sections)
			index[name] = i
			sections = append(sections, Section{Category: name})
		}
		sections[i].Products = append(sections[i].Products, catalog.NewProduct(p))
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Category < sections[j].Category
	})
	return sections
}

type MenuHandler struct {
	repo   ProductProvider
	logger *zap.Logger
}

func NewMenuHandler(repo ProductProvider, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{repo: repo, logger: logger}
}

func (h *MenuHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetProducts(r.Context(), models.ProductFilters{ActiveOnly: true})
	if err != nil {
		h.logger.Error("load menu", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve menu")
		return
	}
	api.OKResponse(w, Response{Sections: GroupByCategory(products)})
}

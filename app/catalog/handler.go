package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Active      bool      `json:"active"`
	Stock       int       `json:"stock"`
	Category    *Category `json:"category,omitempty"`
}

// NewProduct maps a product model to its JSON shape.
func NewProduct(p models.Product) Product {
	out := Product{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		Stock:       p.Stock,
	}
	if p.Category != nil {
		out.Category = &Category{
			ID:   p.Category.ID.String(),
			Name: p.Category.Name,
			Icon: p.Category.Icon,
		}
	}
	return out
}

type ProductProvider interface {
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

// HandleGet lists active products. Without a limit the whole catalog is
// returned, which is what the POS grid loads.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	filters := models.ProductFilters{
		ActiveOnly:   true,
		CategoryName: r.URL.Query().Get("category"),
	}

	res, err := h.repo.GetProducts(r.Context(), filters)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	total := len(res)

	offset, limit := 0, total
	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	start := min(offset, total)
	end := min(start+limit, total)

	products := make([]Product, 0, end-start)
	for _, p := range res[start:end] {
		products = append(products, NewProduct(p))
	}

	api.OKResponse(w, Response{
		Total:    total,
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	if !product.Active {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	api.OKResponse(w, NewProduct(*product))
}

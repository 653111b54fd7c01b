// Package products serves the admin product management endpoints.
package products

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/app/catalog"
	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/storage"
)

const maxImageSize = 5 << 20

type ProductStore interface {
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ImageUploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	Active      *bool           `json:"active"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

func (in ProductInput) validate() string {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return "Missing name"
	case in.Price.IsNegative():
		return "Price must not be negative"
	case in.Stock < 0:
		return "Stock must not be negative"
	}
	return ""
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	if !sameCategory(p.CategoryID, in.CategoryID) {
		p.Category = nil
	}
	p.CategoryID = in.CategoryID
	if in.Active != nil {
		p.Active = *in.Active
	}
}

type ProductsHandler struct {
	repo    ProductStore
	images  ImageUploader
	catalog CatalogInvalidator
	logger  *zap.Logger
}

func NewProductsHandler(repo ProductStore, images ImageUploader, catalog CatalogInvalidator, logger *zap.Logger) *ProductsHandler {
	return &ProductsHandler{
		repo:    repo,
		images:  images,
		catalog: catalog,
		logger:  logger,
	}
}

// HandleList returns every product, inactive ones included.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetProducts(r.Context(), models.ProductFilters{})
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	products := make([]catalog.Product, len(res))
	for i, p := range res {
		products[i] = catalog.NewProduct(p)
	}
	api.OKResponse(w, catalog.Response{Total: len(products), Products: products})
}

func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := input.validate(); msg != "" {
		api.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	product := &models.Product{Active: true}
	input.apply(product)

	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		h.logger.Error("create product", zap.String("name", product.Name), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.invalidate(r.Context())

	api.CreatedResponse(w, catalog.NewProduct(*product))
}

func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var input ProductInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := input.validate(); msg != "" {
		api.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "get product", id, err)
		return
	}
	input.apply(product)

	if err := h.repo.UpdateProduct(r.Context(), product); err != nil {
		h.writeRepoError(w, "update product", id, err)
		return
	}
	h.invalidate(r.Context())

	// reload so the response carries the new category
	updated, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "reload product", id, err)
		return
	}
	api.OKResponse(w, catalog.NewProduct(*updated))
}

// HandleToggleActive flips the product between active and inactive.
func (h *ProductsHandler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, "get product", id, err)
		return
	}

	if err := h.repo.SetActive(r.Context(), id, !product.Active); err != nil {
		h.writeRepoError(w, "set product active", id, err)
		return
	}
	product.Active = !product.Active
	h.invalidate(r.Context())

	api.OKResponse(w, catalog.NewProduct(*product))
}

func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		h.writeRepoError(w, "delete product", id, err)
		return
	}
	h.invalidate(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadImage stores the multipart "file" field and returns its URL.
func (h *ProductsHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<10)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		api.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		api.ErrorResponse(w, http.StatusUnsupportedMediaType, "File must be an image")
		return
	}

	url, err := h.images.Upload(r.Context(), header.Filename, contentType, file)
	if errors.Is(err, storage.ErrNotConfigured) {
		api.ErrorResponse(w, http.StatusServiceUnavailable, "Image storage not configured")
		return
	}
	if err != nil {
		h.logger.Error("upload image", zap.String("filename", header.Filename), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	api.CreatedResponse(w, map[string]string{"url": url})
}

func (h *ProductsHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductsHandler) writeRepoError(w http.ResponseWriter, op string, id uuid.UUID, err error) {
	if errors.Is(err, models.ErrProductNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	h.logger.Error(op, zap.String("product_id", id.String()), zap.Error(err))
	api.ErrorResponse(w, http.StatusInternalServerError, "Failed to save product")
}

func (h *ProductsHandler) invalidate(ctx context.Context) {
	if err := h.catalog.Invalidate(ctx); err != nil {
		h.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

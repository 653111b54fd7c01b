package categories

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/models"
)

type CategoryResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:   c.ID.String(),
			Name: c.Name,
			Icon: c.Icon,
		}
	}

	api.OKResponse(w, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string  `json:"name"`
		Icon *string `json:"icon"`
	}

	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return
	}

	category := &models.Category{
		Name: input.Name,
		Icon: input.Icon,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		if errors.Is(err, models.ErrDuplicateCategory) {
			api.ErrorResponse(w, http.StatusConflict, "Category already exists")
			return
		}
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	api.CreatedResponse(w, CategoryResponse{
		ID:   category.ID.String(),
		Name: category.Name,
		Icon: category.Icon,
	})
}

// Package siteconfig serves the admin editor for the landing page settings.
package siteconfig

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/models"
)

type ConfigStore interface {
	GetConfig(ctx context.Context) (*models.SiteConfig, error)
	UpdateConfig(ctx context.Context, id uuid.UUID, cfg *models.SiteConfig) (*models.SiteConfig, error)
}

type ConfigHandler struct {
	repo   ConfigStore
	logger *zap.Logger
}

func NewConfigHandler(repo ConfigStore, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{repo: repo, logger: logger}
}

func (h *ConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.repo.GetConfig(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrConfigNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Site config not found")
			return
		}
		h.logger.Error("get site config", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve site config")
		return
	}
	api.OKResponse(w, cfg)
}

func (h *ConfigHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Site config not found")
		return
	}

	var input models.SiteConfig
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	input.ID = id

	updated, err := h.repo.UpdateConfig(r.Context(), id, &input)
	if err != nil {
		if errors.Is(err, models.ErrConfigNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Site config not found")
			return
		}
		h.logger.Error("update site config", zap.String("id", id.String()), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to update site config")
		return
	}
	api.OKResponse(w, updated)
}

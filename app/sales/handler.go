// Package sales serves the admin sales history endpoints.
package sales

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/reports"
)

const defaultRecentLimit = 5

type SalesStore interface {
	ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, error)
	GetRecentSales(ctx context.Context, limit int) ([]models.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
}

type SummaryResponse struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type ListResponse struct {
	Sales           []SaleResponse        `json:"sales"`
	Summary         SummaryResponse       `json:"summary"`
	ByPaymentMethod []MethodTotalResponse `json:"by_payment_method"`
}

type SalesHandler struct {
	repo   SalesStore
	loc    *time.Location
	logger *zap.Logger
}

func NewSalesHandler(repo SalesStore, loc *time.Location, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{repo: repo, loc: loc, logger: logger}
}

// HandleList filters the sales history. start and end are calendar days in
// the event timezone, both inclusive; q matches part of the sale id.
func (h *SalesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filters, msg := h.parseFilters(r)
	if msg != "" {
		api.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.repo.ListSales(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sales", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		matched := res[:0]
		for _, s := range res {
			if strings.Contains(s.ID.String(), q) {
				matched = append(matched, s)
			}
		}
		res = matched
	}

	summary := reports.Summarize(res)
	resp := ListResponse{
		Sales:           make([]SaleResponse, len(res)),
		Summary:         SummaryResponse{Total: summary.Total.InexactFloat64(), Count: summary.Count},
		ByPaymentMethod: NewMethodTotals(reports.ByPaymentMethod(res)),
	}
	for i, s := range res {
		resp.Sales[i] = NewSaleResponse(s)
	}
	api.OKResponse(w, resp)
}

func (h *SalesHandler) parseFilters(r *http.Request) (models.SaleFilters, string) {
	q := r.URL.Query()
	var filters models.SaleFilters

	if v := q.Get("start"); v != "" {
		day, err := reports.ParseDay(v, h.loc)
		if err != nil {
			return filters, "Invalid start date"
		}
		start, _ := reports.DayBounds(day, h.loc)
		filters.Start = &start
	}
	if v := q.Get("end"); v != "" {
		day, err := reports.ParseDay(v, h.loc)
		if err != nil {
			return filters, "Invalid end date"
		}
		_, end := reports.DayBounds(day, h.loc)
		filters.End = &end
	}
	if v := q.Get("payment_method"); v != "" && v != "all" {
		filters.PaymentMethod = v
	}
	if v := q.Get("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filters, "Invalid min_amount"
		}
		filters.MinAmount = &d
	}
	if v := q.Get("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filters, "Invalid max_amount"
		}
		filters.MaxAmount = &d
	}
	return filters, ""
}

func (h *SalesHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	res, err := h.repo.GetRecentSales(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent sales", zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}

	out := make([]SaleResponse, len(res))
	for i, s := range res {
		out[i] = NewSaleResponse(s)
	}
	api.OKResponse(w, out)
}

func (h *SalesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Sale not found")
		return
	}

	sale, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrSaleNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.Error("get sale", zap.String("sale_id", id.String()), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sale")
		return
	}
	api.OKResponse(w, NewSaleResponse(*sale))
}

// HandleDelete removes a sale and its items. Stock is not given back.
func (h *SalesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Sale not found")
		return
	}

	if err := h.repo.DeleteSale(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrSaleNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.Error("delete sale", zap.String("sale_id", id.String()), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete sale")
		return
	}

	h.logger.Info("sale deleted", zap.String("sale_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

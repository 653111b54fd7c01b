// Package dashboard serves the admin daily overview.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/app/sales"
	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/reports"
)

const recentLimit = 5

type SalesReader interface {
	ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, error)
	GetRecentSales(ctx context.Context, limit int) ([]models.Sale, error)
}

type StatsResponse struct {
	TotalSales float64 `json:"total_sales"`
	OrderCount int     `json:"order_count"`
	AvgTicket  float64 `json:"avg_ticket"`
}

type HourResponse struct {
	Hour  string  `json:"hour"`
	Sales float64 `json:"sales"`
	Count int     `json:"count"`
}

type Response struct {
	Date        string               `json:"date"`
	Stats       StatsResponse        `json:"stats"`
	RecentSales []sales.SaleResponse `json:"recent_sales"`
	Hourly      []HourResponse       `json:"hourly"`
}

type DashboardHandler struct {
	repo   SalesReader
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewDashboardHandler(repo SalesReader, loc *time.Location, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// HandleGet reports the given day (?date=YYYY-MM-DD, default today) in the
// event timezone.
func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := reports.ParseDay(v, h.loc)
		if err != nil {
			api.ErrorResponse(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}
	start, end := reports.DayBounds(day, h.loc)

	var daySales, recent []models.Sale
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		daySales, err = h.repo.ListSales(ctx, models.SaleFilters{Start: &start, End: &end})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.repo.GetRecentSales(ctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", zap.Time("day", start), zap.Error(err))
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	stats := reports.ComputeDailyStats(daySales)
	resp := Response{
		Date: day.Format(reports.DateLayout),
		Stats: StatsResponse{
			TotalSales: stats.TotalSales.InexactFloat64(),
			OrderCount: stats.OrderCount,
			AvgTicket:  stats.AvgTicket.InexactFloat64(),
		},
		RecentSales: make([]sales.SaleResponse, len(recent)),
	}
	for i, s := range recent {
		resp.RecentSales[i] = sales.NewSaleResponse(s)
	}
	for _, b := range reports.HourlyPerformance(daySales, h.loc) {
		resp.Hourly = append(resp.Hourly, HourResponse{Hour: b.Hour, Sales: b.Sales.InexactFloat64(), Count: b.Count})
	}

	api.OKResponse(w, resp)
}

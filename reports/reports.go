// Package reports aggregates completed sales for the dashboard and the
// sales history page.
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arraiapos/pos/models"
)

const DateLayout = "2006-01-02"

type DailyStats struct {
	TotalSales decimal.Decimal
	OrderCount int
	AvgTicket  decimal.Decimal
}

type HourBucket struct {
	Hour  string
	Sales decimal.Decimal
	Count int
}

type MethodTotal struct {
	Method string
	Total  decimal.Decimal
	Count  int
}

type Summary struct {
	Total decimal.Decimal
	Count int
}

// DayBounds returns the half-open range [start, end) covering the calendar
// day of t in loc, expressed in UTC.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// ParseDay parses a YYYY-MM-DD date as a day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return day, nil
}

func ComputeDailyStats(sales []models.Sale) DailyStats {
	s := Summarize(sales)
	stats := DailyStats{TotalSales: s.Total, OrderCount: s.Count, AvgTicket: decimal.Zero}
	if s.Count > 0 {
		stats.AvgTicket = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	return stats
}

// HourlyPerformance always returns 24 buckets, "00:00" through "23:00",
// keyed by the hour the sale happened in loc.
func HourlyPerformance(sales []models.Sale, loc *time.Location) []HourBucket {
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: fmt.Sprintf("%02d:00", h), Sales: decimal.Zero}
	}
	for _, s := range sales {
		h := s.CreatedAt.In(loc).Hour()
		buckets[h].Sales = buckets[h].Sales.Add(s.TotalAmount)
		buckets[h].Count++
	}
	return buckets
}

// ByPaymentMethod sums sales per payment method, ordered by method name.
func ByPaymentMethod(sales []models.Sale) []MethodTotal {
	idx := make(map[string]int)
	var totals []MethodTotal
	for _, s := range sales {
		i, ok := idx[s.PaymentMethod]
		if !ok {
			i = len(totals)
			idx[s.PaymentMethod] = i
			totals = append(totals, MethodTotal{Method: s.PaymentMethod, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(s.TotalAmount)
		totals[i].Count++
	}
	sort.Slice(totals, func(a, b int) bool { return totals[a].Method < totals[b].Method })
	return totals
}

func Summarize(sales []models.Sale) Summary {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return Summary{Total: total, Count: len(sales)}
}

package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraiapos/pos/models"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func sale(at time.Time, amount int64, method string) models.Sale {
	return models.Sale{CreatedAt: at, TotalAmount: decimal.NewFromInt(amount), PaymentMethod: method}
}

func TestDayBounds(t *testing.T) {
	loc := saoPaulo(t)

	// 01:30 UTC on the 25th is still the 24th in São Paulo (UTC-3).
	start, end := DayBounds(time.Date(2026, 6, 25, 1, 30, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2026, 6, 24, 3, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 6, 25, 3, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.UTC, start.Location())
}

func TestParseDay(t *testing.T) {
	loc := saoPaulo(t)

	day, err := ParseDay("2026-06-24", loc)
	require.NoError(t, err)
	start, _ := DayBounds(day, loc)
	assert.Equal(t, time.Date(2026, 6, 24, 3, 0, 0, 0, time.UTC), start)

	_, err = ParseDay("24/06/2026", loc)
	assert.Error(t, err)
}

func TestComputeDailyStats(t *testing.T) {
	testCases := []struct {
		name      string
		sales     []models.Sale
		wantTotal string
		wantCount int
		wantAvg   string
	}{
		{
			name:      "No sales",
			sales:     nil,
			wantTotal: "0",
			wantCount: 0,
			wantAvg:   "0",
		},
		{
			name: "Average is rounded to cents",
			sales: []models.Sale{
				sale(time.Now(), 10, "pix"),
				sale(time.Now(), 10, "pix"),
				sale(time.Now(), 5, "money"),
			},
			wantTotal: "25",
			wantCount: 3,
			wantAvg:   "8.33",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := ComputeDailyStats(tc.sales)
			assert.Equal(t, tc.wantTotal, stats.TotalSales.String())
			assert.Equal(t, tc.wantCount, stats.OrderCount)
			assert.Equal(t, tc.wantAvg, stats.AvgTicket.String())
		})
	}
}

func TestHourlyPerformance(t *testing.T) {
	loc := saoPaulo(t)

	t.Run("Always 24 zero-filled buckets", func(t *testing.T) {
		buckets := HourlyPerformance(nil, loc)
		require.Len(t, buckets, 24)
		assert.Equal(t, "00:00", buckets[0].Hour)
		assert.Equal(t, "09:00", buckets[9].Hour)
		assert.Equal(t, "23:00", buckets[23].Hour)
		for _, b := range buckets {
			assert.True(t, b.Sales.IsZero())
			assert.Zero(t, b.Count)
		}
	})

	t.Run("Sales land in their local hour", func(t *testing.T) {
		sales := []models.Sale{
			sale(time.Date(2026, 6, 24, 22, 15, 0, 0, time.UTC), 10, "pix"), // 19:15 local
			sale(time.Date(2026, 6, 24, 22, 50, 0, 0, time.UTC), 5, "debit"),
			sale(time.Date(2026, 6, 25, 2, 0, 0, 0, time.UTC), 7, "money"), // 23:00 local
		}
		buckets := HourlyPerformance(sales, loc)
		require.Len(t, buckets, 24)
		assert.Equal(t, "15", buckets[19].Sales.String())
		assert.Equal(t, 2, buckets[19].Count)
		assert.Equal(t, "7", buckets[23].Sales.String())
		assert.True(t, buckets[22].Sales.IsZero())
	})
}

func TestByPaymentMethod(t *testing.T) {
	now := time.Now()
	totals := ByPaymentMethod([]models.Sale{
		sale(now, 10, "pix"),
		sale(now, 20, "credit"),
		sale(now, 5, "pix"),
	})

	require.Len(t, totals, 2)
	assert.Equal(t, "credit", totals[0].Method)
	assert.Equal(t, "20", totals[0].Total.String())
	assert.Equal(t, "pix", totals[1].Method)
	assert.Equal(t, "15", totals[1].Total.String())
	assert.Equal(t, 2, totals[1].Count)

	assert.Empty(t, ByPaymentMethod(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]models.Sale{sale(time.Now(), 10, "pix"), sale(time.Now(), 15, "pix")})
	assert.Equal(t, "25", s.Total.String())
	assert.Equal(t, 2, s.Count)
}

package sales

import (
	"time"

	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/reports"
)

type SaleItemResponse struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	TotalAmount    float64            `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	AmountReceived *float64           `json:"amount_received,omitempty"`
	Change         *float64           `json:"change,omitempty"`
	Items          []SaleItemResponse `json:"items,omitempty"`
}

// NewSaleResponse maps a sale and whatever items were loaded with it.
func NewSaleResponse(s models.Sale) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID.String(),
		CreatedAt:     s.CreatedAt,
		TotalAmount:   s.TotalAmount.InexactFloat64(),
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
	}
	if s.AmountReceived != nil {
		v := s.AmountReceived.InexactFloat64()
		resp.AmountReceived = &v
	}
	if s.Change != nil {
		v := s.Change.InexactFloat64()
		resp.Change = &v
	}
	for _, item := range s.Items {
		ir := SaleItemResponse{
			ID:          item.ID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			TotalPrice:  item.TotalPrice.InexactFloat64(),
		}
		if item.ProductID != nil {
			id := item.ProductID.String()
			ir.ProductID = &id
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

type MethodTotalResponse struct {
	Method string  `json:"payment_method"`
	Total  float64 `json:"total"`
	Count  int     `json:"count"`
}

func NewMethodTotals(totals []reports.MethodTotal) []MethodTotalResponse {
	out := make([]MethodTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = MethodTotalResponse{Method: t.Method, Total: t.Total.InexactFloat64(), Count: t.Count}
	}
	return out
}

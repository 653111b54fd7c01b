package pos

import (
	"github.com/google/uuid"

	"github.com/arraiapos/pos/pos/cart"
	"github.com/arraiapos/pos/pos/payment"
)

type LineResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

type PaymentResponse struct {
	State      string   `json:"state"`
	Method     string   `json:"method,omitempty"`
	Received   *float64 `json:"received,omitempty"`
	Change     *float64 `json:"change,omitempty"`
	CanConfirm bool     `json:"can_confirm"`
}

type SessionResponse struct {
	ID        string          `json:"id"`
	Lines     []LineResponse  `json:"lines"`
	Total     float64         `json:"total"`
	ItemCount int             `json:"item_count"`
	Payment   PaymentResponse `json:"payment"`
}

func newSessionResponse(id uuid.UUID, c *cart.Cart, sel *payment.Selector) SessionResponse {
	total := c.Total()
	lines := c.Lines()

	resp := SessionResponse{
		ID:        id.String(),
		Lines:     make([]LineResponse, len(lines)),
		Total:     total.InexactFloat64(),
		ItemCount: c.ItemCount(),
		Payment: PaymentResponse{
			State:      string(sel.State()),
			Method:     string(sel.Method()),
			CanConfirm: sel.CanConfirm(total),
		},
	}
	for i, l := range lines {
		resp.Lines[i] = LineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			UnitPrice: l.UnitPrice.InexactFloat64(),
			Quantity:  l.Quantity,
			Total:     l.Total().InexactFloat64(),
		}
	}
	if sel.Method() == payment.Money {
		received := sel.Received().InexactFloat64()
		resp.Payment.Received = &received
		if change, ok := sel.Change(total); ok {
			v := change.InexactFloat64()
			resp.Payment.Change = &v
		}
	}
	return resp
}

type ChangeResponse struct {
	Valid  bool     `json:"valid"`
	Change *float64 `json:"change,omitempty"`
}

// Package pos serves the terminal endpoints: session cart, payment dialog
// and checkout.
package pos

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/app/sales"
	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/pos/cart"
	"github.com/arraiapos/pos/pos/checkout"
	"github.com/arraiapos/pos/pos/payment"
	"github.com/arraiapos/pos/pos/session"
)

type ProductProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type Checkouter interface {
	Checkout(ctx context.Context, c *cart.Cart, sel *payment.Selector, idempotencyKey string) (*models.Sale, error)
}

type SessionStore interface {
	Create() *session.Session
	Get(id uuid.UUID) (*session.Session, error)
	Delete(id uuid.UUID) error
}

type POSHandler struct {
	sessions SessionStore
	products ProductProvider
	checkout Checkouter
	logger   *zap.Logger
}

func NewPOSHandler(sessions SessionStore, products ProductProvider, checkout Checkouter, logger *zap.Logger) *POSHandler {
	return &POSHandler{
		sessions: sessions,
		products: products,
		checkout: checkout,
		logger:   logger,
	}
}

func (h *POSHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	var resp SessionResponse
	_ = s.Do(func(c *cart.Cart, sel *payment.Selector) error {
		resp = newSessionResponse(s.ID, c, sel)
		return nil
	})
	api.CreatedResponse(w, resp)
}

func (h *POSHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		return nil
	})
}

func (h *POSHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err == nil {
		err = h.sessions.Delete(id)
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *POSHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		product, err := h.products.GetByID(r.Context(), input.ProductID)
		if err != nil {
			return err
		}
		return c.Add(*product)
	})
}

func (h *POSHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, cart.ErrLineNotFound.Error())
		return
	}
	var input struct {
		Delta int `json:"delta"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		if c.Quantity(productID) == 0 {
			return cart.ErrLineNotFound
		}
		stock := 0
		if input.Delta > 0 {
			product, err := h.products.GetByID(r.Context(), productID)
			if err != nil {
				return err
			}
			stock = product.Stock
		}
		return c.UpdateQuantity(productID, input.Delta, stock)
	})
}

func (h *POSHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, cart.ErrLineNotFound.Error())
		return
	}
	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		return c.Remove(productID)
	})
}

func (h *POSHandler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		c.Clear()
		return nil
	})
}

// HandleSelectPayment picks a method and, for money, records the amount
// received.
func (h *POSHandler) HandleSelectPayment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Method   string           `json:"method"`
		Received *decimal.Decimal `json:"received"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	method, err := payment.ParseMethod(input.Method)
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Received != nil && input.Received.IsNegative() {
		api.ErrorResponse(w, http.StatusBadRequest, payment.ErrNegativeAmount.Error())
		return
	}

	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		if input.Received != nil && method != payment.Money {
			return payment.ErrNotMoney
		}
		if sel.State() == payment.StateSelected && sel.Method() == method && input.Received != nil {
			return sel.SetReceived(*input.Received)
		}
		if err := sel.Select(method); err != nil {
			return err
		}
		if input.Received != nil {
			return sel.SetReceived(*input.Received)
		}
		return nil
	})
}

func (h *POSHandler) HandlePaymentBack(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		return sel.Back()
	})
}

// HandleClosePayment closes the dialog; the selection is discarded.
func (h *POSHandler) HandleClosePayment(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *cart.Cart, sel *payment.Selector) error {
		sel.Reset()
		return nil
	})
}

func (h *POSHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	key := r.Header.Get("Idempotency-Key")

	var sale *models.Sale
	err := s.Do(func(c *cart.Cart, sel *payment.Selector) error {
		var err error
		sale, err = h.checkout.Checkout(r.Context(), c, sel, key)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	api.CreatedResponse(w, sales.NewSaleResponse(*sale))
}

// HandleChange is the standalone change calculator.
func (h *POSHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Total    decimal.Decimal `json:"total"`
		Received decimal.Decimal `json:"received"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	change, ok := payment.CalculateChange(input.Total, input.Received)
	resp := ChangeResponse{Valid: ok}
	if ok {
		v := change.InexactFloat64()
		resp.Change = &v
	}
	api.OKResponse(w, resp)
}

func (h *POSHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// withSession runs fn under the session lock and answers with the session
// state, or with the mapped error. A rejected operation leaves the state as
// it was.
func (h *POSHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(c *cart.Cart, sel *payment.Selector) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp SessionResponse
	err := s.Do(func(c *cart.Cart, sel *payment.Selector) error {
		if err := fn(c, sel); err != nil {
			return err
		}
		resp = newSessionResponse(s.ID, c, sel)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	api.OKResponse(w, resp)
}

func (h *POSHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, payment.ErrAlreadyConfirmed):
		status = http.StatusConflict
	case errors.Is(err, cart.ErrInactive),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, payment.ErrNotConfirmable),
		errors.Is(err, payment.ErrNotMoney):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, payment.ErrNegativeAmount),
		errors.Is(err, payment.ErrUnknownMethod):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("pos operation failed", zap.Error(err))
		api.ErrorResponse(w, status, "Operation failed, please try again")
		return
	}
	api.ErrorResponse(w, status, err.Error())
}

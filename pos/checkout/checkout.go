// Package checkout commits a confirmed POS cart: it decrements stock for every
// line, records the sale and, when any step fails, gives the stock back.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/pos/cart"
	"github.com/arraiapos/pos/pos/payment"
)

var ErrEmptyCart = errors.New("cart is empty")

type StockStore interface {
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

type SaleStore interface {
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error)
}

// CatalogInvalidator drops cached catalog reads so the next load shows the new stock.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type SalePublisher interface {
	PublishSaleCompleted(ctx context.Context, sale models.Sale) error
}

// Observer receives checkout outcomes, typically for metrics.
type Observer interface {
	CheckoutCompleted(method string, total decimal.Decimal)
	CheckoutFailed(reason string)
	StockCompensated(lines int, failed int)
}

type Orchestrator struct {
	stock     StockStore
	sales     SaleStore
	catalog   CatalogInvalidator
	publisher SalePublisher
	observer  Observer
	logger    *zap.Logger
}

func NewOrchestrator(
	stock StockStore,
	sales SaleStore,
	catalog CatalogInvalidator,
	publisher SalePublisher,
	observer Observer,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		stock:     stock,
		sales:     sales,
		catalog:   catalog,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

type decrement struct {
	productID uuid.UUID
	name      string
	quantity  int
}

// Checkout confirms the payment and commits the cart. On success the cart is
// cleared and the selector reset; on failure both are left untouched so the
// operator can retry. A non-empty idempotencyKey makes retries return the
// sale recorded by the first successful attempt, even though that attempt
// already emptied the cart.
func (o *Orchestrator) Checkout(ctx context.Context, c *cart.Cart, sel *payment.Selector, idempotencyKey string) (*models.Sale, error) {
	if idempotencyKey != "" {
		existing, err := o.sales.GetByIdempotencyKey(ctx, idempotencyKey)
		switch {
		case err == nil:
			o.logger.Info("checkout replayed",
				zap.String("idempotency_key", idempotencyKey),
				zap.String("sale_id", existing.ID.String()))
			c.Clear()
			sel.Reset()
			return existing, nil
		case !errors.Is(err, models.ErrSaleNotFound):
			o.observer.CheckoutFailed("lookup")
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	total := c.Total()
	if !sel.CanConfirm(total) {
		return nil, payment.ErrNotConfirmable
	}

	sale := buildSale(c.Lines(), total, sel, idempotencyKey)

	done, err := o.decrementAll(ctx, c.Lines())
	if err != nil {
		o.compensate(ctx, done, "stock_decrement_failed")
		o.observer.CheckoutFailed("stock")
		return nil, err
	}

	if err := o.sales.CreateSale(ctx, sale); err != nil {
		o.compensate(ctx, done, "sale_persistence_failed")
		if errors.Is(err, models.ErrDuplicateSale) && idempotencyKey != "" {
			existing, lookupErr := o.sales.GetByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil {
				o.finish(c, sel, total)
				return existing, nil
			}
		}
		o.observer.CheckoutFailed("sale")
		return nil, fmt.Errorf("create sale: %w", err)
	}

	o.finish(c, sel, total)
	o.observer.CheckoutCompleted(sale.PaymentMethod, sale.TotalAmount)
	o.logger.Info("sale completed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("payment_method", sale.PaymentMethod),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Int("items", len(sale.Items)))

	if err := o.catalog.Invalidate(ctx); err != nil {
		o.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
	if err := o.publisher.PublishSaleCompleted(ctx, *sale); err != nil {
		o.logger.Warn("sale event not published", zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
	return sale, nil
}

func (o *Orchestrator) finish(c *cart.Cart, sel *payment.Selector, total decimal.Decimal) {
	// Confirm only fails when the selector is already confirmed; Reset below
	// leaves it unselected either way.
	_ = sel.Confirm(total)
	c.Clear()
	sel.Reset()
}

// decrementAll issues one decrement per line concurrently and waits for all of
// them. It returns the decrements that succeeded so they can be compensated.
func (o *Orchestrator) decrementAll(ctx context.Context, lines []cart.Line) ([]decrement, error) {
	var (
		mu   sync.Mutex
		done []decrement
		g    errgroup.Group
	)

	for _, l := range lines {
		d := decrement{productID: l.ProductID, name: l.Name, quantity: l.Quantity}
		g.Go(func() error {
			if err := o.stock.DecrementStock(ctx, d.productID, d.quantity); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", d.name, err)
			}
			mu.Lock()
			done = append(done, d)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return done, err
}

func (o *Orchestrator) compensate(ctx context.Context, done []decrement, reason string) {
	if len(done) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	o.logger.Warn("compensating stock",
		zap.Int("lines", len(done)),
		zap.String("reason", reason))

	failed := 0
	for _, d := range done {
		if err := o.stock.IncrementStock(ctx, d.productID, d.quantity); err != nil {
			failed++
			o.logger.Error("stock compensation failed, manual reconciliation required",
				zap.String("product_id", d.productID.String()),
				zap.Int("quantity", d.quantity),
				zap.Error(err))
		}
	}
	o.observer.StockCompensated(len(done), failed)
}

func buildSale(lines []cart.Line, total decimal.Decimal, sel *payment.Selector, idempotencyKey string) *models.Sale {
	sale := &models.Sale{
		TotalAmount:   total,
		PaymentMethod: string(sel.Method()),
		Status:        models.SaleStatusCompleted,
		Items:         make([]models.SaleItem, 0, len(lines)),
	}
	if idempotencyKey != "" {
		key := idempotencyKey
		sale.IdempotencyKey = &key
	}
	if sel.Method() == payment.Money {
		received := sel.Received()
		sale.AmountReceived = &received
		if change, ok := sel.Change(total); ok {
			sale.Change = &change
		}
	}

	for _, l := range lines {
		productID := l.ProductID
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   &productID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.Total(),
		})
	}
	return sale
}

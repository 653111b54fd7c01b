package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/pos/cart"
	"github.com/arraiapos/pos/pos/payment"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*Store, *clock) {
	c := &clock{t: time.Date(2026, 6, 24, 18, 0, 0, 0, time.UTC)}
	st := NewStore(ttl)
	st.now = c.now
	return st, c
}

func TestStore_CreateGetDelete(t *testing.T) {
	st, _ := newTestStore(time.Hour)

	s := st.Create()
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(s.ID), ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(uuid.New()), ErrSessionNotFound)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	a, b := st.Create(), st.Create()
	product := models.Product{ID: uuid.New(), Name: "Canjica", Price: decimal.NewFromInt(8), Active: true, Stock: 3}

	require.NoError(t, a.Do(func(c *cart.Cart, sel *payment.Selector) error {
		return c.Add(product)
	}))

	_ = b.Do(func(c *cart.Cart, sel *payment.Selector) error {
		assert.True(t, c.IsEmpty())
		return nil
	})
}

func TestStore_Sweep(t *testing.T) {
	st, clk := newTestStore(time.Hour)

	idle := st.Create()
	clk.t = clk.t.Add(45 * time.Minute)
	active := st.Create()
	clk.t = clk.t.Add(30 * time.Minute)

	_, err := st.Get(active.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Sweep())
	_, err = st.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(active.ID)
	assert.NoError(t, err)
}

func TestStore_SweepDisabled(t *testing.T) {
	st, clk := newTestStore(0)
	st.Create()
	clk.t = clk.t.Add(1000 * time.Hour)
	assert.Zero(t, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

func TestSession_DoSerializes(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	product := models.Product{ID: uuid.New(), Name: "Pipoca", Price: decimal.NewFromInt(4), Active: true, Stock: 100}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(c *cart.Cart, sel *payment.Selector) error {
				return c.Add(product)
			})
		}()
	}
	wg.Wait()

	_ = s.Do(func(c *cart.Cart, sel *payment.Selector) error {
		assert.Equal(t, 50, c.Quantity(product.ID))
		return nil
	})
}

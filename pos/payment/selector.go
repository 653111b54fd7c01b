// Package payment implements the checkout payment dialog: choosing a method
// and, for cash, computing change.
package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Method string

const (
	Unset  Method = ""
	Money  Method = "money"
	Pix    Method = "pix"
	Debit  Method = "debit"
	Credit Method = "credit"
)

type State string

const (
	StateUnselected State = "unselected"
	StateSelected   State = "selected"
	StateConfirmed  State = "confirmed"
)

var (
	ErrUnknownMethod    = errors.New("unknown payment method")
	ErrNotMoney         = errors.New("received amount only applies to money payments")
	ErrNegativeAmount   = errors.New("received amount must not be negative")
	ErrNotConfirmable   = errors.New("payment cannot be confirmed")
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
)

// ParseMethod maps a label to a Method.
func ParseMethod(label string) (Method, error) {
	switch m := Method(label); m {
	case Money, Pix, Debit, Credit:
		return m, nil
	default:
		return Unset, fmt.Errorf("%w: %q", ErrUnknownMethod, label)
	}
}

// Selector is the payment state machine:
//
//	Unselected -> {Money, Pix, Debit, Credit} -> Confirmed
//
// Back returns a selected method to Unselected; Reset does so from any state.
type Selector struct {
	state    State
	method   Method
	received decimal.Decimal
}

func NewSelector() *Selector {
	return &Selector{state: StateUnselected}
}

func (s *Selector) State() State { return s.state }

func (s *Selector) Method() Method { return s.method }

func (s *Selector) Received() decimal.Decimal { return s.received }

// Select picks a method. Choosing a new method discards a previous received amount.
func (s *Selector) Select(m Method) error {
	if s.state == StateConfirmed {
		return ErrAlreadyConfirmed
	}
	if _, err := ParseMethod(string(m)); err != nil {
		return err
	}
	s.state = StateSelected
	s.method = m
	s.received = decimal.Zero
	return nil
}

func (s *Selector) SetReceived(amount decimal.Decimal) error {
	if s.state == StateConfirmed {
		return ErrAlreadyConfirmed
	}
	if s.state != StateSelected || s.method != Money {
		return ErrNotMoney
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	s.received = amount
	return nil
}

// Back returns to method selection.
func (s *Selector) Back() error {
	if s.state == StateConfirmed {
		return ErrAlreadyConfirmed
	}
	s.state = StateUnselected
	s.method = Unset
	s.received = decimal.Zero
	return nil
}

// Reset is the dialog-close transition and always succeeds.
func (s *Selector) Reset() {
	s.state = StateUnselected
	s.method = Unset
	s.received = decimal.Zero
}

// Change is defined only for money payments covering a positive total.
func (s *Selector) Change(total decimal.Decimal) (decimal.Decimal, bool) {
	if s.method != Money {
		return decimal.Zero, false
	}
	return CalculateChange(total, s.received)
}

func (s *Selector) CanConfirm(total decimal.Decimal) bool {
	if s.state != StateSelected {
		return false
	}
	if s.method == Money {
		_, ok := s.Change(total)
		return ok
	}
	return true
}

// Confirm moves to the terminal Confirmed state.
func (s *Selector) Confirm(total decimal.Decimal) error {
	if s.state == StateConfirmed {
		return ErrAlreadyConfirmed
	}
	if !s.CanConfirm(total) {
		return ErrNotConfirmable
	}
	s.state = StateConfirmed
	return nil
}

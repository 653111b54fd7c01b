// Package events announces completed sales on RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/arraiapos/pos/models"
)

type SaleItemEvent struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type SaleCompletedEvent struct {
	SaleID        string          `json:"sale_id"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []SaleItemEvent `json:"items"`
}

func NewSaleCompletedEvent(sale models.Sale) SaleCompletedEvent {
	ev := SaleCompletedEvent{
		SaleID:        sale.ID.String(),
		CreatedAt:     sale.CreatedAt,
		PaymentMethod: sale.PaymentMethod,
		TotalAmount:   sale.TotalAmount,
		Items:         make([]SaleItemEvent, len(sale.Items)),
	}
	for i, item := range sale.Items {
		ev.Items[i] = SaleItemEvent{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
		if item.ProductID != nil {
			ev.Items[i].ProductID = item.ProductID.String()
		}
	}
	return ev
}

// RoutingKey is sale.completed.<method>, e.g. sale.completed.pix.
func RoutingKey(sale models.Sale) string {
	return fmt.Sprintf("sale.completed.%s", sale.PaymentMethod)
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch channel
}

func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) PublishSaleCompleted(ctx context.Context, sale models.Sale) error {
	body, err := json.Marshal(NewSaleCompletedEvent(sale))
	if err != nil {
		return fmt.Errorf("could not marshal sale event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		ExchangeName,     // exchange
		RoutingKey(sale), // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    sale.ID.String(),
			Timestamp:    sale.CreatedAt,
			Body:         body,
		},
	)
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSaleCompleted(ctx context.Context, sale models.Sale) error {
	return nil
}

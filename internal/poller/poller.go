package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic   = "order-placed"
	DefaultGroupID = "cart-service-consumer"

	readRetryDelay = time.Second
)

// CartClearer empties a customer's cart. A customer without a cart is a no-op.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// OrderPlaced is the part of the order event the poller reads.
type OrderPlaced struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
}

// Poller clears a customer's cart once their order has been placed.
type Poller struct {
	carts  CartClearer
	reader messageReader
	log    *slog.Logger
}

func NewPoller(carts CartClearer, cfg Config, log *slog.Logger) *Poller {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(carts, reader, log)
}

func newPoller(carts CartClearer, reader messageReader, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{carts: carts, reader: reader, log: log}
}

// Run consumes until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.next(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.ErrorContext(ctx, "error reading message", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Error("error closing reader", "error", err)
	}
}

// next handles one message. Only read failures are returned; a message that
// cannot be handled is logged and skipped.
func (p *Poller) next(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		return err
	}
	log := p.log.With("topic", m.Topic, "partition", m.Partition, "offset", m.Offset)

	var event OrderPlaced
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.WarnContext(ctx, "skipping malformed order event", "error", err)
		return nil
	}
	if event.CustomerID == "" {
		log.WarnContext(ctx, "skipping order event without customerId", "order_id", event.OrderID)
		return nil
	}

	if err := p.carts.Clear(ctx, event.CustomerID); err != nil {
		log.ErrorContext(ctx, "failed to clear cart", "customer_id", event.CustomerID, "order_id", event.OrderID, "error", err)
		return nil
	}
	log.InfoContext(ctx, "cart cleared after order", "customer_id", event.CustomerID, "order_id", event.OrderID)
	return nil
}

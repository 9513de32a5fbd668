package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/contracts"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type PublisherOptions struct {
	PublishEnveloped bool
	Producer         string
	// PartitionKey orders envelopes across checkouts. Cart ids change on
	// every checkout, so the stable storage key is used instead.
	PartitionKey string
}

type RabbitCartEventsPublisher struct {
	ch                 channel
	seqRepo            SequenceRepository
	publishEnveloped   bool
	producerIdentifier string
	partitionKey       string
	now                func() time.Time
}

func NewRabbitCartEventsPublisher(conn *amqp.Connection, seqRepo SequenceRepository, opts PublisherOptions) (*RabbitCartEventsPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newPublisher(ch, seqRepo, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(ch channel, seqRepo SequenceRepository, opts PublisherOptions) (*RabbitCartEventsPublisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = contracts.CartServiceProducer
	}
	partition := opts.PartitionKey
	if partition == "" {
		partition = cart.DefaultStorageKey
	}

	return &RabbitCartEventsPublisher{
		ch:                 ch,
		seqRepo:            seqRepo,
		publishEnveloped:   opts.PublishEnveloped,
		producerIdentifier: producer,
		partitionKey:       partition,
		now:                func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *RabbitCartEventsPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitCartEventsPublisher) PublishCartCheckedOut(ctx context.Context, snap cart.Snapshot) error {
	timestamp := p.now()

	if !p.publishEnveloped {
		ev := CartCheckedOut{
			EventType:   EventTypeCartCheckedOut,
			CartID:      snap.CartID,
			TotalAmount: snap.Total.InexactFloat64(),
			Timestamp:   timestamp,
		}
		for _, l := range snap.Lines {
			ev.Items = append(ev.Items, CartItemEvent{
				Title:    l.Title,
				Quantity: l.Quantity,
				Price:    l.UnitPrice.InexactFloat64(),
			})
		}
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal CartCheckedOut: %w", err)
		}
		return p.publishJSON(ctx, CartCheckedOutRoutingKey, body)
	}

	seq, err := p.seqRepo.NextSequence(ctx, p.partitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := contracts.BuildCartCheckedOutEvent(snap, contracts.EnvelopeOptions{
		PartitionKey:  p.partitionKey,
		Sequence:      seq,
		Producer:      p.producerIdentifier,
		CorrelationID: CorrelationIDFromContext(ctx),
		OccurredAt:    timestamp,
	})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}
	return p.publishJSON(ctx, CartCheckedOutRoutingKey, body)
}

func (p *RabbitCartEventsPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCartCheckedOut(context.Context, cart.Snapshot) error { return nil }

func (NopPublisher) Close() error { return nil }

type correlationKey struct{}

// WithCorrelationID tags ctx so published envelopes carry the request's id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationKey{}).(string); ok {
		return v
	}
	return ""
}

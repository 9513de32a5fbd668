package contracts

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
)

const (
	CartCheckedOutEventName           = "CartCheckedOut"
	CartCheckedOutEventVersion        = 1
	CartCheckedOutEnvelopedSchemaPath = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	CartServiceProducer               = "package-cart"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	CausationID   string                `json:"causationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	CartID      string               `json:"cartId"`
	Items       []CartCheckedOutItem `json:"items"`
	ItemCount   int                  `json:"itemCount"`
	TotalAmount float64              `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	Title    string  `json:"title"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutPayload copies a cart snapshot into the wire payload.
func BuildCartCheckedOutPayload(snap cart.Snapshot, occurredAt time.Time) CartCheckedOutPayload {
	payload := CartCheckedOutPayload{
		CartID:      snap.CartID,
		Items:       make([]CartCheckedOutItem, 0, len(snap.Lines)),
		ItemCount:   snap.ItemCount,
		TotalAmount: snap.Total.InexactFloat64(),
		Timestamp:   occurredAt,
	}
	for _, l := range snap.Lines {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			Title:    l.Title,
			Image:    l.Image,
			Quantity: l.Quantity,
			Price:    l.UnitPrice.InexactFloat64(),
		})
	}
	return payload
}

func BuildCartCheckedOutEvent(snap cart.Snapshot, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = CartCheckedOutEnvelopedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = CartServiceProducer
	}

	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = snap.CartID
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       BuildCartCheckedOutPayload(snap, occurredAt),
	}
}

// Validate checks the envelope fields consumers rely on.
func (e EventEnvelope) Validate() error {
	switch {
	case e.EventName != CartCheckedOutEventName:
		return errors.New("unexpected eventName")
	case e.EventVersion != CartCheckedOutEventVersion:
		return errors.New("unexpected eventVersion")
	case e.EventID == "":
		return errors.New("eventId is required")
	case e.PartitionKey == "":
		return errors.New("partitionKey is required")
	case e.Sequence <= 0:
		return errors.New("sequence must be positive")
	case e.Schema != CartCheckedOutEnvelopedSchemaPath:
		return errors.New("unexpected schema")
	case e.Payload.CartID == "":
		return errors.New("payload.cartId is required")
	case len(e.Payload.Items) == 0:
		return errors.New("payload.items must not be empty")
	}
	for _, it := range e.Payload.Items {
		if it.Title == "" || it.Quantity < 1 || it.Price < 0 {
			return errors.New("payload.items contains an invalid line")
		}
	}
	return nil
}

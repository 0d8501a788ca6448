// Package notification publishes request events for the delivery workers (push, Telegram).
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/google/uuid"
)

const (
	EventRequestCreated = "request.created"
	EventRequestDelayed = "request.delayed"
)

type Notifier interface {
	RequestCreated(ctx context.Context, r *model.Request) error
	RequestDelayed(ctx context.Context, item *model.QueueItem) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Event struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type RequestCreatedPayload struct {
	RequestID     string    `json:"request_id"`
	Destination   string    `json:"destination"`
	RequestedBy   string    `json:"requested_by"`
	RequestedAt   time.Time `json:"requested_at"`
	ItemCount     int       `json:"item_count"`
	TotalQuantity int       `json:"total_quantity"`
	HasUrgent     bool      `json:"has_urgent"`
}

type RequestDelayedPayload struct {
	RequestID   string    `json:"request_id"`
	LineItemID  string    `json:"line_item_id"`
	PartNumber  string    `json:"part_number"`
	Destination string    `json:"destination"`
	Quantity    int       `json:"quantity"`
	IsUrgent    bool      `json:"is_urgent"`
	RequestedAt time.Time `json:"requested_at"`
}

type KafkaNotifier struct {
	publisher Publisher
}

func NewKafkaNotifier(p Publisher) *KafkaNotifier {
	return &KafkaNotifier{publisher: p}
}

func (n *KafkaNotifier) RequestCreated(ctx context.Context, r *model.Request) error {
	payload := RequestCreatedPayload{
		RequestID:   r.ID,
		Destination: r.Destination,
		RequestedBy: r.RequestedBy,
		RequestedAt: r.RequestedAt,
		ItemCount:   len(r.Items),
	}
	for _, it := range r.Items {
		payload.TotalQuantity += it.Quantity
		payload.HasUrgent = payload.HasUrgent || it.IsUrgent
	}
	return n.publish(ctx, r.ID, EventRequestCreated, payload)
}

func (n *KafkaNotifier) RequestDelayed(ctx context.Context, item *model.QueueItem) error {
	return n.publish(ctx, item.RequestID, EventRequestDelayed, RequestDelayedPayload{
		RequestID:   item.RequestID,
		LineItemID:  item.ItemID,
		PartNumber:  item.PartNumber,
		Destination: item.Destination,
		Quantity:    item.Quantity - item.SuppliedQty,
		IsUrgent:    item.IsUrgent,
		RequestedAt: item.RequestedAt,
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, key, eventType string, payload interface{}) error {
	data, err := json.Marshal(Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, key, data)
}

// Nop drops every notification. Used when Kafka is disabled.
type Nop struct{}

func (Nop) RequestCreated(context.Context, *model.Request) error   { return nil }
func (Nop) RequestDelayed(context.Context, *model.QueueItem) error { return nil }

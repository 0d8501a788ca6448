package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventRequisitionSubmitted = "requisition.submitted"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// RequestListener turns requisitions sent by the production line terminals into requests.
type RequestListener struct {
	consumer MessageReader
	uc       request.UseCase
	parts    part.UseCase
	logger   logger.ZapLogger
}

func NewRequestListener(consumer MessageReader, uc request.UseCase, parts part.UseCase, logger logger.ZapLogger) *RequestListener {
	return &RequestListener{
		consumer: consumer,
		uc:       uc,
		parts:    parts,
		logger:   logger,
	}
}

func (l *RequestListener) Start(ctx context.Context) {
	l.logger.Info("Starting Requisition Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Requisition Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type RequisitionEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Payload   RequisitionPayload `json:"payload"`
	Timestamp time.Time          `json:"timestamp"`
}

type RequisitionPayload struct {
	Destination string                   `json:"destination"`
	RequestedBy string                   `json:"requested_by"`
	RequestedAt *time.Time               `json:"requested_at"`
	Items       []RequisitionItemPayload `json:"items"`
}

// RequisitionItemPayload names the part by id or by any scannable code.
type RequisitionItemPayload struct {
	PartID   string `json:"part_id"`
	PartCode string `json:"part_code"`
	Quantity int    `json:"quantity"`
	IsUrgent bool   `json:"is_urgent"`
}

func (l *RequestListener) processMessage(ctx context.Context, value []byte) {
	var event RequisitionEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventRequisitionSubmitted {
		return
	}

	l.logger.Info("Processing requisition event",
		zap.String("event_id", event.EventID),
		zap.String("destination", event.Payload.Destination))

	input := &dto.CreateRequestInput{
		Destination: event.Payload.Destination,
		RequestedBy: event.Payload.RequestedBy,
		RequestedAt: event.Payload.RequestedAt,
	}
	for _, item := range event.Payload.Items {
		partID := item.PartID
		if partID == "" {
			p, err := l.parts.FindByCode(ctx, item.PartCode)
			if err != nil {
				l.logger.Error("Failed to resolve requisition part",
					zap.String("event_id", event.EventID),
					zap.String("part_code", item.PartCode),
					zap.Error(err))
				return
			}
			partID = p.ID
		}
		input.Items = append(input.Items, dto.CreateItemInput{
			PartID:   partID,
			Quantity: item.Quantity,
			IsUrgent: item.IsUrgent,
		})
	}

	r, err := l.uc.CreateRequest(ctx, input)
	if err != nil {
		l.logger.Error("Failed to create request from requisition",
			zap.String("event_id", event.EventID),
			zap.String("destination", input.Destination),
			zap.Error(err))
		return
	}
	l.logger.Info("Request created from requisition", zap.String("request_id", r.ID))
}

package usecase

import (
	"context"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/notification"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/fekuna/rims-inventory-service/internal/tracing"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultQueueLimit = 100

type requestUseCase struct {
	db           *sqlx.DB
	repo         request.Repository
	parts        part.Repository
	notifier     notification.Notifier
	delayedAfter time.Duration
	logger       logger.ZapLogger
}

func NewRequestUseCase(db *sqlx.DB, repo request.Repository, parts part.Repository, notifier notification.Notifier, delayedAfter time.Duration, log logger.ZapLogger) request.UseCase {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if delayedAfter <= 0 {
		delayedAfter = 15 * time.Minute
	}
	return &requestUseCase{
		db:           db,
		repo:         repo,
		parts:        parts,
		notifier:     notifier,
		delayedAfter: delayedAfter,
		logger:       log,
	}
}

func (uc *requestUseCase) CreateRequest(ctx context.Context, input *dto.CreateRequestInput) (_ *model.Request, err error) {
	ctx, span := tracing.Start(ctx, "request.CreateRequest",
		attribute.String("destination", input.Destination),
		attribute.String("actor", input.RequestedBy))
	defer func() { tracing.End(span, err) }()

	if err := apperror.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	requestedAt := now
	if input.RequestedAt != nil {
		requestedAt = input.RequestedAt.UTC()
	}

	r := &model.Request{
		ID:          uuid.New().String(),
		Destination: input.Destination,
		Status:      model.RequestPending,
		RequestedBy: input.RequestedBy,
		RequestedAt: requestedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range mergeItems(input.Items) {
		r.Items = append(r.Items, model.RequestLineItem{
			ID:        uuid.New().String(),
			RequestID: r.ID,
			PartID:    it.PartID,
			Quantity:  it.Quantity,
			IsUrgent:  it.IsUrgent,
			Status:    model.LineItemPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = database.WithTx(ctx, uc.db, func(tx *sqlx.Tx) error {
		for _, it := range r.Items {
			p, err := uc.parts.Get(ctx, tx, it.PartID)
			if err != nil {
				return err
			}
			if p == nil {
				return apperror.PartNotFound(it.PartID)
			}
			pending, err := uc.repo.HasActivePending(ctx, tx, it.PartID, r.Destination)
			if err != nil {
				return err
			}
			if pending {
				return apperror.AlreadyRequested(it.PartID, r.Destination)
			}
		}
		return uc.repo.Create(ctx, tx, r)
	})
	if err != nil {
		err = apperror.Storage(err)
		if apperror.CodeOf(err) == apperror.CodeStorageFailure {
			uc.logger.Error("create request failed",
				zap.String("destination", r.Destination),
				zap.String("actor", r.RequestedBy),
				zap.Error(err))
		}
		return nil, err
	}

	if nerr := uc.notifier.RequestCreated(ctx, r); nerr != nil {
		uc.logger.Warn("request notification failed", zap.String("request_id", r.ID), zap.Error(nerr))
	}
	return r, nil
}

func (uc *requestUseCase) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	r, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if r == nil {
		return nil, apperror.RequestNotFound(id)
	}
	return r, nil
}

func (uc *requestUseCase) ListRequests(ctx context.Context, filters *dto.RequestFilters) ([]model.Request, int, error) {
	switch model.RequestStatus(filters.Status) {
	case "", model.RequestPending, model.RequestPartial, model.RequestFulfilled:
	default:
		return nil, 0, apperror.InvalidInput("unknown request status "+filters.Status, nil)
	}
	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Storage(err)
	}
	return items, count, nil
}

func (uc *requestUseCase) ListPendingQueue(ctx context.Context, limit int) ([]model.QueueItem, error) {
	if limit <= 0 {
		limit = defaultQueueLimit
	}
	items, err := uc.repo.PendingQueue(ctx, limit)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].Urgency = request.ClassifyUrgency(items[i].RequestedAt, now, uc.delayedAfter)
	}
	return items, nil
}

// FindOpenLineItem returns nil, nil when nothing is waiting for partID.
func (uc *requestUseCase) FindOpenLineItem(ctx context.Context, partID string) (*model.RequestLineItem, error) {
	item, err := uc.repo.OldestPendingItem(ctx, partID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return item, nil
}

// mergeItems folds repeated parts into one line, keeping first-seen order.
func mergeItems(items []dto.CreateItemInput) []dto.CreateItemInput {
	index := map[string]int{}
	out := make([]dto.CreateItemInput, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.PartID]; ok {
			out[i].Quantity += it.Quantity
			out[i].IsUrgent = out[i].IsUrgent || it.IsUrgent
			continue
		}
		index[it.PartID] = len(out)
		out = append(out, it)
	}
	return out
}

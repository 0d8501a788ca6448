package usecase

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type tracker struct {
	repo   request.Repository
	logger logger.ZapLogger
}

func NewTracker(repo request.Repository, log logger.ZapLogger) request.Tracker {
	return &tracker{repo: repo, logger: log}
}

func (t *tracker) LockLineItem(ctx context.Context, tx sqlx.ExtContext, lineItemID string) (*model.RequestLineItem, error) {
	item, err := t.repo.GetItemForUpdate(ctx, tx, lineItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.LineItemNotFound(lineItemID)
	}
	return item, nil
}

// RecordSupply adds qty to the line item, then recomputes the parent request from all of
// its items. It runs on the dispatch transaction so neither status is ever stale.
func (t *tracker) RecordSupply(ctx context.Context, tx sqlx.ExtContext, lineItemID, partID string, qty int) (*dto.SupplyResult, error) {
	item, err := t.LockLineItem(ctx, tx, lineItemID)
	if err != nil {
		return nil, err
	}
	if item.PartID != partID {
		return nil, apperror.InvalidInput("line item "+lineItemID+" is for a different part", nil)
	}

	req, err := t.repo.GetForUpdate(ctx, tx, item.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperror.RequestNotFound(item.RequestID)
	}

	item.SuppliedQty += qty
	if item.Status != model.LineItemFulfilled {
		item.Status = request.DeriveLineItemStatus(item.SuppliedQty, item.Quantity)
	}
	if err := t.repo.UpdateItemSupply(ctx, tx, item); err != nil {
		return nil, err
	}

	statuses, err := t.repo.ItemStatuses(ctx, tx, req.ID)
	if err != nil {
		return nil, err
	}
	next := request.Advance(req.Status, request.DeriveRequestStatus(statuses))
	if next != req.Status {
		if err := t.repo.UpdateStatus(ctx, tx, req.ID, next); err != nil {
			return nil, err
		}
		t.logger.Debug("request status advanced",
			zap.String("request_id", req.ID),
			zap.String("from", string(req.Status)),
			zap.String("to", string(next)))
	}

	return &dto.SupplyResult{
		LineItemID:    item.ID,
		RequestID:     req.ID,
		SuppliedQty:   item.SuppliedQty,
		LineStatus:    item.Status,
		RequestStatus: next,
	}, nil
}

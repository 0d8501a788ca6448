package request

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, tx sqlx.ExtContext, r *model.Request) error
	FindByID(ctx context.Context, id string) (*model.Request, error)
	FindAll(ctx context.Context, filters *dto.RequestFilters) ([]model.Request, int, error)
	HasActivePending(ctx context.Context, tx sqlx.ExtContext, partID, destination string) (bool, error)
	PendingQueue(ctx context.Context, limit int) ([]model.QueueItem, error)
	OldestPendingItem(ctx context.Context, partID string) (*model.RequestLineItem, error)

	// Supply tracking, on the dispatching transaction.
	GetItem(ctx context.Context, tx sqlx.ExtContext, id string) (*model.RequestLineItem, error)
	GetItemForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.RequestLineItem, error)
	UpdateItemSupply(ctx context.Context, tx sqlx.ExtContext, item *model.RequestLineItem) error
	GetForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Request, error)
	ItemStatuses(ctx context.Context, tx sqlx.ExtContext, requestID string) ([]model.LineItemStatus, error)
	UpdateStatus(ctx context.Context, tx sqlx.ExtContext, id string, status model.RequestStatus) error
}

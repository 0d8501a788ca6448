package request

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/jmoiron/sqlx"
)

type UseCase interface {
	CreateRequest(ctx context.Context, input *dto.CreateRequestInput) (*model.Request, error)
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, filters *dto.RequestFilters) ([]model.Request, int, error)
	ListPendingQueue(ctx context.Context, limit int) ([]model.QueueItem, error)
	FindOpenLineItem(ctx context.Context, partID string) (*model.RequestLineItem, error)
}

// Tracker records supply against line items inside the dispatching transaction.
type Tracker interface {
	LockLineItem(ctx context.Context, tx sqlx.ExtContext, lineItemID string) (*model.RequestLineItem, error)
	RecordSupply(ctx context.Context, tx sqlx.ExtContext, lineItemID, partID string, qty int) (*dto.SupplyResult, error)
}

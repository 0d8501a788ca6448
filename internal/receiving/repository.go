package receiving

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	LockBatch(ctx context.Context, tx sqlx.ExtContext, number string) ([]model.Receiving, error)
	InsertRows(ctx context.Context, tx sqlx.ExtContext, rows []model.Receiving) error
	DeleteBatch(ctx context.Context, tx sqlx.ExtContext, number string) error
	UpdateStatus(ctx context.Context, tx sqlx.ExtContext, number string, status model.ReceivingStatus) error
	FindBatch(ctx context.Context, number string) ([]model.Receiving, error)
	ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]dto.BatchSummary, int, error)
}

package outgoing

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/outgoing/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, tx sqlx.ExtContext, o *model.Outgoing) error
	NumberExists(ctx context.Context, tx sqlx.ExtContext, number string) (bool, error)
	FindAll(ctx context.Context, filters *dto.DispatchFilters) ([]model.Outgoing, int, error)
}

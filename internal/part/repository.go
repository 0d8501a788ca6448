package part

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/part/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Part master
	Create(ctx context.Context, p *model.Part) error
	Update(ctx context.Context, p *model.Part) error
	FindByID(ctx context.Context, id string) (*model.Part, error)
	FindByCode(ctx context.Context, code string) (*model.Part, error)
	FindAll(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error)
	Search(ctx context.Context, query string, limit int) ([]model.Part, error)
	IsPartNumberUnique(ctx context.Context, partNumber, excludeID string) (bool, error)

	// Inventory store. These run on the caller's transaction.
	Get(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Part, error)
	GetForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Part, error)
	Adjust(ctx context.Context, tx sqlx.ExtContext, p *model.Part, delta int) (*model.Part, error)
}

package ledger

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// Repository has no update or delete path. Entries are only ever appended.
type Repository interface {
	Append(ctx context.Context, tx sqlx.ExtContext, m *model.Movement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.Movement, int, error)
	SumByType(ctx context.Context, partID string, movementType model.MovementType) (int, error)
}

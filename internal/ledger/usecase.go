package ledger

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/model"
)

type UseCase interface {
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.Movement, int, error)
	SumByType(ctx context.Context, partID string, movementType model.MovementType) (int, error)
}

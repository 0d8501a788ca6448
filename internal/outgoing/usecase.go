package outgoing

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/outgoing/dto"
)

type UseCase interface {
	SubmitBatch(ctx context.Context, input *dto.SubmitBatchInput) (*dto.BatchResult, error)
	SupplyOne(ctx context.Context, input *dto.SupplyOneInput) (*dto.SupplyOneResult, error)
	PrepareItem(ctx context.Context, code string) (*dto.PreparedItem, error)
	ListDispatches(ctx context.Context, filters *dto.DispatchFilters) ([]model.Outgoing, int, error)
}

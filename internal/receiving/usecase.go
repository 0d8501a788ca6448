package receiving

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
)

type UseCase interface {
	SaveDraft(ctx context.Context, input *dto.BatchInput) (*dto.BatchResult, error)
	CompleteBatch(ctx context.Context, input *dto.BatchInput) (*dto.BatchResult, error)
	DeleteDraft(ctx context.Context, number string) error
	CancelDraft(ctx context.Context, number string) error
	GetBatch(ctx context.Context, number string) (*dto.Batch, error)
	ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]dto.BatchSummary, int, error)
	NextNumber(ctx context.Context, source model.SourceType) (string, error)
}

package part

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/part/dto"
)

type UseCase interface {
	CreatePart(ctx context.Context, input *dto.CreatePartInput) (*model.Part, error)
	UpdatePart(ctx context.Context, input *dto.UpdatePartInput) (*model.Part, error)
	GetPart(ctx context.Context, id string) (*model.Part, error)
	FindByCode(ctx context.Context, code string) (*model.Part, error)
	SearchParts(ctx context.Context, query string) ([]model.Part, error)
	ListParts(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error)
}

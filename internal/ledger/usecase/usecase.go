package usecase

import (
	"context"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/ledger"
	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
)

const maxPageSize = 200

type ledgerUseCase struct {
	repo   ledger.Repository
	logger logger.ZapLogger
}

func NewLedgerUseCase(repo ledger.Repository, log logger.ZapLogger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *ledgerUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.Movement, int, error) {
	f := *filters
	switch model.MovementType(f.MovementType) {
	case "", model.MovementIn, model.MovementOut:
	default:
		return nil, 0, apperror.InvalidInput("movement type must be in or out", nil)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > maxPageSize {
		f.PageSize = 50
	}
	// An end date without a time of day covers the whole day.
	if f.EndDate != nil && f.EndDate.Equal(f.EndDate.Truncate(24*time.Hour)) {
		end := f.EndDate.Add(24 * time.Hour)
		f.EndDate = &end
	}

	items, count, err := uc.repo.ListMovements(ctx, &f)
	if err != nil {
		return nil, 0, apperror.Storage(err)
	}
	return items, count, nil
}

func (uc *ledgerUseCase) SumByType(ctx context.Context, partID string, movementType model.MovementType) (int, error) {
	sum, err := uc.repo.SumByType(ctx, partID, movementType)
	if err != nil {
		return 0, apperror.Storage(err)
	}
	return sum, nil
}

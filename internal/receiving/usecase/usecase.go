package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/ledger"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/numbering"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/receiving"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
	"github.com/fekuna/rims-inventory-service/internal/tracing"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MinSubcontNumberLength is the shortest manually entered subcontractor batch number accepted.
const MinSubcontNumberLength = 10

type receivingUseCase struct {
	db      *sqlx.DB
	repo    receiving.Repository
	parts   part.Repository
	ledger  ledger.Repository
	numbers *numbering.Generator
	loc     *time.Location
	logger  logger.ZapLogger
}

func NewReceivingUseCase(
	db *sqlx.DB,
	repo receiving.Repository,
	parts part.Repository,
	ledgerRepo ledger.Repository,
	numbers *numbering.Generator,
	loc *time.Location,
	log logger.ZapLogger,
) receiving.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &receivingUseCase{
		db:      db,
		repo:    repo,
		parts:   parts,
		ledger:  ledgerRepo,
		numbers: numbers,
		loc:     loc,
		logger:  log,
	}
}

// SaveDraft records the expected goods without touching stock.
func (uc *receivingUseCase) SaveDraft(ctx context.Context, input *dto.BatchInput) (_ *dto.BatchResult, err error) {
	ctx, span := tracing.Start(ctx, "receiving.SaveDraft",
		attribute.String("actor", input.Actor),
		attribute.String("source_type", string(input.SourceType)))
	defer func() { tracing.End(span, err) }()

	return uc.save(ctx, input, model.ReceivingDraft)
}

// CompleteBatch records the batch as received and adds every item to stock.
func (uc *receivingUseCase) CompleteBatch(ctx context.Context, input *dto.BatchInput) (_ *dto.BatchResult, err error) {
	ctx, span := tracing.Start(ctx, "receiving.CompleteBatch",
		attribute.String("actor", input.Actor),
		attribute.String("source_type", string(input.SourceType)))
	defer func() { tracing.End(span, err) }()

	return uc.save(ctx, input, model.ReceivingCompleted)
}

func (uc *receivingUseCase) save(ctx context.Context, input *dto.BatchInput, status model.ReceivingStatus) (*dto.BatchResult, error) {
	if err := apperror.Validate(input); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(input.ReceivingNumber)
	if err := validateNumber(input.SourceType, number); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	receivedAt := now
	if input.ReceivedAt != nil && !input.ReceivedAt.IsZero() {
		receivedAt = input.ReceivedAt.UTC()
	}
	items := mergeItems(input.Items)
	result := &dto.BatchResult{ReceivingNumber: number, Status: status}

	err := database.WithTx(ctx, uc.db, func(tx *sqlx.Tx) error {
		if number == "" {
			n, err := uc.numbers.NextFree(ctx, tx, numbering.ReceivingInhouse, now.In(uc.loc), func(candidate string) (bool, error) {
				rows, err := uc.repo.LockBatch(ctx, tx, candidate)
				return len(rows) > 0, err
			})
			if err != nil {
				return err
			}
			number = n
			result.ReceivingNumber = n
		} else if err := uc.replaceDraft(ctx, tx, number, input.SourceType); err != nil {
			return err
		}

		rows := make([]model.Receiving, 0, len(items))
		for _, it := range items {
			p, err := uc.parts.GetForUpdate(ctx, tx, it.PartID)
			if err != nil {
				return err
			}
			if p == nil {
				return apperror.PartNotFound(it.PartID)
			}
			if status == model.ReceivingCompleted {
				if err := uc.receive(ctx, tx, number, input.Actor, p, it.Quantity); err != nil {
					return err
				}
			}
			rows = append(rows, model.Receiving{
				ID:              uuid.New().String(),
				ReceivingNumber: number,
				SourceType:      input.SourceType,
				PartID:          it.PartID,
				Quantity:        it.Quantity,
				ReceivedBy:      input.Actor,
				ReceivedAt:      receivedAt,
				Status:          status,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			result.TotalItems++
			result.TotalQuantity += it.Quantity
		}
		return uc.repo.InsertRows(ctx, tx, rows)
	})
	if err != nil {
		return nil, uc.fail("save receiving "+string(status), err, number, input.Actor, itemPartIDs(items))
	}

	uc.logger.Info("receiving batch saved",
		zap.String("receiving_number", result.ReceivingNumber),
		zap.String("status", string(status)),
		zap.String("actor", input.Actor),
		zap.Int("total_items", result.TotalItems),
		zap.Int("total_quantity", result.TotalQuantity))
	return result, nil
}

// replaceDraft clears the rows of an existing draft so a re-save can write them again.
// Numbers issued by the generator never come through here.
func (uc *receivingUseCase) replaceDraft(ctx context.Context, tx *sqlx.Tx, number string, source model.SourceType) error {
	existing, err := uc.repo.LockBatch(ctx, tx, number)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	if existing[0].Status != model.ReceivingDraft {
		return apperror.BatchImmutable(number, string(existing[0].Status))
	}
	if existing[0].SourceType != source {
		return apperror.InvalidBatchIdentifier(number, "belongs to a "+string(existing[0].SourceType)+" batch")
	}
	return uc.repo.DeleteBatch(ctx, tx, number)
}

// receive adds qty to a locked part and appends the ledger entry.
func (uc *receivingUseCase) receive(ctx context.Context, tx *sqlx.Tx, number, actor string, p *model.Part, qty int) error {
	p, err := uc.parts.Adjust(ctx, tx, p, qty)
	if err != nil {
		return err
	}
	return uc.ledger.Append(ctx, tx, ledger.NewEntry(p.ID, model.MovementIn, actor, qty, p.Stock, model.ReferenceReceiving, number))
}

func (uc *receivingUseCase) DeleteDraft(ctx context.Context, number string) error {
	err := uc.withDraft(ctx, number, func(tx *sqlx.Tx) error {
		return uc.repo.DeleteBatch(ctx, tx, number)
	})
	if err != nil {
		return uc.fail("delete draft", err, number, "", nil)
	}
	uc.logger.Info("receiving draft deleted", zap.String("receiving_number", number))
	return nil
}

func (uc *receivingUseCase) CancelDraft(ctx context.Context, number string) error {
	err := uc.withDraft(ctx, number, func(tx *sqlx.Tx) error {
		return uc.repo.UpdateStatus(ctx, tx, number, model.ReceivingCancelled)
	})
	if err != nil {
		return uc.fail("cancel draft", err, number, "", nil)
	}
	uc.logger.Info("receiving draft cancelled", zap.String("receiving_number", number))
	return nil
}

// withDraft runs fn only when number names an existing draft batch.
func (uc *receivingUseCase) withDraft(ctx context.Context, number string, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, uc.db, func(tx *sqlx.Tx) error {
		rows, err := uc.repo.LockBatch(ctx, tx, number)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperror.BatchNotFound(number)
		}
		if rows[0].Status != model.ReceivingDraft {
			return apperror.BatchImmutable(number, string(rows[0].Status))
		}
		return fn(tx)
	})
}

func (uc *receivingUseCase) GetBatch(ctx context.Context, number string) (*dto.Batch, error) {
	rows, err := uc.repo.FindBatch(ctx, number)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if len(rows) == 0 {
		return nil, apperror.BatchNotFound(number)
	}
	first := rows[0]
	return &dto.Batch{
		ReceivingNumber: first.ReceivingNumber,
		SourceType:      first.SourceType,
		Status:          first.Status,
		ReceivedBy:      first.ReceivedBy,
		ReceivedAt:      first.ReceivedAt,
		Items:           rows,
	}, nil
}

func (uc *receivingUseCase) ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]dto.BatchSummary, int, error) {
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	items, count, err := uc.repo.ListBatches(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Storage(err)
	}
	return items, count, nil
}

// NextNumber previews the number an INHOUSE batch saved now would get. It reserves nothing.
func (uc *receivingUseCase) NextNumber(ctx context.Context, source model.SourceType) (string, error) {
	if source != model.SourceInhouse {
		return "", apperror.InvalidInput(fmt.Sprintf("%s batches are numbered manually", source), nil)
	}
	day := time.Now().In(uc.loc)
	last, err := numbering.MaxExisting(ctx, uc.db, numbering.ReceivingInhouse, day)
	if err != nil {
		return "", apperror.Storage(err)
	}
	return numbering.ReceivingInhouse.Format(day, last+1), nil
}

func validateNumber(source model.SourceType, number string) error {
	switch source {
	case model.SourceInhouse:
		if number == "" {
			return nil
		}
		if _, _, err := numbering.ReceivingInhouse.Parse(number); err != nil {
			return apperror.InvalidBatchIdentifier(number, err.Error())
		}
	case model.SourceSubcont:
		if len(number) < MinSubcontNumberLength {
			return apperror.InvalidBatchIdentifier(number, fmt.Sprintf("must be at least %d characters", MinSubcontNumberLength))
		}
		if strings.HasPrefix(strings.ToUpper(number), numbering.ReceivingInhouse.Prefix) {
			return apperror.InvalidBatchIdentifier(number, numbering.ReceivingInhouse.Prefix+" is reserved for in-house batches")
		}
	}
	return nil
}

// mergeItems sums quantities of repeated parts, keeping first-seen order.
func mergeItems(items []dto.BatchItem) []dto.BatchItem {
	index := make(map[string]int, len(items))
	merged := make([]dto.BatchItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.PartID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.PartID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

func (uc *receivingUseCase) fail(op string, err error, number, actor string, partIDs []string) error {
	err = apperror.Storage(err)
	if apperror.CodeOf(err) == apperror.CodeStorageFailure {
		uc.logger.Error(op+" failed",
			zap.String("receiving_number", number),
			zap.String("actor", actor),
			zap.Strings("part_ids", partIDs),
			zap.Error(err))
	} else {
		uc.logger.Debug(op+" rejected", zap.String("receiving_number", number), zap.Error(err))
	}
	return err
}

func itemPartIDs(items []dto.BatchItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PartID
	}
	return ids
}

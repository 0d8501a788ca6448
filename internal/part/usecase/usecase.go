package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/cache"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/part/dto"
	"github.com/fekuna/rims-inventory-service/internal/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	partIndex       = "parts"
	searchCacheTTL  = 6 * time.Hour
	searchMinLength = 2
	searchLimit     = 10
)

const partMapping = `{
	"mappings": {
		"properties": {
			"part_number":   { "type": "keyword" },
			"customer_code": { "type": "keyword" },
			"supplier_code": { "type": "keyword" },
			"part_name":     { "type": "text" },
			"is_active":     { "type": "boolean" },
			"stock":         { "type": "integer" }
		}
	}
}`

type partUseCase struct {
	repo   part.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewPartUseCase(repo part.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) part.UseCase {
	return &partUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *partUseCase) CreatePart(ctx context.Context, input *dto.CreatePartInput) (*model.Part, error) {
	if err := apperror.Validate(input); err != nil {
		return nil, err
	}

	unique, err := uc.repo.IsPartNumberUnique(ctx, input.PartNumber, "")
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if !unique {
		return nil, apperror.InvalidInput("part number "+input.PartNumber+" already exists", nil)
	}

	now := time.Now().UTC()
	p := &model.Part{
		ID:              uuid.New().String(),
		PartNumber:      input.PartNumber,
		PartName:        input.PartName,
		CustomerCode:    input.CustomerCode,
		SupplierCode:    optional(input.SupplierCode),
		Model:           optional(input.Model),
		Variant:         optional(input.Variant),
		StandardPacking: input.StandardPacking,
		Stock:           0,
		Address:         optional(input.Address),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperror.Storage(err)
	}

	go uc.invalidateSearchCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *partUseCase) UpdatePart(ctx context.Context, input *dto.UpdatePartInput) (*model.Part, error) {
	if err := apperror.Validate(input); err != nil {
		return nil, err
	}

	p, err := uc.GetPart(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	p.PartName = input.PartName
	p.CustomerCode = input.CustomerCode
	p.SupplierCode = optional(input.SupplierCode)
	p.Model = optional(input.Model)
	p.Variant = optional(input.Variant)
	p.StandardPacking = input.StandardPacking
	p.Address = optional(input.Address)
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	p.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperror.Storage(err)
	}

	go uc.invalidateSearchCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *partUseCase) GetPart(ctx context.Context, id string) (*model.Part, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if p == nil {
		return nil, apperror.PartNotFound(id)
	}
	return p, nil
}

func (uc *partUseCase) FindByCode(ctx context.Context, code string) (*model.Part, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.InvalidInput("code is required", nil)
	}
	p, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if p == nil {
		return nil, apperror.PartNotFound(code)
	}
	return p, nil
}

// SearchParts tries the cache, then Elasticsearch, then the database.
func (uc *partUseCase) SearchParts(ctx context.Context, query string) ([]model.Part, error) {
	query = strings.TrimSpace(query)
	if len(query) < searchMinLength {
		return []model.Part{}, nil
	}

	cacheKey := searchCacheKey(query)
	if uc.cache != nil {
		if val, ok, err := uc.cache.Get(ctx, cacheKey); err == nil && ok {
			var cached []model.Part
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	parts, err := uc.searchElastic(ctx, query)
	if err != nil || parts == nil {
		if err != nil {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		}
		parts, err = uc.repo.Search(ctx, query, searchLimit)
		if err != nil {
			return nil, apperror.Storage(err)
		}
	}

	if uc.cache != nil {
		if data, err := json.Marshal(parts); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, searchCacheTTL); err != nil {
				uc.logger.Warn("failed to cache part search", zap.Error(err))
			}
		}
	}
	return parts, nil
}

func (uc *partUseCase) ListParts(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error) {
	parts, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Storage(err)
	}
	return parts, count, nil
}

// searchElastic returns nil, nil when no index is configured.
func (uc *partUseCase) searchElastic(ctx context.Context, query string) ([]model.Part, error) {
	if uc.es == nil {
		return nil, nil
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", query),
							"fields": []string{"part_number^3", "customer_code^2", "supplier_code", "part_name"},
						},
					},
					{"term": map[string]interface{}{"is_active": true}},
				},
			},
		},
		"size": searchLimit,
	}

	res, err := uc.es.Search(ctx, partIndex, q)
	if err != nil {
		return nil, err
	}
	parts := make([]model.Part, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Part
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			parts = append(parts, p)
		}
	}
	return parts, nil
}

func (uc *partUseCase) syncToElastic(ctx context.Context, p *model.Part) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, partIndex, partMapping)
	if err := uc.es.Index(ctx, partIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index part", zap.String("part_id", p.ID), zap.Error(err))
	}
}

func (uc *partUseCase) invalidateSearchCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, "parts:search:*"); err != nil {
		uc.logger.Warn("failed to flush part search cache", zap.Error(err))
	}
}

func searchCacheKey(query string) string {
	return fmt.Sprintf("parts:search:%x", md5.Sum([]byte(strings.ToLower(query))))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

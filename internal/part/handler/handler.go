package handler

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/part/dto"
	"github.com/fekuna/rims-inventory-service/internal/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "rims.v1.PartService"

type GetPartRequest struct {
	ID string `json:"id"`
}

type FindByCodeRequest struct {
	Code string `json:"code"`
}

type SearchPartsRequest struct {
	Query string `json:"query"`
}

type ListPartsRequest struct {
	Query      string `json:"query"`
	ActiveOnly bool   `json:"active_only"`
	Page       int32  `json:"page"`
	PageSize   int32  `json:"page_size"`
}

type PartResponse struct {
	Part *model.Part `json:"part"`
}

type ListPartsResponse struct {
	Parts    []model.Part `json:"parts"`
	Total    int32        `json:"total"`
	Page     int32        `json:"page,omitempty"`
	PageSize int32        `json:"page_size,omitempty"`
}

type PartHandler struct {
	uc     part.UseCase
	logger logger.ZapLogger
}

func NewPartHandler(uc part.UseCase, log logger.ZapLogger) *PartHandler {
	return &PartHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PartHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(server.Service(serviceName,
		server.Unary(serviceName, "CreatePart", h.CreatePart),
		server.Unary(serviceName, "UpdatePart", h.UpdatePart),
		server.Unary(serviceName, "GetPart", h.GetPart),
		server.Unary(serviceName, "FindByCode", h.FindByCode),
		server.Unary(serviceName, "SearchParts", h.SearchParts),
		server.Unary(serviceName, "ListParts", h.ListParts),
	), h)
}

func (h *PartHandler) CreatePart(ctx context.Context, req *dto.CreatePartInput) (*PartResponse, error) {
	p, err := h.uc.CreatePart(ctx, req)
	if err != nil {
		h.logger.Debug("failed to create part", zap.String("part_number", req.PartNumber), zap.Error(err))
		return nil, err
	}
	return &PartResponse{Part: p}, nil
}

func (h *PartHandler) UpdatePart(ctx context.Context, req *dto.UpdatePartInput) (*PartResponse, error) {
	p, err := h.uc.UpdatePart(ctx, req)
	if err != nil {
		return nil, err
	}
	return &PartResponse{Part: p}, nil
}

func (h *PartHandler) GetPart(ctx context.Context, req *GetPartRequest) (*PartResponse, error) {
	p, err := h.uc.GetPart(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &PartResponse{Part: p}, nil
}

func (h *PartHandler) FindByCode(ctx context.Context, req *FindByCodeRequest) (*PartResponse, error) {
	p, err := h.uc.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	return &PartResponse{Part: p}, nil
}

func (h *PartHandler) SearchParts(ctx context.Context, req *SearchPartsRequest) (*ListPartsResponse, error) {
	parts, err := h.uc.SearchParts(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return &ListPartsResponse{Parts: parts, Total: int32(len(parts))}, nil
}

func (h *PartHandler) ListParts(ctx context.Context, req *ListPartsRequest) (*ListPartsResponse, error) {
	filters := &dto.PartFilters{
		Query:      req.Query,
		ActiveOnly: req.ActiveOnly,
		Page:       int(req.Page),
		PageSize:   int(req.PageSize),
	}

	parts, count, err := h.uc.ListParts(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &ListPartsResponse{
		Parts:    parts,
		Total:    int32(count),
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

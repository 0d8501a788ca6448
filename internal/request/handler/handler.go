package handler

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/fekuna/rims-inventory-service/internal/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "rims.v1.RequestService"

type GetRequestRequest struct {
	ID string `json:"id"`
}

type RequestResponse struct {
	Request *model.Request `json:"request"`
}

type ListRequestsRequest struct {
	Status      string `json:"status"`
	Destination string `json:"destination"`
	Page        int32  `json:"page"`
	PageSize    int32  `json:"page_size"`
}

type ListRequestsResponse struct {
	Requests []model.Request `json:"requests"`
	Total    int32           `json:"total"`
}

type PendingQueueRequest struct {
	Limit int32 `json:"limit"`
}

type PendingQueueResponse struct {
	Items []model.QueueItem `json:"items"`
}

type RequestHandler struct {
	uc     request.UseCase
	logger logger.ZapLogger
}

func NewRequestHandler(uc request.UseCase, log logger.ZapLogger) *RequestHandler {
	return &RequestHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *RequestHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(server.Service(serviceName,
		server.Unary(serviceName, "CreateRequest", h.CreateRequest),
		server.Unary(serviceName, "GetRequest", h.GetRequest),
		server.Unary(serviceName, "ListRequests", h.ListRequests),
		server.Unary(serviceName, "ListPendingQueue", h.ListPendingQueue),
	), h)
}

// CreateRequest records the request for the calling operator unless one is named.
func (h *RequestHandler) CreateRequest(ctx context.Context, req *dto.CreateRequestInput) (*RequestResponse, error) {
	if req.RequestedBy == "" {
		req.RequestedBy = auth.GetActor(ctx)
	}
	r, err := h.uc.CreateRequest(ctx, req)
	if err != nil {
		h.logger.Debug("failed to create request", zap.String("destination", req.Destination), zap.Error(err))
		return nil, err
	}
	return &RequestResponse{Request: r}, nil
}

func (h *RequestHandler) GetRequest(ctx context.Context, req *GetRequestRequest) (*RequestResponse, error) {
	r, err := h.uc.GetRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &RequestResponse{Request: r}, nil
}

func (h *RequestHandler) ListRequests(ctx context.Context, req *ListRequestsRequest) (*ListRequestsResponse, error) {
	filters := &dto.RequestFilters{
		Status:      req.Status,
		Destination: req.Destination,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	}
	requests, count, err := h.uc.ListRequests(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &ListRequestsResponse{Requests: requests, Total: int32(count)}, nil
}

func (h *RequestHandler) ListPendingQueue(ctx context.Context, req *PendingQueueRequest) (*PendingQueueResponse, error) {
	items, err := h.uc.ListPendingQueue(ctx, int(req.Limit))
	if err != nil {
		return nil, err
	}
	return &PendingQueueResponse{Items: items}, nil
}

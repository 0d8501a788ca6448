package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodecRoundTrip(t *testing.T) {
	type payload struct {
		PartID   string `json:"part_id"`
		Quantity int    `json:"quantity"`
	}
	c := Codec{}

	data, err := c.Marshal(&payload{PartID: "p1", Quantity: 3})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"part_id":"p1","quantity":3}` {
		t.Errorf("json = %s", data)
	}
	var got payload
	if err := c.Unmarshal(data, &got); err != nil || got.Quantity != 3 {
		t.Errorf("Unmarshal = %+v, %v", got, err)
	}

	if _, err := c.Marshal(&emptypb.Empty{}); err != nil {
		t.Errorf("proto message: %v", err)
	}
	if err := c.Unmarshal([]byte("{"), &got); err == nil {
		t.Errorf("expected a decode error")
	}
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code apperror.Code
		want codes.Code
		http int
	}{
		{apperror.CodeInsufficientStock, codes.FailedPrecondition, http.StatusConflict},
		{apperror.CodeBatchImmutable, codes.FailedPrecondition, http.StatusConflict},
		{apperror.CodePartNotFound, codes.NotFound, http.StatusNotFound},
		{apperror.CodeBatchNotFound, codes.NotFound, http.StatusNotFound},
		{apperror.CodePartMismatch, codes.InvalidArgument, http.StatusBadRequest},
		{apperror.CodeInvalidBatchIdentifier, codes.InvalidArgument, http.StatusBadRequest},
		{apperror.CodeAlreadyRequested, codes.AlreadyExists, http.StatusConflict},
		{apperror.CodeStorageFailure, codes.Unavailable, http.StatusServiceUnavailable},
		{apperror.Code("other"), codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GRPCCode(tt.code); got != tt.want {
			t.Errorf("GRPCCode(%s) = %s, want %s", tt.code, got, tt.want)
		}
		if got := HTTPStatus(tt.code); got != tt.http {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.http)
		}
	}
}

func TestToStatusLocalizes(t *testing.T) {
	ctx := auth.WithLocale(context.Background(), "en")
	err := ToStatus(ctx, apperror.InsufficientStock("p1", "PN-1", 2, 5))

	st, _ := status.FromError(err)
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("code = %s", st.Code())
	}
	if st.Message() != "Not enough stock for part PN-1: 2 on hand, 5 requested" {
		t.Errorf("message = %q", st.Message())
	}

	raw := ToStatus(ctx, errors.New("pq: connection reset"))
	st, _ = status.FromError(raw)
	if st.Code() != codes.Unavailable || st.Message() == "pq: connection reset" {
		t.Errorf("untyped error leaked: %v", st)
	}
}

func TestUnaryRunsInterceptors(t *testing.T) {
	type echoReq struct{ Value string }
	type echoResp struct{ Actor, Value string }

	desc := Unary("rims.v1.EchoService", "Echo", func(ctx context.Context, req *echoReq) (*echoResp, error) {
		if req.Value == "fail" {
			return nil, apperror.BatchNotFound("REC-1")
		}
		return &echoResp{Actor: auth.GetActor(ctx), Value: req.Value}, nil
	})

	chain := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if info.FullMethod != "/rims.v1.EchoService/Echo" {
			t.Errorf("FullMethod = %s", info.FullMethod)
		}
		return ContextInterceptor(nil)(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return ErrorInterceptor(logger.NewNop())(ctx, req, info, handler)
		})
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", "picker-7"))
	dec := func(v string) func(interface{}) error {
		return func(in interface{}) error { return Codec{}.Unmarshal([]byte(`{"Value":"`+v+`"}`), in) }
	}

	resp, err := desc.Handler(nil, ctx, dec("hi"), chain)
	if err != nil {
		t.Fatalf("Echo: %v", err)
	}
	if got := resp.(*echoResp); got.Actor != "picker-7" || got.Value != "hi" {
		t.Errorf("resp = %+v", got)
	}

	_, err = desc.Handler(nil, ctx, dec("fail"), chain)
	if status.Code(err) != codes.NotFound {
		t.Errorf("error code = %s, want NotFound", status.Code(err))
	}

	_, err = desc.Handler(nil, context.Background(), dec("anon"), nil)
	if err != nil {
		t.Fatalf("no interceptor: %v", err)
	}
}

type fakeQueue struct {
	request.UseCase
	items []model.QueueItem
	err   error
}

func (q *fakeQueue) ListPendingQueue(context.Context, int) ([]model.QueueItem, error) {
	return q.items, q.err
}

func TestQueueEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	q := &fakeQueue{items: []model.QueueItem{
		{ItemID: "li-1", Urgency: request.UrgencyDelayed},
		{ItemID: "li-2", Urgency: request.UrgencyNew},
		{ItemID: "li-3", Urgency: request.UrgencyDelayed},
	}}
	r := NewRouter(RouterConfig{Requests: q, Logger: logger.NewNop()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/requests/queue", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Items  []model.QueueItem `json:"items"`
		Counts map[string]int    `json:"counts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 3 || body.Counts[request.UrgencyDelayed] != 2 || body.Counts[request.UrgencyWaiting] != 0 {
		t.Errorf("body = %+v", body)
	}

	q.err = apperror.Storage(errors.New("db down"))
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/requests/queue", nil)
	req.Header.Set("Accept-Language", "en")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	down := errors.New("down")
	var pingErr error
	r := NewRouter(RouterConfig{Logger: logger.NewNop(), Ping: func(context.Context) error { return pingErr }})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}

	pingErr = down
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
}

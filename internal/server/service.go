package server

import (
	"context"

	"google.golang.org/grpc"
)

// Unary builds the descriptor of one unary method whose request and response are plain structs.
func Unary[Req any, Resp any](service, method string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Service assembles a ServiceDesc from methods built with Unary.
func Service(name string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: name,
		HandlerType: (*interface{})(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
	}
}

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(s grpc.ServiceRegistrar)
}

func RegisterAll(s grpc.ServiceRegistrar, handlers ...Registrar) {
	for _, h := range handlers {
		h.Register(s)
	}
}

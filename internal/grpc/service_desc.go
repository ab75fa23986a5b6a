package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName полное имя межсервисного API фильмов
const ServiceName = "filmorate.v1.FilmInterService"

// FilmInterServiceServer серверная часть filmorate.v1.FilmInterService.
// Сообщения взяты из well-known types, поэтому .proto генерация не нужна.
type FilmInterServiceServer interface {
	CheckFilmExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetFilmInfo(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CheckUserExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unaryHandler строит grpc.MethodDesc для одного унарного метода.
func unaryHandler[Req any, Resp any](name string, call func(FilmInterServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FilmInterServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FilmInterServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FilmInterServiceDesc описание сервиса для grpc.Server.RegisterService
var FilmInterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FilmInterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CheckFilmExists", FilmInterServiceServer.CheckFilmExists),
		unaryHandler("GetFilmInfo", FilmInterServiceServer.GetFilmInfo),
		unaryHandler("CheckUserExists", FilmInterServiceServer.CheckUserExists),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filmorate/v1/film_inter_service.proto",
}

// RegisterFilmInterServiceServer регистрирует реализацию на gRPC сервере.
func RegisterFilmInterServiceServer(s grpc.ServiceRegistrar, srv FilmInterServiceServer) {
	s.RegisterService(&FilmInterServiceDesc, srv)
}

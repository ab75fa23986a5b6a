package grpc

import (
	"context"
	"errors"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server реализует FilmInterServiceServer
type Server struct {
	films  *service.FilmService
	users  *service.UserService
	logger *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера filmorate.
func NewServer(films *service.FilmService, users *service.UserService, logger *slog.Logger) *Server {
	return &Server{
		films:  films,
		users:  users,
		logger: logger,
	}
}

// NewGRPCServer собирает grpc.Server с сервисом фильмов, health и reflection.
func NewGRPCServer(srv *Server, logger *slog.Logger) (*grpc.Server, *health.Server) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	RegisterFilmInterServiceServer(grpcSrv, srv)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcSrv)
	return grpcSrv, healthSrv
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "gRPC call handled",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()))
		return resp, err
	}
}

// filmToProtoInfo преобразует доменную модель фильма в Struct для GetFilmInfo
func filmToProtoInfo(film domain.Film) (*structpb.Struct, error) {
	genres := make([]interface{}, 0, len(film.Genres))
	for _, g := range film.Genres {
		genres = append(genres, g.Name)
	}
	mpa := ""
	if film.Mpa != nil {
		mpa = film.Mpa.Name
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":          film.ID,
		"name":        film.Name,
		"releaseDate": film.ReleaseDate.Format(domain.DateLayout),
		"duration":    film.Duration,
		"mpa":         mpa,
		"genres":      genres,
		"likes":       len(film.Likes),
	})
}

// GetFilmInfo реализует gRPC метод GetFilmInfo.
func (s *Server) GetFilmInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetFilmInfo called", slog.Int64("film_id", req.GetValue()))

	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "film_id must be positive")
	}

	film, err := s.films.GetFilmByID(ctx, req.GetValue())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "Film not found by ID for GetFilmInfo", slog.Int64("film_id", req.GetValue()))
			return nil, status.Errorf(codes.NotFound, "film not found with ID %d", req.GetValue())
		}
		s.logger.ErrorContext(ctx, "Failed to get film for GetFilmInfo", slog.Int64("film_id", req.GetValue()), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to retrieve film details: %v", err)
	}

	info, err := filmToProtoInfo(film)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode film details: %v", err)
	}
	return info, nil
}

// CheckFilmExists реализует gRPC метод CheckFilmExists.
func (s *Server) CheckFilmExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	return s.checkExists(ctx, "film", req.GetValue(), func(ctx context.Context, id int64) error {
		_, err := s.films.GetFilmByID(ctx, id)
		return err
	})
}

// CheckUserExists реализует gRPC метод CheckUserExists.
func (s *Server) CheckUserExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	return s.checkExists(ctx, "user", req.GetValue(), func(ctx context.Context, id int64) error {
		_, err := s.users.GetUserByID(ctx, id)
		return err
	})
}

func (s *Server) checkExists(ctx context.Context, kind string, id int64, lookup func(context.Context, int64) error) (*wrapperspb.BoolValue, error) {
	s.logger.InfoContext(ctx, "gRPC existence check called", slog.String("kind", kind), slog.Int64("id", id))

	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "%s id must be positive", kind)
	}
	if err := lookup(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return wrapperspb.Bool(false), nil
		}
		s.logger.ErrorContext(ctx, "Failed to check existence", slog.String("kind", kind), slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check %s existence: %v", kind, err)
	}
	return wrapperspb.Bool(true), nil
}

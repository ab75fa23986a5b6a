package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// callTimeout таймаут на один вызов
const callTimeout = 3 * time.Second

// FilmServiceClient определяет методы для взаимодействия с FilmInterService.
type FilmServiceClient interface {
	CheckFilmExists(ctx context.Context, filmID int64) (bool, error)
	CheckUserExists(ctx context.Context, userID int64) (bool, error)
	GetFilmInfo(ctx context.Context, filmID int64) (map[string]interface{}, error)
	Close() error
}

// filmServiceGRPCClient реализует FilmServiceClient поверх grpc.ClientConn.
type filmServiceGRPCClient struct {
	conn   *grpc.ClientConn
	logger *slog.Logger
}

// NewFilmServiceGRPCClient создает клиента для адреса addr (например, "localhost:9092").
// Дополнительные opts добавляются после insecure-транспорта.
func NewFilmServiceGRPCClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (FilmServiceClient, error) {
	logger.Info("Creating FilmService gRPC client", slog.String("address", addr))

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		logger.Error("Failed to create FilmService gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create film service client for %s: %w", addr, err)
	}
	return &filmServiceGRPCClient{conn: conn, logger: logger}, nil
}

func (c *filmServiceGRPCClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.conn.Invoke(callCtx, fullMethod(method), in, out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "FilmService gRPC call failed",
			slog.String("method", method),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return fmt.Errorf("grpc %s failed: %w", method, err)
	}
	return nil
}

func (c *filmServiceGRPCClient) CheckFilmExists(ctx context.Context, filmID int64) (bool, error) {
	return c.checkExists(ctx, "CheckFilmExists", filmID)
}

func (c *filmServiceGRPCClient) CheckUserExists(ctx context.Context, userID int64) (bool, error) {
	return c.checkExists(ctx, "CheckUserExists", userID)
}

func (c *filmServiceGRPCClient) checkExists(ctx context.Context, method string, id int64) (bool, error) {
	if id <= 0 {
		return false, status.Errorf(codes.InvalidArgument, "id must be positive")
	}
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, method, wrapperspb.Int64(id), out); err != nil {
		return false, err
	}
	c.logger.DebugContext(ctx, "FilmService existence check done", slog.String("method", method), slog.Int64("id", id), slog.Bool("exists", out.GetValue()))
	return out.GetValue(), nil
}

// GetFilmInfo возвращает краткую карточку фильма. Числа приходят как float64.
func (c *filmServiceGRPCClient) GetFilmInfo(ctx context.Context, filmID int64) (map[string]interface{}, error) {
	if filmID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "filmID must be positive")
	}
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetFilmInfo", wrapperspb.Int64(filmID), out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Close закрывает gRPC соединение.
func (c *filmServiceGRPCClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing gRPC connection to FilmService")
		return c.conn.Close()
	}
	return nil
}

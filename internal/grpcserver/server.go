// Package grpcserver implements the CatalogService gRPC server.
//
// It delegates all business logic to the review and internship services and
// handles only the gRPC transport concerns: metadata extraction, error
// mapping, and conversion between domain types and Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/internship"
	"jobmate/review-service/internal/review"
)

const maxPageSize = 100

// SearchRequest is the body of ListReviews and SearchInternships. Fields
// left out keep the collection's configured defaults.
type SearchRequest struct {
	Criteria *catalog.Criteria `json:"criteria,omitempty"`
	Sort     *catalog.SortSpec `json:"sort,omitempty"`
	Page     int               `json:"page,omitempty"`
	PageSize int               `json:"pageSize,omitempty"`
}

// Server implements CatalogServer.
type Server struct {
	reviews     *review.Service
	internships *internship.Service
}

// NewServer constructs a gRPC Server backed by the given services.
func NewServer(reviews *review.Service, internships *internship.Service) *Server {
	return &Server{reviews: reviews, internships: internships}
}

// New returns a grpc.Server with the catalog service registered and every
// call logged. A panicking handler fails its own call with codes.Internal.
func New(srv CatalogServer, log *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(logCalls(log), recoverCalls(log))}, opts...)
	s := grpc.NewServer(opts...)
	RegisterCatalogServer(s, srv)
	return s
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListReviews runs a stateless review search and returns one page.
func (s *Server) ListReviews(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, spec := s.reviews.Store().Defaults()
	req, err := decodeSearch(in, c, spec)
	if err != nil {
		return nil, err
	}
	items, err := s.reviews.List(*req.Criteria, *req.Sort)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(catalog.Paginate(items, req.Page, req.PageSize))
}

// GetReview returns one review by id.
func (s *Server) GetReview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	r, err := s.reviews.Get(req.ID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(r)
}

// SubmitReview validates and stores a new review authored by the caller.
func (s *Server) SubmitReview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	var form review.Form
	if err := fromStruct(in, &form); err != nil {
		return nil, err
	}
	r, err := s.reviews.Submit(ctx, form, userID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(r)
}

// SearchInternships runs a stateless internship search and returns one page.
func (s *Server) SearchInternships(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, spec := s.internships.Store().Defaults()
	req, err := decodeSearch(in, c, spec)
	if err != nil {
		return nil, err
	}
	items, err := s.internships.Search(*req.Criteria, *req.Sort)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(catalog.Paginate(items, req.Page, req.PageSize))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the gateway via
// gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

func decodeSearch(in *structpb.Struct, c catalog.Criteria, spec catalog.SortSpec) (SearchRequest, error) {
	req := SearchRequest{Criteria: &c, Sort: &spec}
	if err := fromStruct(in, &req); err != nil {
		return req, err
	}
	if req.Criteria == nil {
		req.Criteria = &c
	}
	if req.Sort == nil {
		req.Sort = &spec
	}
	if req.PageSize > maxPageSize {
		return req, status.Errorf(codes.InvalidArgument, "pageSize must be at most %d", maxPageSize)
	}
	return req, nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var (
		formErr *review.ValidationError
		critErr *catalog.ValidationError
	)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &formErr):
		return status.Error(codes.InvalidArgument, formErr.Error())
	case errors.As(err, &critErr):
		return status.Error(codes.InvalidArgument, critErr.Error())
	case errors.Is(err, catalog.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

// toStruct converts v to a Struct through its JSON form, so timestamps
// travel as RFC 3339 strings.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// fromStruct decodes s into v. Keys missing from s leave v untouched.
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("invalid request: %v", err))
	}
	return nil
}

func logCalls(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(start)))
		return resp, err
	}
}

func recoverCalls(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc handler panicked",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

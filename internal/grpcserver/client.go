package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/review-service/internal/catalog"
	"jobmate/review-service/internal/model"
	"jobmate/review-service/internal/review"
)

// Client calls a remote CatalogService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// ListReviews searches reviews on the server.
func (c *Client) ListReviews(ctx context.Context, req SearchRequest) (catalog.Page[model.Review], error) {
	var page catalog.Page[model.Review]
	err := c.call(ctx, "ListReviews", req, &page)
	return page, err
}

// GetReview fetches one review.
func (c *Client) GetReview(ctx context.Context, id string) (model.Review, error) {
	var r model.Review
	err := c.call(ctx, "GetReview", map[string]string{"id": id}, &r)
	return r, err
}

// SubmitReview stores a review on behalf of userID.
func (c *Client) SubmitReview(ctx context.Context, userID string, f review.Form) (model.Review, error) {
	var r model.Review
	ctx = metadata.AppendToOutgoingContext(ctx, "x-user-id", userID)
	err := c.call(ctx, "SubmitReview", f, &r)
	return r, err
}

// SearchInternships searches internships on the server.
func (c *Client) SearchInternships(ctx context.Context, req SearchRequest) (catalog.Page[model.Internship], error) {
	var page catalog.Page[model.Internship]
	err := c.call(ctx, "SearchInternships", req, &page)
	return page, err
}

package types

import (
	"context"

	"instavibe/shared"
)

type ApiClient interface {
	CreatePost(ctx context.Context, req shared.CreatePostRequest) (*shared.CreatePostResponse, *shared.ApiError)
	ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError)
	DeletePost(ctx context.Context, id string) *shared.ApiError

	// FetchImageHeader reads just enough of an image to learn its format and size.
	FetchImageHeader(ctx context.Context, url string) (*ImageHeader, *shared.ApiError)
}

type ImageHeader struct {
	Format string
	Width  int
	Height int
}

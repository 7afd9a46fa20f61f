package lib

import (
	"context"
	"sync"

	"instavibe/shared"
	"instavibe/types"
)

// fakeClient scripts ApiClient responses per test. Unset hooks fail loudly as "other" errors.
type fakeClient struct {
	mu      sync.Mutex
	creates []shared.CreatePostRequest
	lists   int
	deletes []string

	createFn func(ctx context.Context, req shared.CreatePostRequest) (*shared.CreatePostResponse, *shared.ApiError)
	listFn   func(ctx context.Context) ([]*shared.Post, *shared.ApiError)
	deleteFn func(ctx context.Context, id string) *shared.ApiError
	headerFn func(ctx context.Context, url string) (*types.ImageHeader, *shared.ApiError)
}

var _ types.ApiClient = (*fakeClient)(nil)

var errUnscripted = &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: "unscripted call"}

func (c *fakeClient) CreatePost(ctx context.Context, req shared.CreatePostRequest) (*shared.CreatePostResponse, *shared.ApiError) {
	c.mu.Lock()
	c.creates = append(c.creates, req)
	fn := c.createFn
	c.mu.Unlock()
	if fn == nil {
		return nil, errUnscripted
	}
	return fn(ctx, req)
}

func (c *fakeClient) ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	c.mu.Lock()
	c.lists++
	fn := c.listFn
	c.mu.Unlock()
	if fn == nil {
		return nil, errUnscripted
	}
	return fn(ctx)
}

func (c *fakeClient) DeletePost(ctx context.Context, id string) *shared.ApiError {
	c.mu.Lock()
	c.deletes = append(c.deletes, id)
	fn := c.deleteFn
	c.mu.Unlock()
	if fn == nil {
		return errUnscripted
	}
	return fn(ctx, id)
}

func (c *fakeClient) FetchImageHeader(ctx context.Context, url string) (*types.ImageHeader, *shared.ApiError) {
	c.mu.Lock()
	fn := c.headerFn
	c.mu.Unlock()
	if fn == nil {
		return nil, errUnscripted
	}
	return fn(ctx, url)
}

func (c *fakeClient) createCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.creates)
}

func (c *fakeClient) listCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists
}

package api

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"instavibe/shared"
	"instavibe/types"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// headers of every supported format fit well within this
const maxImageHeaderBytes = 1 << 20

func (a *Api) FetchImageHeader(ctx context.Context, imageUrl string) (*types.ImageHeader, *shared.ApiError) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, imageUrl, nil)
	if err != nil {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}

	resp, err := a.fastClient.Do(request)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, HandleApiError(resp, errorBody)
	}

	cfg, format, err := image.DecodeConfig(io.LimitReader(resp.Body, maxImageHeaderBytes))
	if err != nil {
		return nil, dataFormatError("error decoding image: %v", err)
	}

	return &types.ImageHeader{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

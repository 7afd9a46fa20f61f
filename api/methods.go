package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"instavibe/shared"
)

// keeps a misbehaving server from handing us an unbounded listing
const maxListBytes = 16 << 20

func (a *Api) CreatePost(ctx context.Context, req shared.CreatePostRequest) (*shared.CreatePostResponse, *shared.ApiError) {
	serverUrl := a.host + "/upload"

	var body bytes.Buffer
	var contentType string

	if req.Image != nil {
		writer := multipart.NewWriter(&body)
		if err := writeMultipartPost(writer, req); err != nil {
			return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error building multipart body: %v", err)}
		}
		contentType = writer.FormDataContentType()
	} else {
		log.Println("creating post without an image (text-only body)")
		reqBytes, err := json.Marshal(req)
		if err != nil {
			return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error marshalling request: %v", err)}
		}
		body.Write(reqBytes)
		contentType = "application/json"
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, serverUrl, &body)
	if err != nil {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}
	request.Header.Set("Content-Type", contentType)

	resp, err := a.uploadClient.Do(request)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, HandleApiError(resp, errorBody)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	// success decides the outcome on its own; the post fields are extra
	var status struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, dataFormatError("error decoding response: %v", err)
	}
	if !status.Success {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeServerLogical, Status: resp.StatusCode, Msg: status.Error}
	}

	var respBody shared.CreatePostResponse
	if err := json.Unmarshal(raw, &respBody); err != nil {
		log.Printf("post created but response fields didn't decode: %v", err)
		respBody = shared.CreatePostResponse{}
	}
	respBody.Success = true
	debugDump("create post response", respBody)

	return &respBody, nil
}

func writeMultipartPost(writer *multipart.Writer, req shared.CreatePostRequest) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, req.Image.Name))
	mimeType := req.Image.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("error creating file part: %v", err)
	}
	if _, err := part.Write(req.Image.Data); err != nil {
		return fmt.Errorf("error writing file part: %v", err)
	}

	if err := writer.WriteField("username", req.Username); err != nil {
		return fmt.Errorf("error writing username: %v", err)
	}
	if err := writer.WriteField("caption", req.Caption); err != nil {
		return fmt.Errorf("error writing caption: %v", err)
	}

	return writer.Close()
}

func (a *Api) ListPosts(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	serverUrl := a.host + "/files"

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, serverUrl, nil)
	if err != nil {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}

	resp, err := a.fastClient.Do(request)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, HandleApiError(resp, errorBody)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxListBytes))
	if err != nil {
		return nil, networkError(err)
	}

	posts, apiErr := decodePostList(raw)
	if apiErr != nil {
		log.Printf("unexpected /files body: %.200s", raw)
		return nil, apiErr
	}
	debugDump("list posts response", posts)

	return posts, nil
}

// decodePostList accepts only a flat JSON array of posts.
func decodePostList(raw []byte) ([]*shared.Post, *shared.ApiError) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, dataFormatError("expected a list of posts")
	}

	var posts []*shared.Post
	if err := json.Unmarshal(trimmed, &posts); err != nil {
		return nil, dataFormatError("error decoding posts: %v", err)
	}

	for i, p := range posts {
		if p == nil || p.Id == "" {
			return nil, dataFormatError("post %d is missing an id", i)
		}
	}

	if posts == nil {
		posts = []*shared.Post{}
	}

	return posts, nil
}

func (a *Api) DeletePost(ctx context.Context, id string) *shared.ApiError {
	serverUrl := fmt.Sprintf("%s/files/%s", a.host, url.PathEscape(id))

	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, serverUrl, nil)
	if err != nil {
		return &shared.ApiError{Type: shared.ApiErrorTypeOther, Msg: fmt.Sprintf("error creating request: %v", err)}
	}

	resp, err := a.fastClient.Do(request)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorBody, _ := io.ReadAll(resp.Body)
		return HandleApiError(resp, errorBody)
	}

	// a body is optional, but an explicit success=false still counts as failure
	body, _ := io.ReadAll(resp.Body)
	if len(bytes.TrimSpace(body)) > 0 {
		var respBody shared.DeletePostResponse
		if err := json.Unmarshal(body, &respBody); err == nil && bytes.Contains(body, []byte(`"success"`)) && !respBody.Success {
			return &shared.ApiError{Type: shared.ApiErrorTypeServerLogical, Status: resp.StatusCode, Msg: respBody.Message}
		}
	}

	return nil
}

package lib

import (
	"context"
	"errors"
	"log"
	"sync"

	"instavibe/camera"
	"instavibe/shared"
	"instavibe/types"
)

type ComposerState string

const (
	ComposerEditing    ComposerState = "editing"
	ComposerSubmitting ComposerState = "submitting"
	ComposerClosed     ComposerState = "closed"
)

type ComposerVariant string

const (
	// VariantPhoto uploads the captured frame as multipart form data.
	VariantPhoto ComposerVariant = "photo"

	// VariantTextOnly posts a JSON body with no image. Older clients shipped this by mistake;
	// it stays available behind a flag until product decides whether text posts are a feature.
	VariantTextOnly ComposerVariant = "text-only"
)

var ErrSubmitInFlight = errors.New("A post is already being uploaded")
var ErrComposerClosed = errors.New("composer is closed")

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// SubmitError is a failed upload. Msg is what the user sees.
type SubmitError struct {
	Msg    string
	ApiErr *shared.ApiError
}

func (e *SubmitError) Error() string {
	return e.Msg
}

func (e *SubmitError) Unwrap() error {
	if e.ApiErr == nil {
		return nil
	}
	return e.ApiErr
}

type ComposerOptions struct {
	Variant ComposerVariant
	Quality float64

	// Trigger is bumped exactly once per successful post.
	Trigger *RefreshTrigger

	OnSuccess func(res *shared.CreatePostResponse)
	OnClose   func()
}

// Composer holds the draft post and submits it.
type Composer struct {
	mu     sync.Mutex
	client types.ApiClient
	opts   ComposerOptions

	username string
	caption  string
	capture  *camera.Capture

	state   ComposerState
	lastErr string
}

func NewComposer(client types.ApiClient, opts ComposerOptions) *Composer {
	if opts.Variant == "" {
		opts.Variant = VariantPhoto
	}
	opts.Quality = camera.NormalizeQuality(opts.Quality)
	if opts.Trigger == nil {
		opts.Trigger = NewRefreshTrigger()
	}

	return &Composer{
		client: client,
		opts:   opts,
		state:  ComposerEditing,
	}
}

func (c *Composer) SetUsername(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = s
}

func (c *Composer) SetCaption(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caption = s
}

func (c *Composer) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Composer) Caption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caption
}

// AttachCapture makes the composer upload whatever the capture has taken.
func (c *Composer) AttachCapture(capture *camera.Capture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capture = capture
}

func (c *Composer) Capture() *camera.Capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture
}

func (c *Composer) Variant() ComposerVariant {
	return c.opts.Variant
}

func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the message from the last failed submit, cleared when a new one starts.
func (c *Composer) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CanSubmit mirrors the submit button: enabled only while editing with both fields filled.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, hasUser := shared.TrimmedOrEmpty(c.username)
	_, hasCaption := shared.TrimmedOrEmpty(c.caption)
	return c.state == ComposerEditing && hasUser && hasCaption
}

func (c *Composer) Submit(ctx context.Context) (*shared.CreatePostResponse, error) {
	c.mu.Lock()

	switch c.state {
	case ComposerClosed:
		c.mu.Unlock()
		return nil, ErrComposerClosed
	case ComposerSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	req, err := c.buildRequestLocked()
	if err != nil {
		c.lastErr = err.Error()
		c.mu.Unlock()
		return nil, err
	}

	c.state = ComposerSubmitting
	c.lastErr = ""
	c.mu.Unlock()

	res, apiErr := c.client.CreatePost(ctx, req)

	c.mu.Lock()
	if apiErr != nil {
		c.state = ComposerEditing
		msg := UploadErrorMessage(apiErr)
		c.lastErr = msg
		c.mu.Unlock()
		log.Printf("upload failed: %v", apiErr)
		return nil, &SubmitError{Msg: msg, ApiErr: apiErr}
	}

	c.username = ""
	c.caption = ""
	capture := c.capture
	c.state = ComposerClosed
	c.mu.Unlock()

	log.Printf("post created: %s", res.Id)

	if capture != nil {
		capture.Reset()
	}

	c.opts.Trigger.Bump()

	if c.opts.OnSuccess != nil {
		c.opts.OnSuccess(res)
	}
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}

	return res, nil
}

func (c *Composer) buildRequestLocked() (shared.CreatePostRequest, error) {
	username, ok := shared.TrimmedOrEmpty(c.username)
	if !ok {
		return shared.CreatePostRequest{}, &ValidationError{Field: "username", Msg: MsgEnterUsername}
	}

	caption, ok := shared.TrimmedOrEmpty(c.caption)
	if !ok {
		return shared.CreatePostRequest{}, &ValidationError{Field: "caption", Msg: MsgEnterCaption}
	}

	req := shared.CreatePostRequest{Username: username, Caption: caption}

	if c.opts.Variant == VariantTextOnly {
		log.Println("text-only variant: submitting without a photo")
		return req, nil
	}

	if c.capture == nil {
		return shared.CreatePostRequest{}, &ValidationError{Field: "photo", Msg: MsgTakePhoto}
	}

	encoded, err := c.capture.ToEncodedImage(c.opts.Quality)
	if err != nil {
		return shared.CreatePostRequest{}, &ValidationError{Field: "photo", Msg: MsgTakePhoto}
	}
	req.Image = encoded.File()

	return req, nil
}

// Cancel discards the draft and lets go of the camera. Not allowed mid-upload.
func (c *Composer) Cancel() error {
	c.mu.Lock()
	if c.state == ComposerSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.username = ""
	c.caption = ""
	c.lastErr = ""
	capture := c.capture
	c.state = ComposerClosed
	c.mu.Unlock()

	if capture != nil {
		capture.Reset()
	}
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}
	return nil
}

// Reopen starts a fresh draft after the composer closed.
func (c *Composer) Reopen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ComposerClosed {
		c.state = ComposerEditing
		c.lastErr = ""
	}
}

func (c *Composer) SuccessMessage() string {
	if c.opts.Variant == VariantTextOnly {
		return MsgTextPostPosted
	}
	return MsgPhotoPosted
}

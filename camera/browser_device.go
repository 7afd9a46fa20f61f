package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"
	"sync"
	"time"

	chrome_runtime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const defaultBrowserTimeout = 20 * time.Second

// BrowserDevice reaches the real camera through Chrome's getUserMedia, driven by chromedp.
type BrowserDevice struct {
	Headless bool

	// FakeMedia swaps in Chrome's built-in synthetic camera
	FakeMedia bool

	Timeout time.Duration
}

func (d *BrowserDevice) Name() string {
	if d.FakeMedia {
		return "browser (fake media)"
	}
	return "browser"
}

func (d *BrowserDevice) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return defaultBrowserTimeout
}

type browserStartResult struct {
	Error  string `json:"error"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

const startStreamScript = `(async () => {
  try {
    const stream = await navigator.mediaDevices.getUserMedia({
      video: { facingMode: %q, width: { ideal: %d }, height: { ideal: %d } }
    });
    const video = document.createElement("video");
    video.muted = true;
    video.playsInline = true;
    video.srcObject = stream;
    await video.play();
    window.__instavibe = { stream, video };
    return { width: video.videoWidth, height: video.videoHeight };
  } catch (e) {
    return { error: e.name || String(e) };
  }
})()`

const frameScript = `(() => {
  const v = window.__instavibe && window.__instavibe.video;
  if (!v || !v.videoWidth) return "";
  const canvas = document.createElement("canvas");
  canvas.width = v.videoWidth;
  canvas.height = v.videoHeight;
  canvas.getContext("2d").drawImage(v, 0, 0);
  return canvas.toDataURL("image/png");
})()`

const stopScript = `(() => {
  const s = window.__instavibe && window.__instavibe.stream;
  if (s) s.getTracks().forEach(t => t.stop());
  window.__instavibe = null;
  return true;
})()`

func awaitPromise(p *chrome_runtime.EvaluateParams) *chrome_runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (d *BrowserDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.Headless),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("use-fake-ui-for-media-stream", true), // auto-accept the permission bubble
	)
	if d.FakeMedia {
		opts = append(opts, chromedp.Flag("use-fake-device-for-media-stream", true))
	}

	allocCtx, cancelAllocator := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAllocator()
	}

	// the first Run allocates the browser and binds it to browserCtx
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: error launching chrome: %v", ErrUnavailable, err)
	}

	runCtx, cancelRun := d.runContext(ctx, browserCtx)
	defer cancelRun()

	facing := c.Facing
	if facing == "" {
		facing = FacingUser
	}

	var res browserStartResult
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(fmt.Sprintf(startStreamScript, string(facing), c.IdealWidth, c.IdealHeight), &res, awaitPromise),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if res.Error != "" {
		cancel()
		switch res.Error {
		case "NotAllowedError", "SecurityError", "PermissionDeniedError":
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, res.Error)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, res.Error)
		}
	}

	log.Printf("browser camera streaming at %dx%d", res.Width, res.Height)

	return &browserStream{
		device: d,
		ctx:    browserCtx,
		cancel: cancel,
		width:  res.Width,
		height: res.Height,
	}, nil
}

// runContext bounds one batch of actions by the device timeout and the caller's ctx
// without tying the browser itself to either.
func (d *BrowserDevice) runContext(ctx, browserCtx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(browserCtx, d.timeout())
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

type browserStream struct {
	mu      sync.Mutex
	device  *BrowserDevice
	ctx     context.Context
	cancel  func()
	width   int
	height  int
	stopped bool
}

func (s *browserStream) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, 0
	}
	return s.width, s.height
}

// Frame and Stop don't hold the mutex across browser calls; cancelling the browser
// context in Stop is what cuts a pending frame short.
func (s *browserStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, errors.New("stream stopped")
	}

	runCtx, cancel := s.device.runContext(ctx, s.ctx)
	defer cancel()

	var dataURL string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(frameScript, &dataURL)); err != nil {
		return nil, fmt.Errorf("error grabbing frame: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, errors.New("video has no frame yet")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		return nil, fmt.Errorf("error decoding frame data: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("error decoding frame png: %v", err)
	}
	return img, nil
}

func (s *browserStream) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	// the tracks also end when the browser closes below
	stopCtx, cancel := context.WithTimeout(s.ctx, 500*time.Millisecond)
	var ok bool
	if err := chromedp.Run(stopCtx, chromedp.Evaluate(stopScript, &ok)); err != nil {
		log.Printf("error stopping browser tracks: %v", err)
	}
	cancel()

	s.cancel()
}

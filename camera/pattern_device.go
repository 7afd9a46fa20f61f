package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
)

// PatternDevice is a synthetic camera producing moving color bars. It needs no hardware,
// which makes it the default for demos and the device used by tests.
type PatternDevice struct {
	Width  int
	Height int

	// Deny makes Open behave like a user refusing camera access.
	Deny bool
}

func (d *PatternDevice) Name() string {
	return "pattern"
}

func (d *PatternDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if d.Deny {
		return nil, fmt.Errorf("%w: denied by pattern device", ErrPermissionDenied)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	width, height := d.Width, d.Height
	if width <= 0 || height <= 0 {
		width, height = c.IdealWidth, c.IdealHeight
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultConstraints.IdealWidth, DefaultConstraints.IdealHeight
	}

	return &patternStream{width: width, height: height}, nil
}

var bars = []color.RGBA{
	{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	{R: 0xc0, G: 0xc0, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xc0, B: 0xc0, A: 0xff},
	{R: 0x00, G: 0xc0, B: 0x00, A: 0xff},
	{R: 0xc0, G: 0x00, B: 0xc0, A: 0xff},
	{R: 0xc0, G: 0x00, B: 0x00, A: 0xff},
	{R: 0x00, G: 0x00, B: 0xc0, A: 0xff},
}

type patternStream struct {
	mu      sync.Mutex
	width   int
	height  int
	tick    int
	stopped bool
}

func (s *patternStream) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, 0
	}
	return s.width, s.height
}

func (s *patternStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errors.New("stream stopped")
	}
	s.tick++

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	barWidth := s.width / len(bars)
	if barWidth == 0 {
		barWidth = 1
	}
	for x := 0; x < s.width; x++ {
		c := bars[((x/barWidth)+s.tick)%len(bars)]
		for y := 0; y < s.height; y++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (s *patternStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

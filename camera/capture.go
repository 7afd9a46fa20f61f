package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

const (
	StateIdle      = "idle"
	StateStreaming = "streaming"
	StateCaptured  = "captured"
)

const (
	eventStart   = "start"
	eventCapture = "capture"
	eventStop    = "stop"
	eventDiscard = "discard"
)

func newCaptureState() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle, StateCaptured}, Dst: StateStreaming},
			{Name: eventCapture, Src: []string{StateStreaming}, Dst: StateCaptured},
			{Name: eventStop, Src: []string{StateStreaming}, Dst: StateIdle},
			{Name: eventDiscard, Src: []string{StateCaptured}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// Capture drives one camera through idle -> streaming -> captured. It owns at most one
// live session at a time. The mutex is never held while a device opens, grabs a frame or
// stops, so State and Preview stay cheap for a render loop.
type Capture struct {
	mu sync.Mutex

	device      Device
	constraints Constraints
	state       *fsm.FSM
	session     *session

	frame   *image.RGBA
	encoded *EncodedImage

	// gen changes whenever the live session is replaced or dropped, so a device call
	// that finishes late can tell its result is no longer wanted
	gen  uint64
	busy bool

	closed bool
	now    func() time.Time
}

type Option func(*Capture)

func WithConstraints(c Constraints) Option {
	return func(capture *Capture) {
		capture.constraints = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(capture *Capture) {
		capture.now = now
	}
}

func NewCapture(device Device, opts ...Option) *Capture {
	c := &Capture{
		device:      device,
		constraints: DefaultConstraints,
		state:       newCaptureState(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Capture) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Current()
}

// Busy reports a device open or frame grab in progress.
func (c *Capture) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Capture) DeviceName() string {
	return c.device.Name()
}

// Preview returns the live stream while streaming, nil otherwise.
func (c *Capture) Preview() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.stream
}

// Snapshot returns the captured still, nil unless captured.
func (c *Capture) Snapshot() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == nil {
		return nil
	}
	return c.frame
}

// StartSession opens a fresh stream. An active session is released first. On failure
// the state is left as it was, minus any session that was released.
func (c *Capture) StartSession(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	// a restart must let go of the hardware before asking for it again
	prev := c.detachLocked()
	c.busy = true
	gen := c.gen
	constraints := c.constraints
	c.mu.Unlock()

	prev.release()

	return c.open(ctx, gen, constraints)
}

func (c *Capture) open(ctx context.Context, gen uint64, constraints Constraints) error {
	stream, err := c.device.Open(ctx, constraints)

	c.mu.Lock()
	if c.gen == gen {
		c.busy = false
	}

	if err != nil {
		c.mu.Unlock()
		log.Printf("camera %s failed to open: %v", c.device.Name(), err)
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if c.closed || c.gen != gen {
		closed := c.closed
		c.mu.Unlock()
		log.Printf("camera %s released while opening, stopping the new stream", c.device.Name())
		stream.Stop()
		if closed {
			return ErrClosed
		}
		return ErrCanceled
	}

	c.session = newSession(c.device.Name(), stream)
	c.frame = nil
	c.encoded = nil
	c.fire(eventStart)
	c.mu.Unlock()

	return nil
}

func (c *Capture) CaptureFrame(ctx context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.Current() != StateStreaming || c.session == nil {
		c.mu.Unlock()
		return ErrNotReady
	}

	sess := c.session
	gen := c.gen
	c.busy = true
	c.mu.Unlock()

	img, width, height, err := grabFrame(ctx, sess.stream)

	c.mu.Lock()
	if c.gen != gen {
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		return ErrCanceled
	}
	c.busy = false

	if err != nil {
		c.mu.Unlock()
		if !errors.Is(err, ErrNotReady) {
			log.Printf("camera %s frame error: %v", c.device.Name(), err)
			err = fmt.Errorf("%w: %v", ErrNotReady, err)
		}
		return err
	}

	c.frame = copyFrame(img, width, height)
	c.encoded = nil
	c.session = nil
	c.gen++
	c.fire(eventCapture)
	c.mu.Unlock()

	sess.release()

	return nil
}

func grabFrame(ctx context.Context, stream Stream) (image.Image, int, int, error) {
	width, height := stream.Dimensions()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, ErrNotReady
	}
	img, err := stream.Frame(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	return img, width, height, nil
}

// ToEncodedImage encodes the captured still. The result is cached until the next capture.
func (c *Capture) ToEncodedImage(quality float64) (*EncodedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Current() != StateCaptured || c.frame == nil {
		return nil, ErrNoCapture
	}

	quality = NormalizeQuality(quality)
	if c.encoded != nil && c.encoded.Quality == quality {
		return c.encoded, nil
	}

	encoded, err := encodeJPEG(c.frame, quality, c.now())
	if err != nil {
		return nil, err
	}
	c.encoded = encoded

	return encoded, nil
}

// Retake throws the still away and starts streaming again. A failed restart ends idle.
func (c *Capture) Retake(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Current() != StateCaptured {
		c.mu.Unlock()
		return ErrNoCapture
	}
	c.frame = nil
	c.encoded = nil
	c.fire(eventDiscard)
	c.mu.Unlock()

	return c.StartSession(ctx)
}

// Release stops any live session. The captured still, if any, is kept.
func (c *Capture) Release() {
	c.mu.Lock()
	sess := c.detachLocked()
	c.mu.Unlock()

	sess.release()
}

// detachLocked drops the live session and any device call in flight. The caller stops
// the returned session once the lock is released.
func (c *Capture) detachLocked() *session {
	c.gen++
	c.busy = false

	sess := c.session
	if sess == nil {
		return nil
	}
	c.session = nil
	c.fire(eventStop)
	return sess
}

// Reset releases the hardware and discards any captured still.
func (c *Capture) Reset() {
	c.mu.Lock()
	sess := c.detachLocked()
	c.frame = nil
	c.encoded = nil
	c.fire(eventDiscard)
	c.mu.Unlock()

	sess.release()
}

func (c *Capture) Close() {
	c.mu.Lock()
	sess := c.detachLocked()
	c.frame = nil
	c.encoded = nil
	c.fire(eventDiscard)
	c.closed = true
	c.mu.Unlock()

	sess.release()
}

func (c *Capture) fire(event string) {
	if !c.state.Can(event) {
		return
	}
	if err := c.state.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			log.Printf("camera state error on %s: %v", event, err)
		}
	}
}

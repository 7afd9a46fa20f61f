package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDevice wraps the pattern device and records stream lifecycles.
// openGate and frameGate, when set, hold Open and Frame until they are closed.
type countingDevice struct {
	mu        sync.Mutex
	inner     Device
	openErr   error
	zeroDims  bool
	openGate  chan struct{}
	frameGate chan struct{}
	streams   []*countingStream
}

func (d *countingDevice) Name() string { return "counting" }

func (d *countingDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	gate := d.openGate
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	s, err := d.inner.Open(ctx, c)
	if err != nil {
		return nil, err
	}
	cs := &countingStream{Stream: s, zeroDims: d.zeroDims, frameGate: d.frameGate}
	d.streams = append(d.streams, cs)
	return cs, nil
}

func (d *countingDevice) setOpenErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr = err
}

func (d *countingDevice) opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.streams)
}

func (d *countingDevice) active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.streams {
		if s.stops.Load() == 0 {
			n++
		}
	}
	return n
}

type countingStream struct {
	Stream
	stops     atomic.Int32
	zeroDims  bool
	frameGate chan struct{}
}

func (s *countingStream) Dimensions() (int, int) {
	if s.zeroDims {
		return 0, 0
	}
	return s.Stream.Dimensions()
}

func (s *countingStream) Frame(ctx context.Context) (image.Image, error) {
	if s.frameGate != nil {
		<-s.frameGate
	}
	return s.Stream.Frame(ctx)
}

func (s *countingStream) Stop() {
	s.stops.Add(1)
	s.Stream.Stop()
}

func newCountingCapture(opts ...Option) (*Capture, *countingDevice) {
	dev := &countingDevice{inner: &PatternDevice{Width: 64, Height: 48}}
	return NewCapture(dev, opts...), dev
}

func TestCaptureFrameBeforeStart(t *testing.T) {
	c, _ := newCountingCapture()

	err := c.CaptureFrame(context.Background())

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, "Camera is not ready yet. Please wait or click Start Camera again.", UserMessage(err))
}

func TestStartCaptureEncode(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	c, dev := newCountingCapture(WithClock(func() time.Time { return at }))
	ctx := context.Background()

	require.NoError(t, c.StartSession(ctx))
	assert.Equal(t, StateStreaming, c.State())
	assert.NotNil(t, c.Preview())
	assert.Equal(t, 1, dev.active())

	require.NoError(t, c.CaptureFrame(ctx))
	assert.Equal(t, StateCaptured, c.State())
	assert.Nil(t, c.Preview())
	assert.Equal(t, 0, dev.active(), "capturing must release the camera")

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, image.Rect(0, 0, 64, 48), snap.Bounds())

	encoded, err := c.ToEncodedImage(0)
	require.NoError(t, err)
	assert.Equal(t, "photo_1700000000123.jpg", encoded.Name)
	assert.Equal(t, "image/jpeg", encoded.MimeType)
	assert.Equal(t, DefaultQuality, encoded.Quality)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(encoded.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)

	again, err := c.ToEncodedImage(0.8)
	require.NoError(t, err)
	assert.Same(t, encoded, again, "same quality should reuse the encoded image")
}

func TestCaptureWithZeroDimensions(t *testing.T) {
	c, dev := newCountingCapture()
	dev.zeroDims = true

	require.NoError(t, c.StartSession(context.Background()))
	err := c.CaptureFrame(context.Background())

	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StateStreaming, c.State())
	assert.Equal(t, 1, dev.active())
}

func TestStartSessionDenied(t *testing.T) {
	c := NewCapture(&PatternDevice{Deny: true})

	err := c.StartSession(context.Background())

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, "Please allow camera access to take photos", UserMessage(err))
}

func TestStartSessionDeviceError(t *testing.T) {
	c, dev := newCountingCapture()
	dev.setOpenErr(errors.New("device busy"))

	err := c.StartSession(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, StateIdle, c.State())
}

func TestRestartReleasesPreviousSession(t *testing.T) {
	c, dev := newCountingCapture()
	ctx := context.Background()

	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.StartSession(ctx))

	assert.Equal(t, StateStreaming, c.State())
	assert.Len(t, dev.streams, 2)
	assert.Equal(t, int32(1), dev.streams[0].stops.Load())
	assert.Equal(t, 1, dev.active())
}

func TestRetake(t *testing.T) {
	c, dev := newCountingCapture()
	ctx := context.Background()

	assert.ErrorIs(t, c.Retake(ctx), ErrNoCapture)

	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.CaptureFrame(ctx))
	require.NotNil(t, c.Snapshot())

	require.NoError(t, c.Retake(ctx))

	assert.Equal(t, StateStreaming, c.State())
	assert.Nil(t, c.Snapshot())
	assert.Equal(t, 1, dev.active())

	_, err := c.ToEncodedImage(0.8)
	assert.ErrorIs(t, err, ErrNoCapture)
}

func TestFailedRetakeEndsIdle(t *testing.T) {
	c, dev := newCountingCapture()
	ctx := context.Background()

	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.CaptureFrame(ctx))

	dev.setOpenErr(errors.New("device unplugged"))
	err := c.Retake(ctx)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Snapshot())
	assert.Equal(t, 0, dev.active())
}

func TestStateReadableWhileDeviceOpens(t *testing.T) {
	c, dev := newCountingCapture()
	dev.openGate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- c.StartSession(context.Background()) }()

	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)

	start := time.Now()
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Preview())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.ErrorIs(t, c.StartSession(context.Background()), ErrBusy)

	close(dev.openGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateStreaming, c.State())
	assert.False(t, c.Busy())
	c.Close()
}

func TestReleaseWhileOpeningStopsNewStream(t *testing.T) {
	c, dev := newCountingCapture()
	dev.openGate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- c.StartSession(context.Background()) }()
	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)

	c.Release()
	assert.False(t, c.Busy())
	close(dev.openGate)

	assert.ErrorIs(t, <-done, ErrCanceled)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, dev.opened())
	assert.Equal(t, 0, dev.active())
}

func TestCloseWhileOpeningStopsNewStream(t *testing.T) {
	c, dev := newCountingCapture()
	dev.openGate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- c.StartSession(context.Background()) }()
	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)

	c.Close()
	close(dev.openGate)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, 0, dev.active())
}

func TestStateReadableWhileFrameGrabs(t *testing.T) {
	c, dev := newCountingCapture()
	dev.frameGate = make(chan struct{})
	require.NoError(t, c.StartSession(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.CaptureFrame(context.Background()) }()
	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)

	assert.Equal(t, StateStreaming, c.State())
	assert.ErrorIs(t, c.CaptureFrame(context.Background()), ErrBusy)

	close(dev.frameGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateCaptured, c.State())
	assert.NotNil(t, c.Snapshot())
	assert.Equal(t, 0, dev.active())
}

func TestReleaseIsIdempotent(t *testing.T) {
	c, dev := newCountingCapture()

	require.NoError(t, c.StartSession(context.Background()))
	c.Release()
	c.Release()

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, int32(1), dev.streams[0].stops.Load())
}

func TestCloseReleasesAndRejects(t *testing.T) {
	c, dev := newCountingCapture()

	require.NoError(t, c.StartSession(context.Background()))
	c.Close()

	assert.Equal(t, 0, dev.active())
	assert.ErrorIs(t, c.StartSession(context.Background()), ErrClosed)
}

func TestResetDiscardsCapture(t *testing.T) {
	c, _ := newCountingCapture()
	ctx := context.Background()

	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.CaptureFrame(ctx))
	c.Reset()

	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Snapshot())
}

func TestNormalizeQuality(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.5, 0.5},
		{1, 1},
		{0, DefaultQuality},
		{-1, DefaultQuality},
		{1.5, DefaultQuality},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, NormalizeQuality(test.input), "quality %v", test.input)
	}
}

func TestFileDeviceUsesFirstFrameResolution(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 40, 30)
	writePNG(t, filepath.Join(dir, "b.png"), 80, 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))

	c := NewCapture(&FileDevice{Path: dir})
	ctx := context.Background()

	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.CaptureFrame(ctx))
	assert.Equal(t, image.Rect(0, 0, 40, 30), c.Snapshot().Bounds())
}

func TestCopyFrameScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 90, 70))

	dst := copyFrame(src, 40, 30)

	assert.Equal(t, image.Rect(0, 0, 40, 30), dst.Bounds())
}

func TestFileDeviceMissingPath(t *testing.T) {
	c := NewCapture(&FileDevice{Path: filepath.Join(t.TempDir(), "missing.png")})

	err := c.StartSession(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, StateIdle, c.State())
}

func TestNewDevice(t *testing.T) {
	dev, err := NewDevice("", "")
	require.NoError(t, err)
	assert.Equal(t, "pattern", dev.Name())

	_, err = NewDevice(DeviceKindFile, "")
	assert.Error(t, err)

	_, err = NewDevice("webcam9000", "")
	assert.Error(t, err)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

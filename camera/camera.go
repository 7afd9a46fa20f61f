package camera

import (
	"context"
	"errors"
	"image"
)

type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

type Constraints struct {
	Facing      FacingMode
	IdealWidth  int
	IdealHeight int
}

var DefaultConstraints = Constraints{
	Facing:      FacingUser,
	IdealWidth:  1280,
	IdealHeight: 720,
}

// Device hands out live streams. Implementations report access problems by wrapping
// ErrPermissionDenied or ErrUnavailable.
type Device interface {
	Name() string
	Open(ctx context.Context, c Constraints) (Stream, error)
}

type Stream interface {
	// Dimensions is the native resolution, zero until the stream has produced a frame.
	Dimensions() (width, height int)
	Frame(ctx context.Context) (image.Image, error)
	// Stop ends every track of the stream. It must be safe to call more than once.
	Stop()
}

var (
	ErrPermissionDenied = errors.New("Please allow camera access to take photos")
	ErrUnavailable      = errors.New("No camera is available on this device")
	ErrNotReady         = errors.New("Camera is not ready yet. Please wait or click Start Camera again.")
	ErrNoCapture        = errors.New("No photo has been taken yet")
	ErrBusy             = errors.New("Camera is busy. Please wait a moment.")
	ErrCanceled         = errors.New("Camera was turned off before it was ready")
	ErrClosed           = errors.New("camera is closed")
)

// UserMessage maps any camera error to the text shown to the user.
func UserMessage(err error) string {
	for _, known := range []error{ErrPermissionDenied, ErrUnavailable, ErrNotReady, ErrNoCapture, ErrBusy, ErrCanceled, ErrClosed} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ErrUnavailable.Error()
}

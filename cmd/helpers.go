package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"instavibe/camera"
	"instavibe/config"
	"instavibe/lib"
	"instavibe/term"
)

const defaultDeviceKind = camera.DeviceKindBrowser

// rootContext is cancelled on ctrl+c so every command gets to release the camera.
func rootContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// mustResolveDevice picks the camera from flags, then config, then the real camera.
func mustResolveDevice(kindFlag, pathFlag string) camera.Device {
	kind := kindFlag
	if kind == "" {
		kind = config.Current.Device
	}
	if kind == "" {
		kind = defaultDeviceKind
	}

	path := pathFlag
	if path == "" {
		path = config.Current.DevicePath
	}

	dev, err := camera.NewDevice(kind, path)
	if err != nil {
		term.OutputErrorAndExit("Error setting up camera: %v", err)
	}
	return dev
}

func resolveQuality(flagQuality float64) float64 {
	if flagQuality > 0 {
		return camera.NormalizeQuality(flagQuality)
	}
	return camera.NormalizeQuality(config.Current.Quality)
}

func aliases() lib.UsernameAliases {
	return lib.NewUsernameAliases(config.Current.Aliases)
}

// takePhoto runs a full capture and leaves the capture in the captured state.
// On failure the camera is closed before exiting.
func takePhoto(ctx context.Context, capture *camera.Capture) {
	term.StartSpinner("📷 Starting " + capture.DeviceName() + " camera...")
	if err := capture.StartSession(ctx); err != nil {
		capture.Close()
		log.Printf("camera start failed: %v", err)
		term.OutputErrorAndExit("%s", camera.UserMessage(err))
	}

	term.StartSpinner("📸 Taking photo...")
	if err := capture.CaptureFrame(ctx); err != nil {
		capture.Close()
		term.OutputErrorAndExit("%s", camera.UserMessage(err))
	}
	term.StopSpinner()
}

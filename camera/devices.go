package camera

import (
	"fmt"
	"strings"
)

const (
	DeviceKindPattern     = "pattern"
	DeviceKindFile        = "file"
	DeviceKindBrowser     = "browser"
	DeviceKindBrowserFake = "browser-fake"
)

var DeviceKinds = []string{DeviceKindPattern, DeviceKindFile, DeviceKindBrowser, DeviceKindBrowserFake}

// NewDevice builds a device by kind. path is only used by the file device.
func NewDevice(kind, path string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", DeviceKindPattern:
		return &PatternDevice{}, nil
	case DeviceKindFile:
		if path == "" {
			return nil, fmt.Errorf("the file camera needs a path to an image or directory of images")
		}
		return &FileDevice{Path: path}, nil
	case DeviceKindBrowser:
		return &BrowserDevice{Headless: true}, nil
	case DeviceKindBrowserFake:
		return &BrowserDevice{Headless: true, FakeMedia: true}, nil
	}
	return nil, fmt.Errorf("unknown camera device %q (expected one of %s)", kind, strings.Join(DeviceKinds, ", "))
}

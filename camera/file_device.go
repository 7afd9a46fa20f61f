package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var frameExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// FileDevice plays back images from disk as if they came from a camera. Path may be a
// single image (a still camera) or a directory whose images are returned in name order.
type FileDevice struct {
	Path string
}

func (d *FileDevice) Name() string {
	return "file:" + d.Path
}

func (d *FileDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	info, err := os.Stat(d.Path)
	if err != nil {
		return nil, classifyFileError(err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(d.Path)
		if err != nil {
			return nil, classifyFileError(err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(d.Path, entry.Name()))
		}
		sort.Strings(paths)
	} else {
		paths = []string{d.Path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrUnavailable, d.Path)
	}

	// the first frame fixes the stream's native resolution
	width, height, err := decodeDimensions(paths[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &fileStream{paths: paths, width: width, height: height}, nil
}

func classifyFileError(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func decodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("error decoding %s: %v", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

type fileStream struct {
	mu      sync.Mutex
	paths   []string
	next    int
	width   int
	height  int
	stopped bool
}

func (s *fileStream) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, 0
	}
	return s.width, s.height
}

func (s *fileStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, errors.New("stream stopped")
	}
	path := s.paths[s.next%len(s.paths)]
	s.next++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %v", path, err)
	}
	return img, nil
}

func (s *fileStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

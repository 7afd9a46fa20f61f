package camera

import (
	"log"
	"sync"
)

// session owns one live stream and guarantees it is stopped exactly once,
// whichever exit path gets there first.
type session struct {
	stream Stream
	device string
	once   sync.Once
}

func newSession(device string, stream Stream) *session {
	log.Printf("camera session started on %s", device)
	return &session{stream: stream, device: device}
}

// release is a no-op on a nil session.
func (s *session) release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.stream.Stop()
		log.Printf("camera session on %s released", s.device)
	})
}

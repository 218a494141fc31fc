package rulesrt

import "fmt"

// DefaultScratchSize is the scratch bound generated resolvers request.
const DefaultScratchSize = 256

// Scratch is a bounded formatting buffer for values that only live for
// the duration of a condition, such as a templated argument. Results are
// never accounted against the endpoint Allocator.
type Scratch struct {
	buf []byte
}

// NewScratch creates a Scratch of size bytes.
func NewScratch(size int) *Scratch {
	return &Scratch{buf: make([]byte, 0, size)}
}

// Sprintf formats into the scratch buffer and returns a copy. Output that
// does not fit spills to a temporary; the buffer never grows past its bound.
func (s *Scratch) Sprintf(format string, args ...any) string {
	return string(fmt.Appendf(s.buf[:0], format, args...))
}

// Package rolling implements a fixed-length FIFO of samples.
package rolling

// Series keeps exactly cap samples. Append drops the oldest one before
// pushing the new one at the tail, so the length never changes.
type Series struct {
	buf  []float64
	head int // index of the oldest sample
}

// New returns a series of capacity samples, all set to fill.
// A capacity below 1 is raised to 1.
func New(capacity int, fill float64) *Series {
	if capacity < 1 {
		capacity = 1
	}
	buf := make([]float64, capacity)
	for i := range buf {
		buf[i] = fill
	}
	return &Series{buf: buf}
}

// Append evicts the oldest sample and stores sample as the newest.
func (s *Series) Append(sample float64) {
	s.buf[s.head] = sample
	s.head = (s.head + 1) % len(s.buf)
}

// Snapshot returns a copy of the samples, oldest first.
func (s *Series) Snapshot() []float64 {
	out := make([]float64, 0, len(s.buf))
	out = append(out, s.buf[s.head:]...)
	out = append(out, s.buf[:s.head]...)
	return out
}

// Last returns the newest sample.
func (s *Series) Last() float64 {
	return s.buf[(s.head+len(s.buf)-1)%len(s.buf)]
}

func (s *Series) Len() int { return len(s.buf) }

// Clone returns an independent copy.
func (s *Series) Clone() *Series {
	buf := make([]float64, len(s.buf))
	copy(buf, s.buf)
	return &Series{buf: buf, head: s.head}
}

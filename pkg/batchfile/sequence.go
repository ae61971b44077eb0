package batchfile

import "fmt"

// SequenceGenerator hands out "A00001", "A00002", ... in order.
// The zero value is ready to use.
type SequenceGenerator struct {
	current int
}

func (s *SequenceGenerator) Next() string {
	s.current++
	return fmt.Sprintf("A%05d", s.current)
}

func (s *SequenceGenerator) Reset() {
	s.current = 0
}

// Current returns the last number handed out, 0 before the first call to Next.
func (s *SequenceGenerator) Current() int {
	return s.current
}

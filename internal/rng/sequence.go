package rng

// Sequence is a Generator that replays fixed values, wrapping around at the end
// Each value is reduced modulo n, so scripts can be written without knowing n
type Sequence struct {
	values []int
	pos    int
}

// NewSequence returns a Generator that replays values in order
func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		values = []int{0}
	}

	return &Sequence{values: values}
}

// Intn returns the next scripted value modulo n
func (s *Sequence) Intn(n int) int {
	v := s.values[s.pos%len(s.values)]
	s.pos++

	if v < 0 {
		v = -v
	}

	return v % n
}

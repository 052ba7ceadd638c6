// Package drivertest provides a scripted random source for deterministic tests.
package drivertest

// Script replays fixed draws. Once a queue is exhausted it returns the
// matching default value.
type Script struct {
	Floats       []float64
	Ints         []int
	DefaultFloat float64
	DefaultInt   int

	FloatCalls int
	IntCalls   int
}

// Float64 returns the next scripted float.
func (s *Script) Float64() float64 {
	s.FloatCalls++
	if len(s.Floats) == 0 {
		return s.DefaultFloat
	}
	f := s.Floats[0]
	s.Floats = s.Floats[1:]
	return f
}

// Intn returns the next scripted int, reduced modulo n.
func (s *Script) Intn(n int) int {
	s.IntCalls++
	v := s.DefaultInt
	if len(s.Ints) > 0 {
		v = s.Ints[0]
		s.Ints = s.Ints[1:]
	}
	if n <= 0 {
		return 0
	}
	return v % n
}

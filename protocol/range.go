package protocol

import "fmt"

// Range is a closed integer interval [Min, Max].
type Range struct {
	Min int32
	Max int32
}

// Contains reports whether v lies inside the interval, bounds included.
func (r Range) Contains(v int32) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) validate(name string) error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: %s [%d, %d]", ErrInvalidRange, name, r.Min, r.Max)
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

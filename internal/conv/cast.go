package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow reports a value outside the range of the target type.
var ErrOverflow = errors.New("integer overflow")

// Uint32 converts v to uint32.
func Uint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// Uint16 converts v to uint16.
func Uint16(v int) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d does not fit in uint16", ErrOverflow, v)
	}
	return uint16(v), nil
}

// Uint32s converts every value of vs, failing on the first that does not
// fit.
func Uint32s(vs ...int) ([]uint32, error) {
	out := make([]uint32, len(vs))
	for i, v := range vs {
		u, err := Uint32(v)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

package space

import "fmt"

// StateLen returns the number of floats Encode produces for states of sp.
func StateLen(sp Space) int {
	switch s := sp.(type) {
	case *RealVectorSpace:
		return s.dim
	case *SO2Space:
		return 1
	case *SO3Space:
		return 4
	case *SE2Space:
		return 3
	case *SE3Space:
		return 7
	case *CompoundSpace:
		n := 0
		for _, sub := range s.subspaces {
			n += StateLen(sub)
		}
		return n
	default:
		panic(fmt.Sprintf("space: unknown space %T", sp))
	}
}

// Encode flattens s into a float slice. Quaternions are written as
// (x, y, z, w); compound states concatenate their components.
func Encode(s State) []float64 {
	return appendState(nil, s)
}

func appendState(dst []float64, s State) []float64 {
	switch st := s.(type) {
	case RealVectorState:
		return append(dst, st.values...)
	case SO2State:
		return append(dst, st.value)
	case SO3State:
		return append(dst, st.x, st.y, st.z, st.w)
	case SE2State:
		return append(dst, st.x, st.y, st.yaw.value)
	case SE3State:
		return append(dst, st.x, st.y, st.z, st.rotation.x, st.rotation.y, st.rotation.z, st.rotation.w)
	case CompoundState:
		for _, c := range st.components {
			dst = appendState(dst, c)
		}
		return dst
	default:
		panic(fmt.Sprintf("space: unknown state %T", s))
	}
}

// Decode rebuilds a state of sp from the output of Encode and validates it.
func Decode(sp Space, data []float64) (State, error) {
	if want := StateLen(sp); len(data) != want {
		return nil, constructionErr(sp.Kind(), "decode: got %d values, want %d", len(data), want)
	}
	s, err := decode(sp, data)
	if err != nil {
		return nil, err
	}
	if err := sp.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(sp Space, d []float64) (State, error) {
	switch s := sp.(type) {
	case *RealVectorSpace:
		return NewRealVectorState(d...), nil
	case *SO2Space:
		return NewSO2State(d[0]), nil
	case *SO3Space:
		return NewSO3State(d[0], d[1], d[2], d[3])
	case *SE2Space:
		return NewSE2State(d[0], d[1], d[2]), nil
	case *SE3Space:
		rot, err := NewSO3State(d[3], d[4], d[5], d[6])
		if err != nil {
			return nil, err
		}
		return NewSE3State(d[0], d[1], d[2], rot), nil
	case *CompoundSpace:
		out := make([]State, len(s.subspaces))
		off := 0
		for i, sub := range s.subspaces {
			n := StateLen(sub)
			c, err := decode(sub, d[off:off+n])
			if err != nil {
				return nil, wrapConstructionErr(KindCompound, err, "component %d", i)
			}
			out[i] = c
			off += n
		}
		return CompoundState{components: out}, nil
	default:
		return nil, fmt.Errorf("space: unknown space %T", sp)
	}
}

package space

import "fmt"

// Kind identifies the variant of a Space or State.
type Kind uint8

const (
	KindRealVector Kind = iota + 1
	KindSO2
	KindSO3
	KindSE2
	KindSE3
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindRealVector:
		return "RealVector"
	case KindSO2:
		return "SO2"
	case KindSO3:
		return "SO3"
	case KindSE2:
		return "SE2"
	case KindSE3:
		return "SE3"
	case KindCompound:
		return "Compound"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

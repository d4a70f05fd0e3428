package space

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func mustRV(t *testing.T, dim int, bounds ...Bounds) *RealVectorSpace {
	t.Helper()
	sp, err := NewRealVectorSpace(dim, bounds...)
	require.NoError(t, err)
	return sp
}

func mustSO2(t *testing.T, bounds ...Bounds) *SO2Space {
	t.Helper()
	sp, err := NewSO2Space(bounds...)
	require.NoError(t, err)
	return sp
}

func allSpaces(t *testing.T) map[string]Space {
	t.Helper()

	so3, err := NewSO3Space()
	require.NoError(t, err)
	se2, err := NewSE2Space(0.5, Bounds{-5, 5}, Bounds{-5, 5})
	require.NoError(t, err)
	se3, err := NewSE3Space(1, Bounds{-1, 1}, Bounds{-1, 1}, Bounds{-1, 1})
	require.NoError(t, err)
	compound, err := NewCompoundBuilder().
		Add(mustRV(t, 2, Bounds{0, 10}, Bounds{0, 10}), 1).
		Add(mustSO2(t), 0.5).
		Build()
	require.NoError(t, err)

	return map[string]Space{
		"realvector": mustRV(t, 3, Bounds{-1, 1}, Bounds{0, 2}, Bounds{5, 6}),
		"so2":        mustSO2(t),
		"so3":        so3,
		"se2":        se2,
		"se3":        se3,
		"compound":   compound,
	}
}

func TestSpaceMetricProperties(t *testing.T) {
	for name, sp := range allSpaces(t) {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewSource(42))
			for i := 0; i < 100; i++ {
				a, err := sp.Sample(r)
				require.NoError(t, err)
				b, err := sp.Sample(r)
				require.NoError(t, err)

				require.NoError(t, sp.Validate(a))
				assert.True(t, sp.SatisfiesBounds(a))

				assert.Zero(t, sp.Distance(a, a))
				assert.InDelta(t, sp.Distance(a, b), sp.Distance(b, a), eps)
				assert.GreaterOrEqual(t, sp.Distance(a, b), 0.0)
				assert.LessOrEqual(t, sp.Distance(a, b), sp.MaximumExtent()+eps)

				assert.InDelta(t, 0, sp.Distance(sp.Interpolate(a, b, 0), a), 1e-6)
				assert.InDelta(t, 0, sp.Distance(sp.Interpolate(a, b, 1), b), 1e-6)

				mid := sp.Interpolate(a, b, 0.5)
				assert.InDelta(t, sp.Distance(a, mid), sp.Distance(mid, b), 1e-6)
			}
		})
	}
}

func TestRealVectorSpace(t *testing.T) {
	sp := mustRV(t, 2)

	a := NewRealVectorState(0, 0)
	b := NewRealVectorState(3, 4)
	assert.InDelta(t, 5, sp.Distance(a, b), eps)

	mid := sp.Interpolate(a, b, 0.5).(RealVectorState)
	assert.Equal(t, []float64{1.5, 2}, mid.Values())

	_, err := sp.Sample(rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrUnbounded)
	assert.True(t, math.IsInf(sp.MaximumExtent(), 1))
	assert.True(t, sp.SatisfiesBounds(NewRealVectorState(1e9, -1e9)))

	require.Error(t, sp.Validate(NewRealVectorState(1, 2, 3)))
	require.Error(t, sp.Validate(NewRealVectorState(math.NaN(), 0)))
	require.Error(t, sp.Validate(NewSO2State(0)))
}

func TestRealVectorSpace_Bounds(t *testing.T) {
	sp := mustRV(t, 2, Bounds{0, 1}, Bounds{0, 1})

	assert.False(t, sp.SatisfiesBounds(NewRealVectorState(2, 0.5)))
	clamped := sp.EnforceBounds(NewRealVectorState(2, -1)).(RealVectorState)
	assert.Equal(t, []float64{1, 0}, clamped.Values())
	assert.InDelta(t, math.Sqrt2, sp.MaximumExtent(), eps)
}

func TestRealVectorState_Immutable(t *testing.T) {
	values := []float64{1, 2}
	s := NewRealVectorState(values...)
	values[0] = 99
	assert.Equal(t, 1.0, s.At(0))

	out := s.Values()
	out[1] = 99
	assert.Equal(t, 2.0, s.At(1))
}

func TestSO2Space_ShorterArc(t *testing.T) {
	sp := mustSO2(t)

	a := NewSO2State(math.Pi - 0.1)
	b := NewSO2State(-math.Pi + 0.1)
	assert.InDelta(t, 0.2, sp.Distance(a, b), eps)

	mid := sp.Interpolate(a, b, 0.5).(SO2State)
	assert.InDelta(t, math.Pi, math.Abs(mid.Value()), eps)

	assert.InDelta(t, math.Pi, sp.Distance(NewSO2State(0), NewSO2State(math.Pi)), eps)
}

func TestSO2State_Canonical(t *testing.T) {
	assert.InDelta(t, math.Pi, NewSO2State(-math.Pi).Value(), eps)
	assert.InDelta(t, 0, NewSO2State(4*math.Pi).Value(), eps)
	assert.InDelta(t, -math.Pi/2, NewSO2State(3*math.Pi/2).Value(), eps)
}

func TestSO2Space_Bounds(t *testing.T) {
	sp := mustSO2(t, Bounds{-1, 1})

	assert.True(t, sp.SatisfiesBounds(NewSO2State(0.5)))
	assert.False(t, sp.SatisfiesBounds(NewSO2State(2)))
	assert.InDelta(t, 1, sp.EnforceBounds(NewSO2State(1.5)).(SO2State).Value(), eps)
	assert.InDelta(t, -1, sp.EnforceBounds(NewSO2State(-2)).(SO2State).Value(), eps)

	_, err := NewSO2Space(Bounds{-4, 0})
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = NewSO2Space(Bounds{1, -1})
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestSO3State_NonUnitQuaternion(t *testing.T) {
	_, err := NewSO3State(0, 0, 0, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstruction)

	var ce *ConstructionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindSO3, ce.Kind)

	q, err := NormalizedSO3(0, 0, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, q.W(), eps)

	_, err = NormalizedSO3(0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestSO3Space_Distance(t *testing.T) {
	sp, err := NewSO3Space()
	require.NoError(t, err)

	id := SO3Identity()
	q := SO3FromAxisAngle(0, 0, 1, math.Pi/2)
	assert.InDelta(t, math.Pi/4, sp.Distance(id, q), eps)

	neg, err := NewSO3State(-q.X(), -q.Y(), -q.Z(), -q.W())
	require.NoError(t, err)
	assert.InDelta(t, 0, sp.Distance(q, neg), eps)

	mid := sp.Interpolate(id, q, 0.5)
	assert.InDelta(t, math.Pi/8, sp.Distance(id, mid), 1e-9)
}

func TestSO3Space_SelfDistanceIsZero(t *testing.T) {
	so3, err := NewSO3Space()
	require.NoError(t, err)
	se3, err := NewSE3Space(1, Bounds{-1, 1}, Bounds{-1, 1}, Bounds{-1, 1})
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		q, err := so3.Sample(r)
		require.NoError(t, err)
		require.Zero(t, so3.Distance(q, q), "sample %d: %s", i, q)

		p, err := se3.Sample(r)
		require.NoError(t, err)
		require.Zero(t, se3.Distance(p, p), "sample %d: %s", i, p)
	}

	// Nearly identical rotations still get a resolvable, tiny distance.
	a := SO3FromAxisAngle(0, 0, 1, 0)
	b := SO3FromAxisAngle(0, 0, 1, 1e-10)
	assert.InDelta(t, 0.5e-10, so3.Distance(a, b), 1e-15)
}

func TestSO3Space_Bounded(t *testing.T) {
	center := SO3FromAxisAngle(1, 0, 0, 0.3)
	sp, err := NewSO3Space(SO3Bounds{Center: center, MaxAngle: 0.2})
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		s, err := sp.Sample(r)
		require.NoError(t, err)
		assert.True(t, sp.SatisfiesBounds(s))
	}

	far := SO3FromAxisAngle(0, 1, 0, 2)
	assert.False(t, sp.SatisfiesBounds(far))
	assert.True(t, sp.SatisfiesBounds(sp.EnforceBounds(far)))

	_, err = NewSO3Space(SO3Bounds{Center: center, MaxAngle: 2})
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestSE2Space(t *testing.T) {
	sp, err := NewSE2Space(2)
	require.NoError(t, err)

	a := NewSE2State(0, 0, 0)
	b := NewSE2State(3, 4, 0.5)
	assert.InDelta(t, math.Sqrt(25+1), sp.Distance(a, b), eps)
	assert.Equal(t, 3, sp.Dimension())

	_, err = sp.Sample(rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrUnbounded)

	_, err = NewSE2Space(0)
	assert.ErrorIs(t, err, ErrConstruction)
	_, err = NewSE2Space(1, Bounds{0, 1})
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestSE3Space(t *testing.T) {
	sp, err := NewSE3Space(1)
	require.NoError(t, err)

	a := NewSE3State(0, 0, 0, SO3Identity())
	b := NewSE3State(1, 2, 2, SO3FromAxisAngle(0, 0, 1, math.Pi/2))
	assert.InDelta(t, math.Sqrt(9+math.Pi*math.Pi/16), sp.Distance(a, b), eps)
	assert.Equal(t, 6, sp.Dimension())

	_, err = NewSE3Space(1, Bounds{0, 1})
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestCompoundSpace_Distance(t *testing.T) {
	sp, err := NewCompoundBuilder().
		Add(mustRV(t, 2), 1).
		Add(mustSO2(t), 0.5).
		Build()
	require.NoError(t, err)

	a, err := NewCompoundStateBuilder().Add(NewRealVectorState(1, 1)).Add(NewSO2State(0)).Build()
	require.NoError(t, err)
	b, err := NewCompoundStateBuilder().Add(NewRealVectorState(4, 5)).Add(NewSO2State(math.Pi / 2)).Build()
	require.NoError(t, err)

	want := math.Sqrt(25 + (math.Pi/4)*(math.Pi/4))
	assert.InDelta(t, want, sp.Distance(a, b), eps)

	mid := sp.Interpolate(a, b, 0.5).(CompoundState)
	assert.Equal(t, []float64{2.5, 3}, mid.Component(0).(RealVectorState).Values())
	assert.InDelta(t, math.Pi/4, mid.Component(1).(SO2State).Value(), eps)

	assert.Equal(t, 3, sp.Dimension())
	assert.Equal(t, 2, sp.Len())
	assert.Equal(t, 0.5, sp.Weight(1))
}

func TestCompoundSpace_ConstructionErrors(t *testing.T) {
	rv := mustRV(t, 2)

	tests := []struct {
		name      string
		subspaces []Space
		weights   []float64
	}{
		{"empty", nil, nil},
		{"zero weight", []Space{rv}, []float64{0}},
		{"negative weight", []Space{rv}, []float64{-1}},
		{"nan weight", []Space{rv}, []float64{math.NaN()}},
		{"length mismatch", []Space{rv}, []float64{1, 1}},
		{"nil subspace", []Space{nil}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompoundSpace(tt.subspaces, tt.weights)
			assert.ErrorIs(t, err, ErrConstruction)
		})
	}

	_, err := NewCompoundBuilder().Build()
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestCompoundSpace_Validate(t *testing.T) {
	sp, err := NewCompoundBuilder().Add(mustRV(t, 2), 1).Add(mustSO2(t), 1).Build()
	require.NoError(t, err)

	wrongCount, err := NewCompoundState(NewRealVectorState(1, 2))
	require.NoError(t, err)
	assert.ErrorIs(t, sp.Validate(wrongCount), ErrConstruction)

	wrongKind, err := NewCompoundState(NewRealVectorState(1, 2), NewRealVectorState(0))
	require.NoError(t, err)
	assert.ErrorIs(t, sp.Validate(wrongKind), ErrConstruction)

	_, err = NewCompoundState()
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestCodecRoundTrip(t *testing.T) {
	for name, sp := range allSpaces(t) {
		t.Run(name, func(t *testing.T) {
			s, err := sp.Sample(rand.New(rand.NewSource(3)))
			require.NoError(t, err)

			flat := Encode(s)
			assert.Len(t, flat, StateLen(sp))

			back, err := Decode(sp, flat)
			require.NoError(t, err)
			assert.InDelta(t, 0, sp.Distance(s, back), eps)
		})
	}

	_, err := Decode(mustSO2(t), []float64{1, 2})
	assert.ErrorIs(t, err, ErrConstruction)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "SE3", KindSE3.String())
	assert.Equal(t, "Unknown(0)", Kind(0).String())
}

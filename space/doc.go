// Package space defines the configuration spaces a planner searches over.
//
// A Space supplies the geometry the planners need: a metric, an interpolation
// rule, uniform sampling and bounds handling. The set of variants is closed:
//
//   - RealVectorSpace: R^n with the Euclidean metric
//   - SO2Space: planar rotations, shorter-arc metric
//   - SO3Space: unit quaternions, acos(|q1·q2|) metric with slerp
//   - SE2Space / SE3Space: rigid-body poses with a rotation weight
//   - CompoundSpace: weighted product of any of the above
//
// # Compound distance
//
// Compound (and SE) distances combine per-component distances as a weighted
// Euclidean norm:
//
//	d(a, b) = sqrt(Σ (wᵢ · dᵢ(aᵢ, bᵢ))²)
//
// With positive weights this is a metric whenever every component is, which
// keeps RRT* rewiring consistent with the interpolation used for steering.
//
// # States
//
// States are immutable values. Constructors copy any slice they are given
// and accessors return copies, so a state stored in a planner tree can never
// change underneath it. A state is only meaningful together with the space
// that validates it; use Space.Validate before handing caller-built states to
// a planner.
package space

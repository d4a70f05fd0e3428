// Package config loads planner configurations from YAML.
//
// A configuration names an algorithm and its parameters:
//
//	algorithm: rrtstar
//	max_distance: 0.5
//	goal_bias: 0.05
//	search_radius: 1.5
//	shrinking: true
//	seed: 42
//	max_iterations: 5000
//
// Load and LoadFile validate the result; geometric.New turns it into a
// planner.
package config

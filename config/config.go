package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxFileSize is the largest configuration file Load accepts.
const MaxFileSize = 1 << 20

// Algorithm names a planner.
type Algorithm string

const (
	AlgorithmRRT        Algorithm = "rrt"
	AlgorithmRRTConnect Algorithm = "rrtconnect"
	AlgorithmRRTStar    Algorithm = "rrtstar"
	AlgorithmPRM        Algorithm = "prm"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid planner config")

// Planner is a planner configuration. Fields an algorithm does not use are
// ignored.
type Planner struct {
	Algorithm Algorithm `yaml:"algorithm" validate:"required,oneof=rrt rrtconnect rrtstar prm"`

	// Tree planners.
	MaxDistance  float64 `yaml:"max_distance,omitempty" validate:"gte=0"`
	GoalBias     float64 `yaml:"goal_bias,omitempty" validate:"gte=0,lte=1"`
	SearchRadius float64 `yaml:"search_radius,omitempty" validate:"gte=0"`
	Shrinking    bool    `yaml:"shrinking,omitempty"`

	// PRM.
	RoadmapTimeout   time.Duration `yaml:"roadmap_timeout,omitempty" validate:"gte=0"`
	ConnectionRadius float64       `yaml:"connection_radius,omitempty" validate:"gte=0"`
	MaxVertices      int           `yaml:"max_vertices,omitempty" validate:"gte=0"`
	Workers          int           `yaml:"workers,omitempty" validate:"gte=0,lte=256"`

	// Shared.
	Seed             int64   `yaml:"seed,omitempty"`
	Resolution       float64 `yaml:"resolution,omitempty" validate:"gte=0,lte=1"`
	MaxIterations    int     `yaml:"max_iterations,omitempty" validate:"gte=0"`
	NearestNeighbors string  `yaml:"nearest_neighbors,omitempty" validate:"omitempty,oneof=linear vptree"`
	StrictGoal       bool    `yaml:"strict_goal_contract,omitempty"`
}

var validate = validator.New()

// Default returns a usable configuration for algorithm.
func Default(algorithm Algorithm) Planner {
	c := Planner{Algorithm: algorithm, MaxDistance: 0.5, GoalBias: 0.05}
	switch algorithm {
	case AlgorithmRRTConnect:
		c.GoalBias = 0
	case AlgorithmRRTStar:
		c.SearchRadius = 1.5
	case AlgorithmPRM:
		c.MaxDistance, c.GoalBias = 0, 0
		c.RoadmapTimeout = time.Second
		c.ConnectionRadius = 1
	}
	return c
}

// Validate checks field ranges and the parameters the algorithm requires.
func (c Planner) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch c.Algorithm {
	case AlgorithmRRT, AlgorithmRRTConnect:
		if c.MaxDistance <= 0 {
			return fmt.Errorf("%w: %s needs max_distance > 0", ErrInvalid, c.Algorithm)
		}
	case AlgorithmRRTStar:
		if c.MaxDistance <= 0 || c.SearchRadius <= 0 {
			return fmt.Errorf("%w: rrtstar needs max_distance and search_radius > 0", ErrInvalid)
		}
	case AlgorithmPRM:
		if c.ConnectionRadius <= 0 {
			return fmt.Errorf("%w: prm needs connection_radius > 0", ErrInvalid)
		}
		if c.RoadmapTimeout == 0 && c.MaxVertices == 0 {
			return fmt.Errorf("%w: prm needs roadmap_timeout or max_vertices", ErrInvalid)
		}
	}
	return nil
}

// Load decodes and validates a YAML configuration. Unknown keys are
// rejected.
func Load(r io.Reader) (Planner, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return Planner{}, err
	}
	if len(data) > MaxFileSize {
		return Planner{}, fmt.Errorf("%w: larger than %d bytes", ErrInvalid, MaxFileSize)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Planner
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return Planner{}, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return Planner{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Planner{}, err
	}
	return c, nil
}

// LoadFile reads a configuration from path.
func LoadFile(path string) (Planner, error) {
	f, err := os.Open(path)
	if err != nil {
		return Planner{}, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return Planner{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c Planner) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

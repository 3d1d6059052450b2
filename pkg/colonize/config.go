package colonize

import (
	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/field"
)

// Default tuning values.
const (
	DefaultStepSize        = 5.0
	DefaultKillDistance    = 10.0
	DefaultStagnationLimit = 10
	DefaultStatusInterval  = 10
)

// Index kinds accepted by Config.Index.
const (
	IndexBruteForce = "brute"
	IndexKDTree     = "kdtree"
)

// Config holds the growth parameters of a run. Zero values are meaningful:
// MaxNodes 0 means uncapped, StagnationLimit 0 disables the stagnation rule
// and FrameInterval 0 disables snapshots.
type Config struct {
	StepSize        float64
	KillDistance    float64
	StagnationLimit int
	MaxNodes        int
	FrameInterval   int
	StatusInterval  int

	// Seeds overrides the generator's anchor. Each seed becomes one root
	// followed by its straight seed segment.
	Seeds []field.Seed

	// NewNodesOnly restricts the proximity test to nodes created in the
	// current tick.
	NewNodesOnly bool

	// Index selects the nearest-node search: IndexBruteForce (default) or
	// IndexKDTree.
	Index string
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		StepSize:        DefaultStepSize,
		KillDistance:    DefaultKillDistance,
		StagnationLimit: DefaultStagnationLimit,
		StatusInterval:  DefaultStatusInterval,
	}
}

// Validate rejects parameter combinations that are invalid or cannot
// guarantee termination. All failures carry the CONFIGURATION code.
func (c Config) Validate() error {
	if err := errors.ValidatePositive("step size", c.StepSize); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("kill distance", c.KillDistance); err != nil {
		return err
	}
	switch {
	case c.StagnationLimit < 0:
		return errors.New(errors.ErrCodeConfiguration, "stagnation limit must not be negative, got %d", c.StagnationLimit)
	case c.MaxNodes < 0:
		return errors.New(errors.ErrCodeConfiguration, "max nodes must not be negative, got %d", c.MaxNodes)
	case c.FrameInterval < 0:
		return errors.New(errors.ErrCodeConfiguration, "frame interval must not be negative, got %d", c.FrameInterval)
	case c.StatusInterval < 0:
		return errors.New(errors.ErrCodeConfiguration, "status interval must not be negative, got %d", c.StatusInterval)
	case c.StagnationLimit == 0 && c.MaxNodes == 0:
		return errors.New(errors.ErrCodeConfiguration, "a run needs a stagnation limit or a node cap to terminate")
	case c.MaxNodes > 0 && c.MaxNodes < len(c.Seeds):
		return errors.New(errors.ErrCodeConfiguration, "max nodes %d is below the %d requested roots", c.MaxNodes, len(c.Seeds))
	}
	switch c.Index {
	case "", IndexBruteForce, IndexKDTree:
	default:
		return errors.New(errors.ErrCodeConfiguration, "unknown nearest index %q", c.Index)
	}
	for i, s := range c.Seeds {
		if s.Steps < 0 {
			return errors.New(errors.ErrCodeConfiguration, "seed %d: steps must not be negative, got %d", i, s.Steps)
		}
	}
	return nil
}

// validateFor adds checks that depend on the generator.
func (c Config) validateFor(gen field.Generator) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if gen == nil {
		return errors.New(errors.ErrCodeConfiguration, "no attractor generator")
	}
	if _, ok := gen.(field.Expander); ok && c.MaxNodes == 0 {
		return errors.New(errors.ErrCodeConfiguration, "the %s field keeps expanding, set a node cap", gen.Kind())
	}
	return nil
}

func (c Config) newIndex(dims int) NearestIndex {
	if c.Index == IndexKDTree {
		return NewKDTree(dims)
	}
	return &BruteForce{}
}

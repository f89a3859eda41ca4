package solver

import "time"

// Options bundles the stopping criteria and callbacks shared by every
// solver in this package.
type Options struct {
	MaxIterations int           // iteration cap; 0 means DefaultMaxIterations
	MaxResidual   float64       // convergence threshold; 0 means DefaultMaxResidual
	Timeout       time.Duration // wall-clock cap; 0 means no timeout
	Progress      ProgressFunc  // called once per outer iteration; may be nil
	Checkpoint    *Checkpointer // periodic snapshotting; may be nil
}

const (
	// DefaultMaxIterations bounds a solve that does not specify one.
	DefaultMaxIterations = 10000
	// DefaultMaxResidual is the convergence threshold used when
	// Options.MaxResidual is left at its zero value.
	DefaultMaxResidual = 1e-4
)

func (o Options) maxIterations() int {
	if o.MaxIterations > 0 {
		return o.MaxIterations
	}
	return DefaultMaxIterations
}

func (o Options) maxResidual() float64 {
	if o.MaxResidual > 0 {
		return o.MaxResidual
	}
	return DefaultMaxResidual
}

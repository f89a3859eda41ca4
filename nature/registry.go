package nature

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Type names a nature response construction recipe, analogous to the
// agent.Type string tag used to dispatch Config deserialization in a
// reinforcement-learning agent package.
type Type string

const (
	// TypeAverage is the non-robust nature ("average").
	TypeAverage Type = "average"
	// TypeL1Worst is the s,a-rectangular L1-ball worst case.
	TypeL1Worst Type = "l1-worst"
	// TypeAVaR is the s,a-rectangular AVaR_alpha nature.
	TypeAVaR Type = "avar"
)

// Config describes the parameters needed to build a concrete SANature,
// together with the Type tag used to select its builder. Config values
// round-trip through JSON so that a nature response can be named in a
// solver run's configuration file alongside the MDP CSV path and
// solver parameters.
type Config struct {
	Kind   Type    `json:"kind"`
	Radius float64 `json:"radius,omitempty"` // used by TypeL1Worst
	Alpha  float64 `json:"alpha,omitempty"`  // used by TypeAVaR
}

// Validate reports whether the Config's parameters are valid for its
// Kind.
func (c Config) Validate() error {
	switch c.Kind {
	case TypeAverage:
		return nil
	case TypeL1Worst:
		if c.Radius < 0 {
			return fmt.Errorf("nature: l1-worst radius must be non-negative, got %v", c.Radius)
		}
		return nil
	case TypeAVaR:
		if c.Alpha <= 0 || c.Alpha > 1 {
			return fmt.Errorf("nature: avar alpha must be in (0,1], got %v", c.Alpha)
		}
		return nil
	default:
		if _, ok := registeredTypes[c.Kind]; !ok {
			return fmt.Errorf("nature: unregistered nature type %q", c.Kind)
		}
		return nil
	}
}

// Build constructs the SANature described by the Config.
func (c Config) Build() (SANature, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Kind {
	case TypeAverage:
		return Average(), nil
	case TypeL1Worst:
		return L1Worst(c.Radius), nil
	case TypeAVaR:
		return AVaR(c.Alpha), nil
	default:
		builder, ok := registeredBuilders[c.Kind]
		if !ok {
			return nil, fmt.Errorf("nature: unregistered nature type %q", c.Kind)
		}
		return builder(c)
	}
}

// registeredTypes and registeredBuilders let other packages extend the
// Config-driven construction mechanism with their own nature responses
// without this package knowing about them ahead of time, mirroring an
// agent.Register-style mechanism for agent Config types.
var registeredTypes = make(map[Type]reflect.Type)
var registeredBuilders = make(map[Type]func(Config) (SANature, error))

// Register adds a new nature Type to the package-level registry so
// that Config.Build can dispatch to it. Each package defining a custom
// nature response is responsible for calling Register from its own
// init, avoiding a circular import back into this package.
func Register(kind Type, sample Config, builder func(Config) (SANature, error)) {
	registeredTypes[kind] = reflect.TypeOf(sample)
	registeredBuilders[kind] = builder
}

// MarshalJSON and UnmarshalJSON are the default struct codec; they
// exist explicitly here (rather than relying on the zero-value
// default) so the Config's documented JSON shape is stable regardless
// of future field additions.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	return json.Marshal(alias(c))
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Config(a)
	return nil
}

// ABOUTME: Resource and Mod capability contracts
// ABOUTME: Producer and transformer interfaces plus sequential mod chains
package resource

import (
	"github.com/mleml/mleml-go/pkg/sound"
)

// Resource is the producer capability: it turns a configuration value into
// a fresh Sound. Implementations must be safely invocable any number of
// times with the same config; they must not mutate state shared with other
// Resources.
//
// Produce fails with *ConfigError for missing or malformed configuration
// and *SynthesisError for internal generation failure.
type Resource interface {
	// Name identifies the implementation, not the instance.
	Name() string

	// Produce generates a new Sound from the configuration.
	Produce(cfg Config) (sound.Sound, error)
}

// Mod is the transformer capability: it derives a new Sound from an
// existing one. Apply must never mutate its input; copy-on-transform is the
// contract every consumer relies on.
//
// Apply fails with *ConfigError for bad parameters and *ModError when the
// operation is undefined for the input (for example its channel layout).
type Mod interface {
	// Name identifies the implementation, not the instance.
	Name() string

	// Apply derives a new Sound from in without modifying it.
	Apply(in sound.Sound, cfg Config) (sound.Sound, error)
}

// Stage pairs a Mod with the configuration it runs under.
type Stage struct {
	Mod    Mod
	Config Config
}

// Chain is a sequence of mod stages applied in order. Applying a chain is
// observably equivalent to applying one combined Mod whose effect is each
// stage's output fed into the next.
type Chain []Stage

// Apply runs the chain over in, returning the final Sound. An empty chain
// returns in unchanged.
func (c Chain) Apply(in sound.Sound) (sound.Sound, error) {
	out := in
	for _, st := range c {
		var err error
		out, err = st.Mod.Apply(out, st.Config)
		if err != nil {
			return sound.Sound{}, err
		}
	}
	return out, nil
}

// ABOUTME: Registers every builtin capability into a pipeline registry
// ABOUTME: One call wires resources, mods and the linear mixer
package builtin

import (
	"github.com/mleml/mleml-go/pkg/chip"
	"github.com/mleml/mleml-go/pkg/pipeline"
	"github.com/mleml/mleml-go/pkg/resource"
)

// Register installs the builtin capability set under its implementation
// names.
func Register(reg *pipeline.Registry) {
	reg.RegisterResource("tone", Tone{})
	reg.RegisterResource("fm", FM{})
	reg.RegisterResource("sampler", Sampler{})

	reg.RegisterMod("gain", Gain{})
	reg.RegisterMod("fade", Fade{})
	reg.RegisterMod("envelope", Envelope{})
	reg.RegisterMod("resample", Resample{})
	reg.RegisterMod("quantize", Quantize{})

	reg.RegisterMixer("linear", func(rate int, _ resource.Config) (chip.Mixer, error) {
		return chip.NewLinear(rate), nil
	})
}

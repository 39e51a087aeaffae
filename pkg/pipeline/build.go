// ABOUTME: Builds a runnable Chip from a composition description
// ABOUTME: Dependency-ordered instantiation with cycle and type checking
package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mleml/mleml-go/pkg/chip"
	"github.com/mleml/mleml-go/pkg/resource"
	"github.com/mleml/mleml-go/pkg/sound"
)

// Composition is a ready-to-drive assembly. Hosts pull frames from Chip at
// their own cadence, or use Mixer directly for single-stream integration.
type Composition struct {
	Chip  chip.Chip
	Mixer chip.Mixer

	// IDs maps every instantiated node and channel name to the unique
	// instance ID assigned during the build.
	IDs map[string]string
}

// Build validates the description against the registry, instantiates every
// component in dependency order (resources and mods before the channels
// that use them, channels before the device that combines them) and returns
// the assembled composition. Any wiring defect fails with
// *CompositionError and instantiates nothing.
func Build(reg *Registry, desc *Description) (*Composition, error) {
	nodes := make(map[string]Node, len(desc.Nodes))
	for _, n := range desc.Nodes {
		if n.Name == "" {
			return nil, &CompositionError{Reason: "node with empty name"}
		}
		if _, dup := nodes[n.Name]; dup {
			return nil, &CompositionError{Node: n.Name, Reason: "duplicate node name"}
		}
		switch n.Kind {
		case KindResource:
			if n.Input != "" {
				return nil, &CompositionError{Node: n.Name,
					Reason: "resource node cannot take an input"}
			}
			if _, ok := reg.Resource(n.Impl); !ok {
				return nil, &CompositionError{Node: n.Name,
					Reason: fmt.Sprintf("unknown resource implementation %q", n.Impl)}
			}
		case KindMod:
			if n.Input == "" {
				return nil, &CompositionError{Node: n.Name, Reason: "mod node needs an input"}
			}
			if _, ok := reg.Mod(n.Impl); !ok {
				return nil, &CompositionError{Node: n.Name,
					Reason: fmt.Sprintf("unknown mod implementation %q", n.Impl)}
			}
		default:
			return nil, &CompositionError{Node: n.Name,
				Reason: fmt.Sprintf("unknown kind %q", n.Kind)}
		}
		nodes[n.Name] = n
	}

	if err := checkAcyclic(nodes); err != nil {
		return nil, err
	}

	if desc.Mixer.SampleRate <= 0 {
		return nil, &CompositionError{Reason: "mixer sample_rate must be positive"}
	}
	mixerFactory, ok := reg.Mixer(desc.Mixer.Impl)
	if !ok {
		return nil, &CompositionError{
			Reason: fmt.Sprintf("unknown mixer implementation %q", desc.Mixer.Impl)}
	}

	// Resolve every channel's chain before instantiating anything, so a
	// late wiring defect cannot leave a half-built composition behind.
	type resolved struct {
		decl  ChannelDecl
		res   resource.Resource
		cfg   resource.Config
		chain resource.Chain
	}
	byName := make(map[string]*resolved, len(desc.Channels))
	order := make([]string, 0, len(desc.Channels))
	for _, cd := range desc.Channels {
		if cd.Name == "" {
			return nil, &CompositionError{Reason: "channel with empty name"}
		}
		if _, dup := byName[cd.Name]; dup {
			return nil, &CompositionError{Node: cd.Name, Reason: "duplicate channel name"}
		}
		res, cfg, chain, err := resolveChain(reg, nodes, cd)
		if err != nil {
			return nil, err
		}
		byName[cd.Name] = &resolved{decl: cd, res: res, cfg: cfg, chain: chain}
		order = append(order, cd.Name)
	}

	if len(desc.Voices) > 0 {
		for _, name := range desc.Voices {
			if _, ok := byName[name]; !ok {
				return nil, &CompositionError{Node: name,
					Reason: "voice references undefined channel"}
			}
		}
		if len(desc.Voices) != len(byName) {
			return nil, &CompositionError{
				Reason: fmt.Sprintf("voices lists %d of %d channels",
					len(desc.Voices), len(byName))}
		}
		order = desc.Voices
	}

	mixer, err := mixerFactory(desc.Mixer.SampleRate, desc.Mixer.Config)
	if err != nil {
		return nil, &CompositionError{Reason: fmt.Sprintf("mixer: %v", err)}
	}

	ids := make(map[string]string, len(nodes)+len(byName))
	for name := range nodes {
		ids[name] = uuid.NewString()
	}

	voices := make([]chip.Channel, 0, len(order))
	for _, name := range order {
		rc := byName[name]
		v := chip.NewVoice(desc.Mixer.SampleRate, sound.Stereo)
		v.Bind(rc.res, rc.cfg, rc.chain)
		v.SetLoop(rc.decl.Loop)
		voices = append(voices, v)
		ids[name] = uuid.NewString()
	}
	dev := chip.NewDevice(mixer, voices...)
	for i, name := range order {
		rc := byName[name]
		gain := 1.0
		if rc.decl.Gain != nil {
			gain = *rc.decl.Gain
		}
		if err := dev.SetLevel(i, gain, rc.decl.Pan); err != nil {
			return nil, &CompositionError{Node: name, Reason: err.Error()}
		}
	}

	return &Composition{Chip: dev, Mixer: mixer, IDs: ids}, nil
}

// resolveChain walks input edges from the channel's source node back to the
// producing resource, returning the resource, its config and the mod chain
// in application order.
func resolveChain(reg *Registry, nodes map[string]Node, cd ChannelDecl) (resource.Resource, resource.Config, resource.Chain, error) {
	var stages resource.Chain
	name := cd.Source
	for {
		n, ok := nodes[name]
		if !ok {
			return nil, nil, nil, &CompositionError{Node: cd.Name,
				Reason: fmt.Sprintf("undefined node %q", name)}
		}
		if n.Kind == KindResource {
			res, _ := reg.Resource(n.Impl)
			// Stages were collected sink-first; reverse into application order.
			for i, j := 0, len(stages)-1; i < j; i, j = i+1, j-1 {
				stages[i], stages[j] = stages[j], stages[i]
			}
			return res, n.Config, stages, nil
		}
		m, _ := reg.Mod(n.Impl)
		stages = append(stages, resource.Stage{Mod: m, Config: n.Config})
		name = n.Input
	}
}

// checkAcyclic verifies the input edges form a DAG using three-color DFS.
// Dangling references are reported by resolveChain per channel; here only
// edges between defined nodes are followed.
func checkAcyclic(nodes map[string]Node) error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case grey:
			return &CompositionError{Node: name, Reason: "wiring cycle detected"}
		case black:
			return nil
		}
		color[name] = grey
		n := nodes[name]
		if n.Input != "" {
			if _, ok := nodes[n.Input]; ok {
				if err := visit(n.Input); err != nil {
					return err
				}
			}
		}
		color[name] = black
		return nil
	}

	for name := range nodes {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

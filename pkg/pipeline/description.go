// ABOUTME: Declarative composition description for pipeline assembly
// ABOUTME: JSON graph of named nodes, channels and the mixer wiring them
package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/mleml/mleml-go/pkg/resource"
)

// Node kinds appearing in a Description.
const (
	KindResource = "resource"
	KindMod      = "mod"
)

// Node declares one named capability instance. Resource nodes take no
// input; mod nodes name the node whose output they transform, which may be
// a resource or another mod.
type Node struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Impl   string          `json:"impl"`
	Config resource.Config `json:"config,omitempty"`
	Input  string          `json:"input,omitempty"`
}

// ChannelDecl declares one voice: its source node (the end of a mod chain
// or a bare resource), loop flag and mixing levels. Gain is a pointer so
// an explicit 0 (a muted voice) is distinguishable from an absent field,
// which defaults to unity.
type ChannelDecl struct {
	Name   string   `json:"name"`
	Source string   `json:"source"`
	Loop   bool     `json:"loop,omitempty"`
	Gain   *float64 `json:"gain,omitempty"`
	Pan    float64  `json:"pan,omitempty"`
}

// MixerDecl selects the mixer implementation and the output sample rate the
// composition runs at.
type MixerDecl struct {
	Impl       string          `json:"impl"`
	Config     resource.Config `json:"config,omitempty"`
	SampleRate int             `json:"sample_rate"`
}

// Description is the input to Build: a declarative graph naming component
// instances, their concrete implementations, configurations and wiring.
// It is the integration point with an external MML compiler, which emits a
// Description from parsed source.
type Description struct {
	Nodes    []Node        `json:"nodes"`
	Channels []ChannelDecl `json:"channels"`
	Mixer    MixerDecl     `json:"mixer"`

	// Voices lists channel names in device order. Empty means declaration
	// order.
	Voices []string `json:"voices,omitempty"`
}

// ParseDescription decodes a JSON composition description.
func ParseDescription(data []byte) (*Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &CompositionError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return &d, nil
}

// CompositionError reports invalid pipeline wiring: an undefined reference,
// a cycle, or a type mismatch. Composition errors are fatal to the build
// attempt; nothing is instantiated.
type CompositionError struct {
	Node   string
	Reason string
}

func (e *CompositionError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("composition: %s", e.Reason)
	}
	return fmt.Sprintf("composition: node %q: %s", e.Node, e.Reason)
}

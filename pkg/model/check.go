package model

// Layer is one of the five diagnostic strata, ordered coarse to fine:
// infrastructure state before network path before process health before
// application logic before kernel-level detail.
type Layer string

const (
	LayerAWS         Layer = "AWS"
	LayerNetwork     Layer = "NETWORK"
	LayerCompute     Layer = "COMPUTE"
	LayerApplication Layer = "APPLICATION"
	LayerOS          Layer = "OS"
)

// LayerOrder is the fixed diagnostic funnel. Plan ordering and synthesis
// rule priority both follow it.
var LayerOrder = []Layer{LayerAWS, LayerNetwork, LayerCompute, LayerApplication, LayerOS}

// Rank returns the funnel position of the layer, lower = higher priority.
// Unknown layers sort last.
func (l Layer) Rank() int {
	for i, known := range LayerOrder {
		if l == known {
			return i
		}
	}
	return len(LayerOrder)
}

// Args are the arguments passed to a toolkit operation.
type Args map[string]any

// Payload holds the structured facts a toolkit operation returned.
type Payload map[string]any

// ClassifyFunc decides whether a successful payload is anomalous and
// returns a human-readable note explaining the verdict.
type ClassifyFunc func(p Payload) (anomalous bool, note string)

// CheckSpec is one diagnostic step in a plan: which toolkit operation to
// invoke, with what arguments, and which checks must run first. The
// dependency graph over a plan's CheckSpecs is acyclic and the plan is a
// topological order of it.
type CheckSpec struct {
	Name      string   `json:"name"`
	Layer     Layer    `json:"layer"`
	Operation string   `json:"operation"`
	Args      Args     `json:"args,omitempty"`
	Requires  []string `json:"requires,omitempty"`
	Rationale string   `json:"rationale,omitempty"`

	// Classify is the per-check classification rule declared in the
	// catalog. Not serialized; plans are ephemeral, only results persist.
	Classify ClassifyFunc `json:"-"`
}

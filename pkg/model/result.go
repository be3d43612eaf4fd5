package model

// Confidence labels how well the evidence supports the root-cause statement.
type Confidence string

const (
	ConfidenceHigh         Confidence = "HIGH"
	ConfidenceMedium       Confidence = "MEDIUM"
	ConfidenceLow          Confidence = "LOW"
	ConfidenceInconclusive Confidence = "INCONCLUSIVE"
)

// RCAResult is the final product of one investigation run: the derived
// verdict plus everything a report renderer needs. Created once at the end
// of a run and never mutated.
type RCAResult struct {
	ID             string           `json:"id"`
	Problem        ProblemStatement `json:"problem"`
	Classification Classification   `json:"classification"`
	RootCause      string           `json:"root_cause"`
	Confidence     Confidence       `json:"confidence"`
	Observations   []Observation    `json:"observations"`
	Evidence       []Observation    `json:"evidence"`

	Impact            string   `json:"impact,omitempty"`
	Status            string   `json:"status,omitempty"` // "mitigated" or "ongoing"
	Timeline          []string `json:"timeline,omitempty"`
	DataGaps          []string `json:"data_gaps,omitempty"`
	CorrectiveActions []string `json:"corrective_actions,omitempty"`
	PreventiveActions []string `json:"preventive_actions,omitempty"`
	GeneratedAt       string   `json:"generated_at,omitempty"` // ISO-8601
}

// EvidenceByLayer groups all observations per layer, preserving plan order
// within each group. Layers with no observations map to empty slices so
// reports can render every section.
func (r RCAResult) EvidenceByLayer() map[Layer][]Observation {
	grouped := make(map[Layer][]Observation, len(LayerOrder))
	for _, layer := range LayerOrder {
		grouped[layer] = []Observation{}
	}
	for _, obs := range r.Observations {
		grouped[obs.Layer] = append(grouped[obs.Layer], obs)
	}
	return grouped
}

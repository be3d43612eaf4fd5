package model

// Status is the normalized outcome vocabulary the synthesizer reasons over.
type Status string

const (
	// StatusOK means the check ran and its payload looked healthy.
	StatusOK Status = "OK"
	// StatusAnomaly means the check ran and its payload looked wrong.
	StatusAnomaly Status = "ANOMALY"
	// StatusFailedToRun means the toolkit operation itself failed.
	StatusFailedToRun Status = "FAILED_TO_RUN"
	// StatusSkipped means a prerequisite failed (or the run was cancelled)
	// so the toolkit was never invoked.
	StatusSkipped Status = "SKIPPED"
)

// Usable reports whether the check produced a signal the synthesizer and
// dependent checks can build on.
func (s Status) Usable() bool {
	return s == StatusOK || s == StatusAnomaly
}

// Observation is the result of executing (or skipping) one CheckSpec.
// Exactly one is produced per plan entry; immutable after creation.
type Observation struct {
	CheckName string  `json:"check_name"`
	Layer     Layer   `json:"layer"`
	Status    Status  `json:"status"`
	Payload   Payload `json:"payload,omitempty"`
	Note      string  `json:"note,omitempty"`
}

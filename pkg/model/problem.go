package model

import "strings"

// Classification buckets the reported symptom into a coarse issue type.
// It feeds the report summary, not rule priority.
type Classification string

const (
	IssueUnreachable     Classification = "unreachable"
	IssueDegraded        Classification = "degraded"
	IssueFunctionalError Classification = "functional_error"
	IssueUnknown         Classification = "unknown"
)

// ProblemStatement describes one investigation request. It is created once
// by the caller and passed by value; nothing in the engine mutates it.
type ProblemStatement struct {
	InstanceID   string   `json:"instance_id" yaml:"instance_id"`
	Region       string   `json:"region" yaml:"region"`
	Symptom      string   `json:"symptom" yaml:"symptom"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Environment  string   `json:"environment,omitempty" yaml:"environment,omitempty"`
	StartTime    string   `json:"start_time,omitempty" yaml:"start_time,omitempty"` // ISO-8601
	Port         int      `json:"port,omitempty" yaml:"port,omitempty"`             // 0 = not specified
	KnownChanges []string `json:"known_changes,omitempty" yaml:"known_changes,omitempty"`
}

// HasPort reports whether the caller named an affected port.
func (p ProblemStatement) HasPort() bool {
	return p.Port > 0
}

// Classify derives the issue classification from symptom keywords.
func (p ProblemStatement) Classify() Classification {
	symptom := strings.ToLower(p.Symptom)
	for _, kw := range []string{"timeout", "unreachable", "refused", "down"} {
		if strings.Contains(symptom, kw) {
			return IssueUnreachable
		}
	}
	for _, kw := range []string{"slow", "latency", "degraded", "intermittent"} {
		if strings.Contains(symptom, kw) {
			return IssueDegraded
		}
	}
	for _, kw := range []string{"5xx", "error", "502", "504", "functional"} {
		if strings.Contains(symptom, kw) {
			return IssueFunctionalError
		}
	}
	return IssueUnknown
}

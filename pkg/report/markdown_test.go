package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshound/ec2-rca/pkg/model"
)

func sampleResult() model.RCAResult {
	return model.RCAResult{
		ID: "9f6f6e1e-0000-4000-8000-000000000000",
		Problem: model.ProblemStatement{
			InstanceID:  "i-0123456789abcdef0",
			Region:      "us-east-1",
			Symptom:     "Website on port 8080 unreachable",
			Environment: "production",
			StartTime:   "2025-01-01T08:00:00Z",
			Port:        8080,
		},
		Classification: model.IssueUnreachable,
		RootCause:      "Inbound port 8080 is blocked in the instance security groups, preventing access to the application.",
		Confidence:     model.ConfidenceHigh,
		Observations: []model.Observation{
			{CheckName: "instance-status", Layer: model.LayerAWS, Status: model.StatusOK, Note: "instance is running"},
			{CheckName: "security-groups", Layer: model.LayerNetwork, Status: model.StatusAnomaly, Note: "inbound rule for port 8080 is not allowed"},
			{CheckName: "service-status", Layer: model.LayerApplication, Status: model.StatusSkipped, Note: "prerequisite unusable"},
		},
		Evidence: []model.Observation{
			{CheckName: "security-groups", Layer: model.LayerNetwork, Status: model.StatusAnomaly, Note: "inbound rule for port 8080 is not allowed"},
		},
		Impact:            "Clients of the service on instance i-0123456789abcdef0 experienced availability or performance issues on port 8080.",
		Status:            "mitigated",
		Timeline:          []string{"2025-01-01T08:00:00Z - issue reported: Website on port 8080 unreachable"},
		DataGaps:          []string{"service-status: prerequisite unusable"},
		CorrectiveActions: []string{"Reinstate the required security group, ACL, and routing rules for application traffic."},
		PreventiveActions: []string{"Add guardrails to prevent unapproved security group or network ACL edits."},
		GeneratedAt:       "2025-01-01T09:00:00Z",
	}
}

func TestRenderSectionOrder(t *testing.T) {
	out := Render(sampleResult())

	headings := []string{
		"# EC2 Root Cause Analysis - Website on port 8080 unreachable",
		"## Executive Summary",
		"## Root Cause",
		"## Evidence & Analysis",
		"## Timeline",
		"## Impact Assessment",
		"## Corrective Actions (Immediate Fixes)",
		"## Preventive Actions (Long-term)",
		"## Data Gaps & Assumptions",
	}
	last := -1
	for _, heading := range headings {
		idx := strings.Index(out, heading)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", heading)
		assert.Greater(t, idx, last, "section %q out of order", heading)
		last = idx
	}
}

func TestRenderEvidenceGroupedByLayer(t *testing.T) {
	out := Render(sampleResult())

	assert.Contains(t, out, "### Network / Security")
	assert.Contains(t, out, "- [ANOMALY] security-groups: inbound rule for port 8080 is not allowed")
	// Layers with no evidence still render, with an explicit placeholder.
	assert.Contains(t, out, "### OS Layer\n- No evidence collected.")
	assert.Contains(t, out, "Confidence: **HIGH**")
}

func TestRenderEmptyCollections(t *testing.T) {
	result := sampleResult()
	result.Evidence = nil
	result.Timeline = nil
	result.DataGaps = nil
	result.CorrectiveActions = nil
	result.Problem.Environment = ""
	result.Problem.StartTime = ""
	result.Problem.Port = 0

	out := Render(result)
	assert.Contains(t, out, "- No timeline events captured.")
	assert.Contains(t, out, "- None identified.")
	assert.Contains(t, out, "## Data Gaps & Assumptions\n- None")
	assert.Contains(t, out, "unspecified environment")
	assert.Contains(t, out, "incident window starting unknown")
	assert.Contains(t, out, "clients accessing port unspecified")
}

func TestRenderStableAcrossJSONRoundTrip(t *testing.T) {
	original := sampleResult()
	first := Render(original)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	var restored model.RCAResult
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, first, Render(restored))
}

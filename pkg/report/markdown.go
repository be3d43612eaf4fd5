// Package report renders an RCAResult into an executive-ready Markdown
// document with a fixed section order. Rendering is pure formatting: the
// same result always produces identical text.
package report

import (
	"fmt"
	"strings"

	"github.com/opshound/ec2-rca/pkg/model"
)

var layerTitles = map[model.Layer]string{
	model.LayerAWS:         "AWS Infrastructure",
	model.LayerNetwork:     "Network / Security",
	model.LayerCompute:     "Compute / Resource",
	model.LayerApplication: "Application / Middleware",
	model.LayerOS:          "OS Layer",
}

// Render produces the full Markdown report for a result.
func Render(result model.RCAResult) string {
	sections := []string{
		title(result),
		executiveSummary(result),
		rootCause(result),
		evidence(result),
		timeline(result),
		impactAssessment(result),
		actions("Corrective Actions (Immediate Fixes)", result.CorrectiveActions),
		actions("Preventive Actions (Long-term)", result.PreventiveActions),
		dataGaps(result),
	}
	return strings.Join(sections, "\n\n")
}

func title(result model.RCAResult) string {
	return "# EC2 Root Cause Analysis - " + result.Problem.Symptom
}

func executiveSummary(result model.RCAResult) string {
	lines := []string{
		"## Executive Summary",
		"- What failed: " + result.Problem.Symptom,
		"- Why it failed: " + result.RootCause,
		"- Impact: " + result.Impact,
		"- Issue classification: " + string(result.Classification),
		"- Current status: " + result.Status,
	}
	return strings.Join(lines, "\n")
}

func rootCause(result model.RCAResult) string {
	return fmt.Sprintf("## Root Cause\n%s\n\nConfidence: **%s**", result.RootCause, result.Confidence)
}

func evidence(result model.RCAResult) string {
	grouped := result.EvidenceByLayer()
	lines := []string{"## Evidence & Analysis"}
	for _, layer := range model.LayerOrder {
		lines = append(lines, "### "+layerTitles[layer])
		observations := grouped[layer]
		if len(observations) == 0 {
			lines = append(lines, "- No evidence collected.")
			continue
		}
		for _, obs := range observations {
			lines = append(lines, fmt.Sprintf("- [%s] %s: %s", obs.Status, obs.CheckName, obs.Note))
		}
	}
	return strings.Join(lines, "\n")
}

func timeline(result model.RCAResult) string {
	lines := []string{"## Timeline"}
	if len(result.Timeline) == 0 {
		lines = append(lines, "- No timeline events captured.")
	}
	for _, event := range result.Timeline {
		lines = append(lines, "- "+event)
	}
	return strings.Join(lines, "\n")
}

func impactAssessment(result model.RCAResult) string {
	problem := result.Problem
	env := problem.Environment
	if env == "" {
		env = "unspecified environment"
	}
	start := problem.StartTime
	if start == "" {
		start = "unknown"
	}
	port := "unspecified"
	if problem.HasPort() {
		port = fmt.Sprintf("%d", problem.Port)
	}
	lines := []string{
		"## Impact Assessment",
		fmt.Sprintf("- Scope: %s - EC2 instance %s (%s)", env, problem.InstanceID, problem.Region),
		"- Duration: incident window starting " + start,
		"- Users affected: clients accessing port " + port,
	}
	return strings.Join(lines, "\n")
}

func actions(heading string, items []string) string {
	lines := []string{"## " + heading}
	if len(items) == 0 {
		lines = append(lines, "- None identified.")
	}
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func dataGaps(result model.RCAResult) string {
	lines := []string{"## Data Gaps & Assumptions"}
	if len(result.DataGaps) == 0 {
		lines = append(lines, "- None")
	}
	for _, gap := range result.DataGaps {
		lines = append(lines, "- "+gap)
	}
	return strings.Join(lines, "\n")
}

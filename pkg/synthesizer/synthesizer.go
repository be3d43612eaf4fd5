// Package synthesizer converts a sequence of normalized observations into
// a single best-supported root-cause verdict with its evidence chain.
package synthesizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opshound/ec2-rca/pkg/model"
)

// Synthesize derives the RCAResult for one executed plan. Observations
// must be in canonical plan order; the first-match scan over them is the
// tie-break between equally ranked anomalies. Never fails: ambiguity
// resolves to an INCONCLUSIVE result, not an error.
func Synthesize(problem model.ProblemStatement, observations []model.Observation) model.RCAResult {
	result := model.RCAResult{
		ID:             uuid.NewString(),
		Problem:        problem,
		Classification: problem.Classify(),
		Observations:   observations,
		Impact:         impactStatement(problem),
		Timeline:       buildTimeline(problem, observations),
		DataGaps:       collectDataGaps(observations),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if rule, obs, ok := firstRuleMatch(observations); ok {
		result.RootCause = rule.statement(problem, obs)
		result.Confidence = rule.confidence
		result.Evidence = []model.Observation{obs}
		result.Status = "mitigated"
	} else if anomaly, ok := firstAnomaly(observations); ok {
		result.RootCause = fmt.Sprintf("Anomalous signal in check %q (%s) is the only lead: %s.", anomaly.CheckName, anomaly.Layer, anomaly.Note)
		result.Confidence = model.ConfidenceLow
		result.Evidence = []model.Observation{anomaly}
		result.Status = "ongoing"
	} else {
		result.RootCause = "No definitive root cause identified; every executed check returned a healthy signal."
		result.Confidence = model.ConfidenceInconclusive
		result.Evidence = observations
		result.Status = "ongoing"
	}

	result.CorrectiveActions = correctiveActions(result.Evidence, result.Confidence)
	result.PreventiveActions = preventiveActions(observations)
	return result
}

// firstRuleMatch walks the diagnostic funnel one layer at a time: within a
// layer, rules apply in table order and, per rule, observations in plan
// order. An anomaly in an earlier layer always outranks any match further
// down the funnel, even when no rule covers it; such anomalies surface as
// the layer's generic verdict instead of letting a lower layer win.
func firstRuleMatch(observations []model.Observation) (causalRule, model.Observation, bool) {
	for _, layer := range model.LayerOrder {
		for _, rule := range causalRules {
			for _, obs := range observations {
				if obs.Layer != layer || obs.CheckName != rule.check || obs.Status != model.StatusAnomaly {
					continue
				}
				if rule.when != nil && !rule.when(obs.Payload) {
					continue
				}
				return rule, obs, true
			}
		}
		// No rule fired in this layer; an uncovered anomaly here still
		// blocks descent so the funnel priority holds. The layer-ordered
		// firstAnomaly fallback will surface it.
		if _, ok := firstAnomalyInLayer(layer, observations); ok {
			return causalRule{}, model.Observation{}, false
		}
	}
	return causalRule{}, model.Observation{}, false
}

// firstAnomaly walks the funnel layer by layer, then observations in plan
// order within a layer, mirroring the rule scan's priority.
func firstAnomaly(observations []model.Observation) (model.Observation, bool) {
	for _, layer := range model.LayerOrder {
		if obs, ok := firstAnomalyInLayer(layer, observations); ok {
			return obs, true
		}
	}
	return model.Observation{}, false
}

func firstAnomalyInLayer(layer model.Layer, observations []model.Observation) (model.Observation, bool) {
	for _, obs := range observations {
		if obs.Layer == layer && obs.Status == model.StatusAnomaly {
			return obs, true
		}
	}
	return model.Observation{}, false
}

func impactStatement(problem model.ProblemStatement) string {
	target := "the service on instance " + problem.InstanceID
	if problem.HasPort() {
		return fmt.Sprintf("Clients of %s experienced availability or performance issues on port %d.", target, problem.Port)
	}
	return fmt.Sprintf("Clients of %s experienced availability or performance issues.", target)
}

// buildTimeline lists the incident start followed by every check that
// produced a usable signal, in plan order.
func buildTimeline(problem model.ProblemStatement, observations []model.Observation) []string {
	var timeline []string
	if problem.StartTime != "" {
		timeline = append(timeline, problem.StartTime+" - issue reported: "+problem.Symptom)
	}
	for _, obs := range observations {
		if obs.Status.Usable() {
			timeline = append(timeline, obs.CheckName+": "+obs.Note)
		}
	}
	return timeline
}

// collectDataGaps records every check that could not produce a signal, so
// the report can call out where visibility was missing.
func collectDataGaps(observations []model.Observation) []string {
	var gaps []string
	for _, obs := range observations {
		if obs.Status == model.StatusFailedToRun || obs.Status == model.StatusSkipped {
			gaps = append(gaps, obs.CheckName+": "+obs.Note)
		}
	}
	return gaps
}

// correctiveActions suggests immediate fixes targeted at the layers the
// evidence actually implicates.
func correctiveActions(evidence []model.Observation, confidence model.Confidence) []string {
	if confidence == model.ConfidenceInconclusive {
		return []string{"Widen the observation window and re-run the investigation with full toolkit coverage."}
	}
	seen := map[model.Layer]bool{}
	var actions []string
	for _, obs := range evidence {
		if seen[obs.Layer] {
			continue
		}
		seen[obs.Layer] = true
		switch obs.Layer {
		case model.LayerAWS:
			actions = append(actions, "Restore the instance to a running, managed state and revert unapproved infrastructure changes.")
		case model.LayerNetwork:
			actions = append(actions, "Reinstate the required security group, ACL, and routing rules for application traffic.")
		case model.LayerCompute:
			actions = append(actions, "Right-size the instance or enable auto scaling to relieve compute saturation.")
		case model.LayerApplication:
			actions = append(actions, "Restart the application service and validate the port binding and host firewall.")
		case model.LayerOS:
			actions = append(actions, "Add memory headroom or tune the workload to stop kernel OOM kills.")
		}
	}
	return actions
}

func preventiveActions(observations []model.Observation) []string {
	actions := []string{
		"Add guardrails to prevent unapproved security group or network ACL edits.",
		"Alert on sustained CPU, memory, and 5xx trends for the workload.",
	}
	for _, obs := range observations {
		if obs.Status == model.StatusFailedToRun || obs.Status == model.StatusSkipped {
			actions = append(actions, "Ensure the SSM agent and CloudWatch agent are installed so every diagnostic layer stays visible.")
			break
		}
	}
	return actions
}

package synthesizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/planner"
)

func synthProblem() model.ProblemStatement {
	return model.ProblemStatement{
		InstanceID: "i-0123456789abcdef0",
		Region:     "us-east-1",
		Symptom:    "Website unreachable",
		StartTime:  "2025-01-01T08:00:00Z",
		Port:       8080,
	}
}

func okObs(name string, layer model.Layer) model.Observation {
	return model.Observation{CheckName: name, Layer: layer, Status: model.StatusOK, Payload: model.Payload{}, Note: "healthy"}
}

func anomalyObs(name string, layer model.Layer, note string) model.Observation {
	return model.Observation{CheckName: name, Layer: layer, Status: model.StatusAnomaly, Payload: model.Payload{}, Note: note}
}

func TestSynthesizeAllHealthyIsInconclusive(t *testing.T) {
	observations := []model.Observation{
		okObs(planner.CheckInstanceStatus, model.LayerAWS),
		okObs(planner.CheckSecurityGroups, model.LayerNetwork),
		okObs(planner.CheckServiceStatus, model.LayerApplication),
	}

	result := Synthesize(synthProblem(), observations)

	assert.Equal(t, model.ConfidenceInconclusive, result.Confidence)
	assert.Contains(t, result.RootCause, "No definitive root cause")
	// With nothing to single out, everything gathered is the evidence.
	assert.Equal(t, observations, result.Evidence)
	assert.Equal(t, "ongoing", result.Status)
}

func TestSynthesizeSecurityGroupBlock(t *testing.T) {
	observations := []model.Observation{
		okObs(planner.CheckInstanceStatus, model.LayerAWS),
		{
			CheckName: planner.CheckSecurityGroups,
			Layer:     model.LayerNetwork,
			Status:    model.StatusAnomaly,
			Payload: model.Payload{
				"inbound": []any{map[string]any{"port": 8080, "allowed": false}},
			},
			Note: "inbound rule for port 8080 is not allowed",
		},
		okObs(planner.CheckServiceStatus, model.LayerApplication),
	}

	result := Synthesize(synthProblem(), observations)

	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	assert.Contains(t, result.RootCause, "8080")
	assert.Contains(t, result.RootCause, "security groups")
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, planner.CheckSecurityGroups, result.Evidence[0].CheckName)
	assert.Equal(t, "mitigated", result.Status)
}

func TestSynthesizeLayerPriorityIgnoresObservationOrder(t *testing.T) {
	// The application anomaly precedes the AWS one in the slice, but the
	// layer funnel still ranks the stopped instance as the root cause.
	observations := []model.Observation{
		anomalyObs(planner.CheckServiceStatus, model.LayerApplication, "nginx inactive"),
		{
			CheckName: planner.CheckInstanceStatus,
			Layer:     model.LayerAWS,
			Status:    model.StatusAnomaly,
			Payload:   model.Payload{"state": "stopped"},
			Note:      "instance state is stopped",
		},
	}

	result := Synthesize(synthProblem(), observations)

	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	assert.Contains(t, result.RootCause, `state "stopped"`)
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, planner.CheckInstanceStatus, result.Evidence[0].CheckName)
}

func TestSynthesizeSameLayerTieBreaksOnRuleOrder(t *testing.T) {
	// Route tables and network ACLs share a layer; the ACL deny rule sits
	// higher in the table and wins even though route-tables appears first.
	observations := []model.Observation{
		anomalyObs(planner.CheckRouteTables, model.LayerNetwork, "no default route"),
		anomalyObs(planner.CheckNetworkACLs, model.LayerNetwork, "explicit deny on subnet ACL"),
	}

	result := Synthesize(synthProblem(), observations)

	assert.Contains(t, result.RootCause, "network ACL")
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, planner.CheckNetworkACLs, result.Evidence[0].CheckName)
}

func TestSynthesizeMissingPublicAddress(t *testing.T) {
	observations := []model.Observation{
		okObs(planner.CheckInstanceStatus, model.LayerAWS),
		anomalyObs(planner.CheckElasticIP, model.LayerNetwork, "no public address mapped to the instance"),
	}

	result := Synthesize(synthProblem(), observations)

	assert.Equal(t, model.ConfidenceMedium, result.Confidence)
	assert.Contains(t, result.RootCause, "No public address is mapped")
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, planner.CheckElasticIP, result.Evidence[0].CheckName)
}

func TestSynthesizeUnruledAnomalyFallsBackLow(t *testing.T) {
	// A check outside the rule table (as a custom catalog would add) still
	// surfaces through the generic fallback.
	observations := []model.Observation{
		okObs(planner.CheckInstanceStatus, model.LayerAWS),
		anomalyObs("ebs-volume-health", model.LayerCompute, "volume i/o degraded"),
	}

	result := Synthesize(synthProblem(), observations)

	assert.Equal(t, model.ConfidenceLow, result.Confidence)
	assert.Contains(t, result.RootCause, "ebs-volume-health")
	assert.Contains(t, result.RootCause, "volume i/o degraded")
	assert.Equal(t, "ongoing", result.Status)
}

func TestSynthesizeAlarmAnomalyOutranksLowerLayerRule(t *testing.T) {
	// The alarm anomaly sits in the AWS layer; even though the
	// service-status anomaly has a stronger rule, the earlier layer wins.
	observations := []model.Observation{
		anomalyObs(planner.CheckCloudWatchAlarms, model.LayerAWS, "2 CloudWatch alarm(s) in ALARM state"),
		anomalyObs(planner.CheckServiceStatus, model.LayerApplication, "service down: nginx exited"),
	}

	result := Synthesize(synthProblem(), observations)

	require.Len(t, result.Evidence, 1)
	assert.Equal(t, planner.CheckCloudWatchAlarms, result.Evidence[0].CheckName)
	assert.Contains(t, result.RootCause, "CloudWatch alarms were firing")
	assert.Equal(t, model.ConfidenceLow, result.Confidence)
}

func TestSynthesizeUnruledHigherLayerAnomalyBlocksDescent(t *testing.T) {
	// Even with no rule covering the AWS-layer anomaly, the funnel must not
	// let the ruled APPLICATION anomaly claim the verdict.
	observations := []model.Observation{
		anomalyObs(planner.CheckServiceStatus, model.LayerApplication, "service down: nginx exited"),
		anomalyObs("ebs-volume-health", model.LayerAWS, "volume impaired"),
	}

	result := Synthesize(synthProblem(), observations)

	require.Len(t, result.Evidence, 1)
	assert.Equal(t, "ebs-volume-health", result.Evidence[0].CheckName)
	assert.Equal(t, model.ConfidenceLow, result.Confidence)
	assert.Contains(t, result.RootCause, "volume impaired")
}

func TestSynthesizeSecurityGroupStatementMatchesAnomaly(t *testing.T) {
	// Port set, but the anomaly is the absence of any inbound rule; the
	// statement must describe that, not a blocked port.
	noRules := model.Observation{
		CheckName: planner.CheckSecurityGroups,
		Layer:     model.LayerNetwork,
		Status:    model.StatusAnomaly,
		Payload:   model.Payload{"inbound": []any{}},
		Note:      "no inbound security group rules present",
	}

	result := Synthesize(synthProblem(), []model.Observation{noRules})
	assert.Contains(t, result.RootCause, "no inbound rules")
	assert.NotContains(t, result.RootCause, "Inbound port 8080")

	blocked := noRules
	blocked.Payload = model.Payload{
		"inbound": []any{map[string]any{"port": 8080, "allowed": false}},
	}
	blocked.Note = "inbound rule for port 8080 is not allowed"

	result = Synthesize(synthProblem(), []model.Observation{blocked})
	assert.Contains(t, result.RootCause, "Inbound port 8080 is blocked")
}

func TestSynthesizeTimelineAndGaps(t *testing.T) {
	observations := []model.Observation{
		okObs(planner.CheckInstanceStatus, model.LayerAWS),
		{CheckName: planner.CheckSSMManaged, Layer: model.LayerAWS, Status: model.StatusFailedToRun, Note: "check_ssm_managed failed: throttled"},
		{CheckName: planner.CheckServiceStatus, Layer: model.LayerApplication, Status: model.StatusSkipped, Note: "prerequisite unusable"},
	}

	result := Synthesize(synthProblem(), observations)

	require.NotEmpty(t, result.Timeline)
	assert.Contains(t, result.Timeline[0], "2025-01-01T08:00:00Z")
	assert.Contains(t, result.Timeline[0], "Website unreachable")
	// Only the usable observation makes the timeline.
	require.Len(t, result.Timeline, 2)
	assert.Contains(t, result.Timeline[1], planner.CheckInstanceStatus)

	require.Len(t, result.DataGaps, 2)
	assert.Contains(t, result.DataGaps[0], "throttled")
	assert.Contains(t, result.DataGaps[1], planner.CheckServiceStatus)

	// Visibility gaps surface an agent-coverage preventive action.
	assert.Contains(t, result.PreventiveActions[len(result.PreventiveActions)-1], "SSM agent")
}

func TestSynthesizeResultMetadata(t *testing.T) {
	result := Synthesize(synthProblem(), nil)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, model.IssueUnreachable, result.Classification)
	assert.Contains(t, result.Impact, "port 8080")

	generated, err := time.Parse(time.RFC3339, result.GeneratedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), generated, time.Minute)
}

func TestSynthesizeCorrectiveActionsTargetEvidenceLayer(t *testing.T) {
	observations := []model.Observation{
		anomalyObs(planner.CheckServiceStatus, model.LayerApplication, "nginx inactive (exit code 1)"),
	}

	result := Synthesize(synthProblem(), observations)

	require.Len(t, result.CorrectiveActions, 1)
	assert.Contains(t, result.CorrectiveActions[0], "Restart the application service")
}

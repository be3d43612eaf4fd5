package synthesizer

import (
	"fmt"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/planner"
)

// causalRule matches one anomalous observation pattern and, on match,
// yields the root-cause statement and confidence. The table mirrors the
// layer funnel and declaration order is the priority within a layer; the
// scan itself walks layer by layer (see firstRuleMatch), so an AWS-layer
// anomaly always outranks a NETWORK one, and so on down. First match wins.
type causalRule struct {
	name       string
	check      string
	confidence model.Confidence
	// when further narrows the match on the anomaly payload; nil accepts
	// any anomaly of the named check.
	when      func(p model.Payload) bool
	statement func(problem model.ProblemStatement, obs model.Observation) string
}

var causalRules = []causalRule{
	// AWS infrastructure
	{
		name:       "instance-not-running",
		check:      planner.CheckInstanceStatus,
		confidence: model.ConfidenceHigh,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			state := "unknown"
			if s, ok := obs.Payload["state"].(string); ok {
				state = s
			}
			return fmt.Sprintf("The EC2 instance is not running (state %q), so the service cannot serve traffic.", state)
		},
	},
	{
		name:       "infra-change-in-window",
		check:      planner.CheckCloudTrail,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "An infrastructure configuration change landed inside the incident window and is the most likely trigger: " + obs.Note + "."
		},
	},
	{
		name:       "instance-compromised",
		check:      planner.CheckGuardDuty,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "GuardDuty reported active security findings against the instance (" + obs.Note + "), pointing at a compromise or attack on the host."
		},
	},
	{
		name:       "alarms-firing",
		check:      planner.CheckCloudWatchAlarms,
		confidence: model.ConfidenceLow,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "CloudWatch alarms were firing during the incident window (" + obs.Note + "); the alarmed metrics are the strongest available lead."
		},
	},
	{
		name:       "ssm-unmanaged",
		check:      planner.CheckSSMManaged,
		confidence: model.ConfidenceLow,
		statement: func(_ model.ProblemStatement, _ model.Observation) string {
			return "The instance is not registered with SSM, so management access is lost and OS and application diagnostics are unavailable."
		},
	},

	// Network reachability
	{
		name:       "sg-inbound-blocked",
		check:      planner.CheckSecurityGroups,
		confidence: model.ConfidenceHigh,
		statement: func(problem model.ProblemStatement, obs model.Observation) string {
			if problem.HasPort() && hasInboundRules(obs.Payload) {
				return fmt.Sprintf("Inbound port %d is blocked in the instance security groups, preventing access to the application.", problem.Port)
			}
			return "The instance security groups carry no inbound rules, preventing access to the application."
		},
	},
	{
		name:       "nacl-deny",
		check:      planner.CheckNetworkACLs,
		confidence: model.ConfidenceHigh,
		statement: func(_ model.ProblemStatement, _ model.Observation) string {
			return "A subnet network ACL explicitly denies traffic on the path to the instance."
		},
	},
	{
		name:       "routing-broken",
		check:      planner.CheckRouteTables,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, _ model.Observation) string {
			return "The subnet route table has no default route, so traffic cannot reach or leave the instance."
		},
	},
	{
		name:       "no-public-address",
		check:      planner.CheckElasticIP,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, _ model.Observation) string {
			return "No public address is mapped to the instance, so external clients cannot reach it."
		},
	},
	{
		name:       "ddos-in-progress",
		check:      planner.CheckShieldEvents,
		confidence: model.ConfidenceHigh,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "A DDoS event detected by Shield is degrading availability of the instance (" + obs.Note + ")."
		},
	},
	{
		name:       "waf-blocking-traffic",
		check:      planner.CheckWAFActivity,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "WAF blocked or throttled requests during the window, consistent with abusive traffic or an overly strict rule: " + obs.Note + "."
		},
	},
	{
		name:       "port-unreachable",
		check:      planner.CheckPortReachability,
		confidence: model.ConfidenceMedium,
		statement: func(problem model.ProblemStatement, _ model.Observation) string {
			return fmt.Sprintf("Port %d is unreachable over the network path even though security group rules look intact.", problem.Port)
		},
	},

	// Compute health
	{
		name:       "cpu-saturation",
		check:      planner.CheckCPUUtilization,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "Sustained CPU saturation on the instance is causing request timeouts and errors (" + obs.Note + ")."
		},
	},

	// Application behavior
	{
		name:       "service-down",
		check:      planner.CheckServiceStatus,
		confidence: model.ConfidenceHigh,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "The web server process is down: " + obs.Note + "."
		},
	},
	{
		name:       "nothing-listening",
		check:      planner.CheckPortListener,
		confidence: model.ConfidenceHigh,
		statement: func(problem model.ProblemStatement, _ model.Observation) string {
			return fmt.Sprintf("The application is not listening on port %d.", problem.Port)
		},
	},
	{
		name:       "host-firewall-block",
		check:      planner.CheckHostFirewall,
		confidence: model.ConfidenceMedium,
		statement: func(problem model.ProblemStatement, _ model.Observation) string {
			return fmt.Sprintf("A host-level firewall rule is blocking port %d on the instance.", problem.Port)
		},
	},
	{
		name:       "application-errors",
		check:      planner.CheckAppLogs,
		confidence: model.ConfidenceLow,
		statement: func(_ model.ProblemStatement, obs model.Observation) string {
			return "Application-level errors in the logs are the strongest available signal: " + obs.Note + "."
		},
	},

	// OS internals
	{
		name:       "oom-killed",
		check:      planner.CheckKernelOOM,
		confidence: model.ConfidenceMedium,
		statement: func(_ model.ProblemStatement, _ model.Observation) string {
			return "Processes were killed by the kernel OOM killer, stopping the service."
		},
	},
}

// hasInboundRules reports whether the security-groups payload carried any
// inbound rule at all, tolerating the slice shapes decoding produces.
func hasInboundRules(p model.Payload) bool {
	switch v := p["inbound"].(type) {
	case []any:
		return len(v) > 0
	case []map[string]any:
		return len(v) > 0
	case []model.Payload:
		return len(v) > 0
	}
	return false
}

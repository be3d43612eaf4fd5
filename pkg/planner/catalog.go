package planner

import (
	"fmt"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/toolkit"
)

// Check names, unique within the catalog. The synthesizer's causal rules
// reference them, so renaming a check means updating its rules too.
const (
	CheckInstanceStatus   = "instance-status"
	CheckSSMManaged       = "ssm-managed"
	CheckCloudWatchAlarms = "cloudwatch-alarms"
	CheckCloudTrail       = "cloudtrail-changes"
	CheckGuardDuty        = "guardduty-findings"
	CheckSecurityGroups   = "security-groups"
	CheckNetworkACLs      = "network-acls"
	CheckRouteTables      = "route-tables"
	CheckElasticIP        = "elastic-ip"
	CheckWAFActivity      = "waf-activity"
	CheckShieldEvents     = "shield-events"
	CheckPortReachability = "port-reachability"
	CheckCPUUtilization   = "cpu-utilization"
	CheckServiceStatus    = "service-status"
	CheckPortListener     = "port-listener"
	CheckHostFirewall     = "host-firewall"
	CheckAppLogs          = "app-logs"
	CheckKernelOOM        = "kernel-oom"
)

// catalogEntry declares one check: how to parameterize it from the problem,
// what it depends on, and how to classify its payload. Declaration order is
// the intra-layer tie-break for plan ordering.
type catalogEntry struct {
	name      string
	layer     model.Layer
	operation string
	requires  []string
	needsPort bool
	rationale string
	args      func(p model.ProblemStatement) model.Args
	classify  func(p model.ProblemStatement) model.ClassifyFunc
}

// cpuSaturationThreshold is the max CPU percentage above which compute
// pressure is treated as anomalous.
const cpuSaturationThreshold = 90

func instanceArgs(p model.ProblemStatement) model.Args {
	return model.Args{"instance_id": p.InstanceID, "region": p.Region}
}

func windowArgs(p model.ProblemStatement) model.Args {
	args := instanceArgs(p)
	if p.StartTime != "" {
		args["start_time"] = p.StartTime
	}
	return args
}

// catalog is the fixed set of diagnostic checks, grouped by layer in funnel
// order. Checks marked needsPort are omitted from the plan entirely when
// the problem names no port.
var catalog = []catalogEntry{
	// AWS infrastructure
	{
		name:      CheckInstanceStatus,
		layer:     model.LayerAWS,
		operation: toolkit.OpGetInstanceStatus,
		rationale: "Baseline EC2 state and reachability.",
		args:      instanceArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				state, ok := payloadString(p, "state")
				if !ok {
					return false, "no instance state reported"
				}
				if state != "running" {
					return true, fmt.Sprintf("instance state is %q, expected running", state)
				}
				return false, "instance is running"
			}
		},
	},
	{
		name:      CheckSSMManaged,
		layer:     model.LayerAWS,
		operation: toolkit.OpCheckSSMManaged,
		requires:  []string{CheckInstanceStatus},
		rationale: "Confirms SSM access for deeper OS and application checks.",
		args:      instanceArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				if managed, ok := payloadBool(p, "managed"); ok && !managed {
					return true, "instance is not SSM managed"
				}
				return false, "instance is SSM managed"
			}
		},
	},
	{
		name:      CheckCloudWatchAlarms,
		layer:     model.LayerAWS,
		operation: toolkit.OpGetCloudWatchAlarms,
		rationale: "Captures alarms that fired during the incident window.",
		args:      windowArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				alarms, _ := payloadList(p, "alarms")
				firing := 0
				for _, alarm := range alarms {
					if state, ok := payloadString(alarm, "state"); ok && state == "ALARM" {
						firing++
					}
				}
				if firing > 0 {
					return true, fmt.Sprintf("%d CloudWatch alarm(s) in ALARM state", firing)
				}
				return false, "no CloudWatch alarms firing"
			}
		},
	},
	{
		name:      CheckCloudTrail,
		layer:     model.LayerAWS,
		operation: toolkit.OpGetCloudTrailEvents,
		rationale: "Finds configuration changes (SG, NACL, reboots) near the incident.",
		args:      windowArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				events, _ := payloadList(p, "events")
				if len(events) > 0 {
					return true, fmt.Sprintf("%d infrastructure change event(s) in the window", len(events))
				}
				return false, "no infrastructure changes in the window"
			}
		},
	},
	{
		name:      CheckGuardDuty,
		layer:     model.LayerAWS,
		operation: toolkit.OpGetGuardDutyFindings,
		rationale: "Identifies brute force or reconnaissance affecting the host.",
		args:      windowArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				findings, _ := payloadList(p, "findings")
				if len(findings) > 0 {
					return true, fmt.Sprintf("%d GuardDuty finding(s) against the instance", len(findings))
				}
				return false, "no GuardDuty findings"
			}
		},
	},

	// Network reachability
	{
		name:      CheckSecurityGroups,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetSecurityGroups,
		rationale: "Validates inbound rules cover the application port.",
		args:      instanceArgs,
		classify: func(problem model.ProblemStatement) model.ClassifyFunc {
			port := problem.Port
			return func(p model.Payload) (bool, string) {
				inbound, ok := payloadList(p, "inbound")
				if !ok || len(inbound) == 0 {
					return true, "no inbound security group rules present"
				}
				if port == 0 {
					return false, fmt.Sprintf("%d inbound rule(s) present", len(inbound))
				}
				for _, rule := range inbound {
					rulePort, _ := payloadNumber(rule, "port")
					if int(rulePort) != port {
						continue
					}
					if allowed, ok := payloadBool(rule, "allowed"); ok && !allowed {
						return true, fmt.Sprintf("inbound rule for port %d is not allowed", port)
					}
				}
				return false, fmt.Sprintf("inbound rules allow port %d", port)
			}
		},
	},
	{
		name:      CheckNetworkACLs,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetNetworkACLs,
		rationale: "Ensures subnet ACLs allow web and management traffic.",
		args:      instanceArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				rules, _ := payloadList(p, "rules")
				for _, rule := range rules {
					if action, ok := payloadString(rule, "action"); ok && action == "deny" {
						return true, "network ACL contains an explicit deny on the traffic path"
					}
				}
				return false, "network ACLs permit traffic"
			}
		},
	},
	{
		name:      CheckRouteTables,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetRouteTables,
		rationale: "Confirms ingress/egress routing is intact.",
		args:      instanceArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				routes, ok := payloadList(p, "routes")
				if !ok {
					return false, "no route data reported"
				}
				for _, route := range routes {
					if dest, ok := payloadString(route, "destination"); ok && dest == "0.0.0.0/0" {
						return false, "default route present"
					}
				}
				return true, "no default route in the subnet route table"
			}
		},
	},
	{
		name:      CheckElasticIP,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetElasticIPMappings,
		rationale: "Resolves address mappings for public access.",
		args:      instanceArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				if ip, ok := payloadString(p, "public_ip"); ok && ip != "" {
					return false, fmt.Sprintf("public address %s mapped", ip)
				}
				return true, "no public address mapped to the instance"
			}
		},
	},
	{
		name:      CheckWAFActivity,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetWAFLogs,
		rationale: "Detects blocked or throttled requests indicating abuse.",
		args:      windowArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				blocked, _ := payloadList(p, "blocked_requests")
				if len(blocked) > 0 {
					return true, fmt.Sprintf("%d request(s) blocked or throttled by WAF in the window", len(blocked))
				}
				return false, "no WAF blocks in the window"
			}
		},
	},
	{
		name:      CheckShieldEvents,
		layer:     model.LayerNetwork,
		operation: toolkit.OpGetShieldEvents,
		rationale: "Captures DDoS events impacting availability.",
		args:      windowArgs,
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				events, _ := payloadList(p, "events")
				if len(events) > 0 {
					return true, fmt.Sprintf("%d active DDoS event(s) reported by Shield", len(events))
				}
				return false, "no Shield DDoS events"
			}
		},
	},
	{
		name:      CheckPortReachability,
		layer:     model.LayerNetwork,
		operation: toolkit.OpCheckPortReachability,
		requires:  []string{CheckSecurityGroups},
		needsPort: true,
		rationale: "Probes the network path to the application port.",
		args: func(p model.ProblemStatement) model.Args {
			args := instanceArgs(p)
			args["port"] = p.Port
			return args
		},
		classify: func(problem model.ProblemStatement) model.ClassifyFunc {
			port := problem.Port
			return func(p model.Payload) (bool, string) {
				if reachable, ok := payloadBool(p, "reachable"); ok && !reachable {
					return true, fmt.Sprintf("port %d is not reachable over the network path", port)
				}
				return false, fmt.Sprintf("port %d is reachable", port)
			}
		},
	},

	// Compute health
	{
		name:      CheckCPUUtilization,
		layer:     model.LayerCompute,
		operation: toolkit.OpGetCloudWatchMetrics,
		rationale: "Identifies compute pressure around the incident.",
		args: func(p model.ProblemStatement) model.Args {
			args := windowArgs(p)
			args["metric_name"] = "CPUUtilization"
			args["period"] = 60
			return args
		},
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				maxCPU, ok := payloadNumber(p, "max_cpu")
				if !ok {
					return false, "no CPU metrics reported"
				}
				if maxCPU >= cpuSaturationThreshold {
					return true, fmt.Sprintf("CPU peaked at %.0f%% during the window", maxCPU)
				}
				return false, fmt.Sprintf("CPU peaked at %.0f%%", maxCPU)
			}
		},
	},

	// Application behavior
	{
		name:      CheckServiceStatus,
		layer:     model.LayerApplication,
		operation: toolkit.OpRunCommand,
		requires:  []string{CheckSSMManaged},
		rationale: "Confirms the web server process is running and healthy.",
		args: func(p model.ProblemStatement) model.Args {
			args := instanceArgs(p)
			args["commands"] = []string{"systemctl status nginx || service nginx status"}
			return args
		},
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				if active, ok := payloadBool(p, "active"); ok && !active {
					reason, _ := payloadString(p, "reason")
					if reason == "" {
						reason = "service is inactive"
					}
					return true, fmt.Sprintf("service down: %s", reason)
				}
				return false, "service is active"
			}
		},
	},
	{
		name:      CheckPortListener,
		layer:     model.LayerApplication,
		operation: toolkit.OpRunCommand,
		requires:  []string{CheckSSMManaged},
		needsPort: true,
		rationale: "Validates the application is bound to the affected port.",
		args: func(p model.ProblemStatement) model.Args {
			args := instanceArgs(p)
			args["commands"] = []string{fmt.Sprintf("ss -tulpn | grep :%d || netstat -tulpn | grep :%d", p.Port, p.Port)}
			return args
		},
		classify: func(problem model.ProblemStatement) model.ClassifyFunc {
			port := problem.Port
			return func(p model.Payload) (bool, string) {
				if listening, ok := payloadBool(p, "listening"); ok && !listening {
					return true, fmt.Sprintf("nothing is listening on port %d", port)
				}
				return false, fmt.Sprintf("application is listening on port %d", port)
			}
		},
	},
	{
		name:      CheckHostFirewall,
		layer:     model.LayerApplication,
		operation: toolkit.OpRunCommand,
		requires:  []string{CheckSSMManaged},
		needsPort: true,
		rationale: "Detects host-level firewall rules blocking the application port.",
		args: func(p model.ProblemStatement) model.Args {
			args := instanceArgs(p)
			args["commands"] = []string{fmt.Sprintf("iptables -L -n | grep %d || ufw status", p.Port)}
			return args
		},
		classify: func(problem model.ProblemStatement) model.ClassifyFunc {
			port := problem.Port
			return func(p model.Payload) (bool, string) {
				if blocked, ok := payloadBool(p, "blocked"); ok && blocked {
					return true, fmt.Sprintf("host firewall is blocking port %d", port)
				}
				return false, "host firewall permits the port"
			}
		},
	},
	{
		name:      CheckAppLogs,
		layer:     model.LayerApplication,
		operation: toolkit.OpGetCloudWatchLogs,
		rationale: "Collects error logs around the failure window.",
		args: func(p model.ProblemStatement) model.Args {
			args := windowArgs(p)
			args["filter_pattern"] = "?ERROR ?5xx"
			return args
		},
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				count, ok := payloadNumber(p, "error_count")
				if ok && count > 0 {
					return true, fmt.Sprintf("%.0f application error(s) logged in the window", count)
				}
				return false, "no application errors logged"
			}
		},
	},

	// OS internals
	{
		name:      CheckKernelOOM,
		layer:     model.LayerOS,
		operation: toolkit.OpRunCommand,
		requires:  []string{CheckSSMManaged},
		rationale: "Checks for kernel errors or OOM kills tied to the downtime.",
		args: func(p model.ProblemStatement) model.Args {
			args := instanceArgs(p)
			args["commands"] = []string{"dmesg | tail -n 50", "grep -i oom /var/log/messages || true"}
			return args
		},
		classify: func(model.ProblemStatement) model.ClassifyFunc {
			return func(p model.Payload) (bool, string) {
				if oom, ok := payloadBool(p, "oom_killed"); ok && oom {
					return true, "kernel OOM killer terminated processes"
				}
				return false, "no OOM kills in kernel logs"
			}
		},
	},
}

// Package toolkit defines the diagnostic capability contract the engine
// invokes checks through. The engine never talks to AWS itself; callers
// supply an implementation (real cloud calls, a stub, or fixture replay).
package toolkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/opshound/ec2-rca/pkg/model"
)

// Operation names the catalog binds checks to. An implementation swapping
// in a different catalog must keep these names and payload shapes stable,
// otherwise the classification rules stop working.
const (
	OpGetInstanceStatus     = "get_instance_status"
	OpCheckSSMManaged       = "check_ssm_managed"
	OpGetSecurityGroups     = "get_security_groups"
	OpGetNetworkACLs        = "get_network_acls"
	OpGetRouteTables        = "get_route_tables"
	OpGetElasticIPMappings  = "get_elastic_ip_mappings"
	OpGetCloudWatchMetrics  = "get_cloudwatch_metrics"
	OpGetCloudWatchAlarms   = "get_cloudwatch_alarms"
	OpGetCloudWatchLogs     = "get_cloudwatch_logs"
	OpGetCloudTrailEvents   = "get_cloudtrail_events"
	OpGetWAFLogs            = "get_waf_logs"
	OpGetGuardDutyFindings  = "get_guardduty_findings"
	OpGetShieldEvents       = "get_shield_events"
	OpCheckPortReachability = "check_port_reachability"
	OpRunCommand            = "run_command"
)

// ErrMissingTool signals that an implementation does not provide the
// requested operation. The executor records it as a FAILED_TO_RUN
// observation (a visibility gap), never as a fatal error.
var ErrMissingTool = errors.New("diagnostic tool not provided")

// Toolkit is the full capability set of diagnostic operations. Every
// operation is a logically idempotent query: implementations must be safe
// for concurrent use and must never mutate cloud state.
type Toolkit interface {
	GetInstanceStatus(ctx context.Context, args model.Args) (model.Payload, error)
	CheckSSMManaged(ctx context.Context, args model.Args) (model.Payload, error)
	GetSecurityGroups(ctx context.Context, args model.Args) (model.Payload, error)
	GetNetworkACLs(ctx context.Context, args model.Args) (model.Payload, error)
	GetRouteTables(ctx context.Context, args model.Args) (model.Payload, error)
	GetElasticIPMappings(ctx context.Context, args model.Args) (model.Payload, error)
	GetCloudWatchMetrics(ctx context.Context, args model.Args) (model.Payload, error)
	GetCloudWatchAlarms(ctx context.Context, args model.Args) (model.Payload, error)
	GetCloudWatchLogs(ctx context.Context, args model.Args) (model.Payload, error)
	GetCloudTrailEvents(ctx context.Context, args model.Args) (model.Payload, error)
	GetWAFLogs(ctx context.Context, args model.Args) (model.Payload, error)
	GetGuardDutyFindings(ctx context.Context, args model.Args) (model.Payload, error)
	GetShieldEvents(ctx context.Context, args model.Args) (model.Payload, error)
	CheckPortReachability(ctx context.Context, args model.Args) (model.Payload, error)
	RunCommand(ctx context.Context, args model.Args) (model.Payload, error)
}

// Invoke dispatches an operation by catalog name.
func Invoke(ctx context.Context, tk Toolkit, op string, args model.Args) (model.Payload, error) {
	switch op {
	case OpGetInstanceStatus:
		return tk.GetInstanceStatus(ctx, args)
	case OpCheckSSMManaged:
		return tk.CheckSSMManaged(ctx, args)
	case OpGetSecurityGroups:
		return tk.GetSecurityGroups(ctx, args)
	case OpGetNetworkACLs:
		return tk.GetNetworkACLs(ctx, args)
	case OpGetRouteTables:
		return tk.GetRouteTables(ctx, args)
	case OpGetElasticIPMappings:
		return tk.GetElasticIPMappings(ctx, args)
	case OpGetCloudWatchMetrics:
		return tk.GetCloudWatchMetrics(ctx, args)
	case OpGetCloudWatchAlarms:
		return tk.GetCloudWatchAlarms(ctx, args)
	case OpGetCloudWatchLogs:
		return tk.GetCloudWatchLogs(ctx, args)
	case OpGetCloudTrailEvents:
		return tk.GetCloudTrailEvents(ctx, args)
	case OpGetWAFLogs:
		return tk.GetWAFLogs(ctx, args)
	case OpGetGuardDutyFindings:
		return tk.GetGuardDutyFindings(ctx, args)
	case OpGetShieldEvents:
		return tk.GetShieldEvents(ctx, args)
	case OpCheckPortReachability:
		return tk.CheckPortReachability(ctx, args)
	case OpRunCommand:
		return tk.RunCommand(ctx, args)
	default:
		return nil, fmt.Errorf("unknown toolkit operation %q", op)
	}
}

// ToolFunc is a single pluggable diagnostic operation.
type ToolFunc func(ctx context.Context, args model.Args) (model.Payload, error)

// FuncToolkit implements Toolkit from individual functions. Nil fields
// report ErrMissingTool, so a partially wired toolkit degrades into
// visibility gaps instead of panics. This is the stub of choice in tests.
type FuncToolkit struct {
	GetInstanceStatusFunc     ToolFunc
	CheckSSMManagedFunc       ToolFunc
	GetSecurityGroupsFunc     ToolFunc
	GetNetworkACLsFunc        ToolFunc
	GetRouteTablesFunc        ToolFunc
	GetElasticIPMappingsFunc  ToolFunc
	GetCloudWatchMetricsFunc  ToolFunc
	GetCloudWatchAlarmsFunc   ToolFunc
	GetCloudWatchLogsFunc     ToolFunc
	GetCloudTrailEventsFunc   ToolFunc
	GetWAFLogsFunc            ToolFunc
	GetGuardDutyFindingsFunc  ToolFunc
	GetShieldEventsFunc       ToolFunc
	CheckPortReachabilityFunc ToolFunc
	RunCommandFunc            ToolFunc
}

func call(ctx context.Context, fn ToolFunc, op string, args model.Args) (model.Payload, error) {
	if fn == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingTool)
	}
	return fn(ctx, args)
}

func (f *FuncToolkit) GetInstanceStatus(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetInstanceStatusFunc, OpGetInstanceStatus, args)
}

func (f *FuncToolkit) CheckSSMManaged(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.CheckSSMManagedFunc, OpCheckSSMManaged, args)
}

func (f *FuncToolkit) GetSecurityGroups(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetSecurityGroupsFunc, OpGetSecurityGroups, args)
}

func (f *FuncToolkit) GetNetworkACLs(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetNetworkACLsFunc, OpGetNetworkACLs, args)
}

func (f *FuncToolkit) GetRouteTables(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetRouteTablesFunc, OpGetRouteTables, args)
}

func (f *FuncToolkit) GetElasticIPMappings(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetElasticIPMappingsFunc, OpGetElasticIPMappings, args)
}

func (f *FuncToolkit) GetCloudWatchMetrics(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetCloudWatchMetricsFunc, OpGetCloudWatchMetrics, args)
}

func (f *FuncToolkit) GetCloudWatchAlarms(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetCloudWatchAlarmsFunc, OpGetCloudWatchAlarms, args)
}

func (f *FuncToolkit) GetCloudWatchLogs(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetCloudWatchLogsFunc, OpGetCloudWatchLogs, args)
}

func (f *FuncToolkit) GetCloudTrailEvents(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetCloudTrailEventsFunc, OpGetCloudTrailEvents, args)
}

func (f *FuncToolkit) GetWAFLogs(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetWAFLogsFunc, OpGetWAFLogs, args)
}

func (f *FuncToolkit) GetGuardDutyFindings(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetGuardDutyFindingsFunc, OpGetGuardDutyFindings, args)
}

func (f *FuncToolkit) GetShieldEvents(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.GetShieldEventsFunc, OpGetShieldEvents, args)
}

func (f *FuncToolkit) CheckPortReachability(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.CheckPortReachabilityFunc, OpCheckPortReachability, args)
}

func (f *FuncToolkit) RunCommand(ctx context.Context, args model.Args) (model.Payload, error) {
	return call(ctx, f.RunCommandFunc, OpRunCommand, args)
}

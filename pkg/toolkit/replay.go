package toolkit

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opshound/ec2-rca/pkg/model"
)

// ReplayToolkit serves recorded operation payloads from a YAML fixture.
// It lets an investigation run end-to-end without any cloud access, both
// for demos and for replaying captured incidents.
//
// Fixture format:
//
//	operations:
//	  get_instance_status:
//	    payload:
//	      state: running
//	  get_security_groups:
//	    error: "access denied"
//	  run_command:
//	    responses:
//	      - when: {commands: "nginx"}
//	        payload: {active: false, reason: "exited"}
//	      - when: {commands: "ss -tulpn"}
//	        payload: {listening: true}
//	    payload: {}
//
// A response's when clause matches if, for every key, the stringified
// argument contains the given substring. The first matching response wins;
// the top-level payload/error is the fallback. Operations absent from the
// fixture report ErrMissingTool.
type ReplayToolkit struct {
	ops map[string]replayOp
}

type replayFile struct {
	Operations map[string]replayOp `yaml:"operations"`
}

type replayOp struct {
	Payload   map[string]any   `yaml:"payload"`
	Error     string           `yaml:"error"`
	Responses []replayResponse `yaml:"responses"`
}

type replayResponse struct {
	When    map[string]string `yaml:"when"`
	Payload map[string]any    `yaml:"payload"`
	Error   string            `yaml:"error"`
}

// LoadReplayToolkit reads a replay fixture from path.
func LoadReplayToolkit(path string) (*ReplayToolkit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay fixture: %w", err)
	}
	return ParseReplayToolkit(data)
}

// ParseReplayToolkit builds a ReplayToolkit from raw fixture YAML.
func ParseReplayToolkit(data []byte) (*ReplayToolkit, error) {
	var f replayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse replay fixture: %w", err)
	}
	if len(f.Operations) == 0 {
		return nil, fmt.Errorf("replay fixture declares no operations")
	}
	return &ReplayToolkit{ops: f.Operations}, nil
}

func (r *ReplayToolkit) replay(ctx context.Context, op string, args model.Args) (model.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := r.ops[op]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingTool)
	}
	for _, resp := range entry.Responses {
		if matchesArgs(resp.When, args) {
			if resp.Error != "" {
				return nil, fmt.Errorf("%s: %s", op, resp.Error)
			}
			return model.Payload(resp.Payload), nil
		}
	}
	if entry.Error != "" {
		return nil, fmt.Errorf("%s: %s", op, entry.Error)
	}
	return model.Payload(entry.Payload), nil
}

func matchesArgs(when map[string]string, args model.Args) bool {
	if len(when) == 0 {
		return false
	}
	for key, substr := range when {
		val, ok := args[key]
		if !ok {
			return false
		}
		// Substring match is enough for fixtures; when values are short
		// command fragments, not patterns.
		if !strings.Contains(fmt.Sprint(val), substr) {
			return false
		}
	}
	return true
}

func (r *ReplayToolkit) GetInstanceStatus(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetInstanceStatus, args)
}

func (r *ReplayToolkit) CheckSSMManaged(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpCheckSSMManaged, args)
}

func (r *ReplayToolkit) GetSecurityGroups(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetSecurityGroups, args)
}

func (r *ReplayToolkit) GetNetworkACLs(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetNetworkACLs, args)
}

func (r *ReplayToolkit) GetRouteTables(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetRouteTables, args)
}

func (r *ReplayToolkit) GetElasticIPMappings(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetElasticIPMappings, args)
}

func (r *ReplayToolkit) GetCloudWatchMetrics(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetCloudWatchMetrics, args)
}

func (r *ReplayToolkit) GetCloudWatchAlarms(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetCloudWatchAlarms, args)
}

func (r *ReplayToolkit) GetCloudWatchLogs(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetCloudWatchLogs, args)
}

func (r *ReplayToolkit) GetCloudTrailEvents(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetCloudTrailEvents, args)
}

func (r *ReplayToolkit) GetWAFLogs(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetWAFLogs, args)
}

func (r *ReplayToolkit) GetGuardDutyFindings(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetGuardDutyFindings, args)
}

func (r *ReplayToolkit) GetShieldEvents(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpGetShieldEvents, args)
}

func (r *ReplayToolkit) CheckPortReachability(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpCheckPortReachability, args)
}

func (r *ReplayToolkit) RunCommand(ctx context.Context, args model.Args) (model.Payload, error) {
	return r.replay(ctx, OpRunCommand, args)
}

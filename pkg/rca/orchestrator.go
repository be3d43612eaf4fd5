// Package rca is the single entry point of the investigation engine: it
// composes the plan builder, check executor, and root-cause synthesizer
// behind one Run call.
package rca

import (
	"context"

	"github.com/opshound/ec2-rca/pkg/executor"
	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/planner"
	"github.com/opshound/ec2-rca/pkg/synthesizer"
	"github.com/opshound/ec2-rca/pkg/toolkit"
)

// Orchestrator drives investigations against one bound toolkit. It holds
// no per-run state: Run is safe to call repeatedly and concurrently with
// different problems against the same toolkit instance.
type Orchestrator struct {
	toolkit toolkit.Toolkit
	opts    executor.Options
}

// New creates an orchestrator that executes checks sequentially.
func New(tk toolkit.Toolkit) *Orchestrator {
	return &Orchestrator{toolkit: tk}
}

// NewWithOptions creates an orchestrator with executor tuning, e.g. a
// parallelism cap for independent checks.
func NewWithOptions(tk toolkit.Toolkit, opts executor.Options) *Orchestrator {
	return &Orchestrator{toolkit: tk, opts: opts}
}

// Run performs one investigation: build the plan, execute it, synthesize
// the verdict. The only failures it returns are plan construction and
// dependency cycle errors, both raised before any toolkit call; tool
// failures mid-run degrade into observations and still yield a result.
// Cancelling ctx cuts the run short and returns a partial, synthesized
// result rather than an error.
func (o *Orchestrator) Run(ctx context.Context, problem model.ProblemStatement) (*model.RCAResult, error) {
	plan, err := planner.BuildPlan(problem)
	if err != nil {
		return nil, err
	}
	observations := executor.ExecuteWithOptions(ctx, plan, o.toolkit, o.opts)
	result := synthesizer.Synthesize(problem, observations)
	return &result, nil
}

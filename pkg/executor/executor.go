// Package executor walks a diagnostic plan, invokes each check through the
// toolkit, and normalizes every outcome into an Observation. A failing
// tool is never fatal to the run; it only blocks checks that depend on it.
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/toolkit"
)

// Options tunes plan execution.
type Options struct {
	// Parallelism caps how many independent checks run concurrently.
	// Values below 2 execute the plan strictly sequentially. Regardless
	// of parallelism, the returned observations are always in canonical
	// plan order, so synthesis stays deterministic.
	Parallelism int
}

// Execute runs the plan sequentially. One Observation per CheckSpec, in
// plan order.
func Execute(ctx context.Context, plan []model.CheckSpec, tk toolkit.Toolkit) []model.Observation {
	return ExecuteWithOptions(ctx, plan, tk, Options{})
}

// ExecuteWithOptions runs the plan in dependency-ready waves. Checks in
// the same wave share no dependency edge and may run concurrently; a
// failure in one never aborts its siblings. Cancellation marks every
// not-yet-started check SKIPPED and returns what was gathered so far.
func ExecuteWithOptions(ctx context.Context, plan []model.CheckSpec, tk toolkit.Toolkit, opts Options) []model.Observation {
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]model.Observation, len(plan))
	done := make([]bool, len(plan))
	byName := make(map[string]int, len(plan))
	for i, spec := range plan {
		byName[spec.Name] = i
	}

	for !allDone(done) {
		wave := readyWave(plan, done, byName)
		if len(wave) == 0 {
			// Unsatisfiable dependencies should have been rejected at
			// plan-build time; refuse to spin instead of trusting that.
			for i, spec := range plan {
				if !done[i] {
					results[i] = skipped(spec, "unsatisfiable prerequisite ordering")
					done[i] = true
				}
			}
			break
		}

		var g errgroup.Group
		g.SetLimit(parallelism)
		for _, idx := range wave {
			spec := plan[idx]
			g.Go(func() error {
				results[idx] = runCheck(ctx, spec, tk, results, byName)
				return nil
			})
		}
		// Workers only record observations, never errors.
		_ = g.Wait()
		for _, idx := range wave {
			done[idx] = true
		}
	}

	return results
}

// readyWave returns the plan indices whose prerequisites have all
// completed, in plan order.
func readyWave(plan []model.CheckSpec, done []bool, byName map[string]int) []int {
	var wave []int
	for i, spec := range plan {
		if done[i] {
			continue
		}
		ready := true
		for _, dep := range spec.Requires {
			depIdx, ok := byName[dep]
			if !ok || !done[depIdx] {
				ready = false
				break
			}
		}
		if ready {
			wave = append(wave, i)
		}
	}
	return wave
}

// runCheck produces the single Observation for spec: skipped when a
// prerequisite yielded no usable signal or the run was cancelled, failed
// when the tool errors, otherwise classified OK or ANOMALY.
func runCheck(ctx context.Context, spec model.CheckSpec, tk toolkit.Toolkit, results []model.Observation, byName map[string]int) model.Observation {
	for _, dep := range spec.Requires {
		depObs := results[byName[dep]]
		if !depObs.Status.Usable() {
			return skipped(spec, fmt.Sprintf("prerequisite %q did not produce a usable signal (status %s)", dep, depObs.Status))
		}
	}

	if err := ctx.Err(); err != nil {
		return skipped(spec, "investigation cancelled before this check started")
	}

	payload, err := toolkit.Invoke(ctx, tk, spec.Operation, spec.Args)
	if err != nil {
		return model.Observation{
			CheckName: spec.Name,
			Layer:     spec.Layer,
			Status:    model.StatusFailedToRun,
			Payload:   model.Payload{},
			Note:      fmt.Sprintf("%s failed: %v", spec.Operation, err),
		}
	}

	status := model.StatusOK
	note := fmt.Sprintf("%s returned %d fact(s)", spec.Operation, len(payload))
	if spec.Classify != nil {
		anomalous, verdict := spec.Classify(payload)
		if anomalous {
			status = model.StatusAnomaly
		}
		if verdict != "" {
			note = verdict
		}
	}
	return model.Observation{
		CheckName: spec.Name,
		Layer:     spec.Layer,
		Status:    status,
		Payload:   payload,
		Note:      note,
	}
}

func skipped(spec model.CheckSpec, note string) model.Observation {
	return model.Observation{
		CheckName: spec.Name,
		Layer:     spec.Layer,
		Status:    model.StatusSkipped,
		Note:      note,
	}
}

func allDone(done []bool) bool {
	for _, d := range done {
		if !d {
			return false
		}
	}
	return true
}

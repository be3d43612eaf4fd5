// Package planner turns a problem statement into an ordered diagnostic
// plan over a fixed check catalog. Ordering is deterministic: the layer
// funnel first, declared dependencies second, catalog declaration order
// last. Downstream evidence ordering depends on this being reproducible.
package planner

import (
	"sort"

	"github.com/opshound/ec2-rca/pkg/model"
)

// BuildPlan selects and orders the catalog checks applicable to problem.
// Checks requiring a field the problem lacks (the port) are omitted
// entirely, not included-then-skipped. Returns PlanConstructionError when
// no check can be built at all and DependencyCycleError when the catalog
// declares a cyclic dependency.
func BuildPlan(problem model.ProblemStatement) ([]model.CheckSpec, error) {
	if problem.InstanceID == "" {
		return nil, &PlanConstructionError{Field: "instance_id", Reason: "required to build any check"}
	}

	selected := make([]catalogEntry, 0, len(catalog))
	included := make(map[string]bool, len(catalog))
	for _, entry := range catalog {
		if entry.needsPort && !problem.HasPort() {
			continue
		}
		selected = append(selected, entry)
		included[entry.name] = true
	}

	// Funnel order first, catalog declaration order as the stable
	// tie-break inside a layer.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].layer.Rank() < selected[j].layer.Rank()
	})

	specs := make([]model.CheckSpec, 0, len(selected))
	for _, entry := range selected {
		// Edges to checks omitted by field filtering are dropped with
		// them; edges to names not in the catalog at all are authoring
		// bugs.
		requires := make([]string, 0, len(entry.requires))
		for _, dep := range entry.requires {
			if included[dep] {
				requires = append(requires, dep)
				continue
			}
			if !catalogHas(dep) {
				return nil, &PlanConstructionError{Field: "catalog", Reason: "check " + entry.name + " requires unknown check " + dep}
			}
		}
		specs = append(specs, model.CheckSpec{
			Name:      entry.name,
			Layer:     entry.layer,
			Operation: entry.operation,
			Args:      entry.args(problem),
			Requires:  requires,
			Rationale: entry.rationale,
			Classify:  entry.classify(problem),
		})
	}

	return topoSort(specs)
}

func catalogHas(name string) bool {
	for _, entry := range catalog {
		if entry.name == name {
			return true
		}
	}
	return false
}

// topoSort emits specs in dependency order, preserving the incoming
// (layer, declaration) order among checks whose dependencies are already
// satisfied. Kahn-style greedy scan; the plan is small enough that the
// quadratic walk is irrelevant.
func topoSort(specs []model.CheckSpec) ([]model.CheckSpec, error) {
	emitted := make(map[string]bool, len(specs))
	ordered := make([]model.CheckSpec, 0, len(specs))
	remaining := append([]model.CheckSpec(nil), specs...)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, spec := range remaining {
			if depsEmitted(spec, emitted) {
				ordered = append(ordered, spec)
				emitted[spec.Name] = true
				progress = true
			} else {
				next = append(next, spec)
			}
		}
		if !progress {
			stuck := make([]string, len(next))
			for i, spec := range next {
				stuck[i] = spec.Name
			}
			return nil, &DependencyCycleError{Checks: stuck}
		}
		remaining = next
	}
	return ordered, nil
}

func depsEmitted(spec model.CheckSpec, emitted map[string]bool) bool {
	for _, dep := range spec.Requires {
		if !emitted[dep] {
			return false
		}
	}
	return true
}

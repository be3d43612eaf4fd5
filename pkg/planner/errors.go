package planner

import (
	"fmt"
	"strings"
)

// PlanConstructionError means the problem statement (or catalog wiring) is
// missing something required to build any plan at all. It surfaces to the
// caller before a single toolkit call is made.
type PlanConstructionError struct {
	Field  string
	Reason string
}

func (e *PlanConstructionError) Error() string {
	return fmt.Sprintf("cannot build plan: %s: %s", e.Field, e.Reason)
}

// DependencyCycleError means the check catalog declares a cyclic
// dependency. This is a catalog authoring bug, detected at plan-build time
// and never silently truncated.
type DependencyCycleError struct {
	Checks []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("check catalog contains a dependency cycle involving: %s",
		strings.Join(e.Checks, ", "))
}

package planner

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshound/ec2-rca/pkg/model"
)

func testProblem(port int) model.ProblemStatement {
	return model.ProblemStatement{
		InstanceID: "i-0123456789abcdef0",
		Region:     "us-east-1",
		Symptom:    "Website on port 8080 is down",
		StartTime:  "2025-01-01T00:00:00Z",
		Port:       port,
	}
}

func planNames(plan []model.CheckSpec) []string {
	names := make([]string, len(plan))
	for i, spec := range plan {
		names[i] = spec.Name
	}
	return names
}

func TestBuildPlanDeterministic(t *testing.T) {
	first, err := BuildPlan(testProblem(8080))
	require.NoError(t, err)
	second, err := BuildPlan(testProblem(8080))
	require.NoError(t, err)

	// Classification closures are not comparable; everything else must be
	// identical in order and content.
	diff := cmp.Diff(first, second, cmpopts.IgnoreFields(model.CheckSpec{}, "Classify"))
	assert.Empty(t, diff)
}

func TestBuildPlanOmitsPortChecksWithoutPort(t *testing.T) {
	plan, err := BuildPlan(testProblem(0))
	require.NoError(t, err)

	names := planNames(plan)
	assert.NotContains(t, names, CheckPortReachability)
	assert.NotContains(t, names, CheckPortListener)
	assert.NotContains(t, names, CheckHostFirewall)

	withPort, err := BuildPlan(testProblem(8080))
	require.NoError(t, err)
	portNames := planNames(withPort)
	assert.Contains(t, portNames, CheckPortReachability)
	assert.Contains(t, portNames, CheckPortListener)
	assert.Contains(t, portNames, CheckHostFirewall)
	assert.Len(t, withPort, len(plan)+3)
}

func TestBuildPlanFollowsLayerFunnel(t *testing.T) {
	plan, err := BuildPlan(testProblem(8080))
	require.NoError(t, err)

	lastRank := -1
	for _, spec := range plan {
		rank := spec.Layer.Rank()
		assert.GreaterOrEqual(t, rank, lastRank, "layer order regressed at check %s", spec.Name)
		lastRank = rank
	}
}

func TestBuildPlanPrerequisitesPrecedeDependents(t *testing.T) {
	plan, err := BuildPlan(testProblem(8080))
	require.NoError(t, err)

	position := make(map[string]int, len(plan))
	for i, spec := range plan {
		position[spec.Name] = i
	}
	for _, spec := range plan {
		for _, dep := range spec.Requires {
			depPos, ok := position[dep]
			require.True(t, ok, "check %s requires %s which is not in the plan", spec.Name, dep)
			assert.Less(t, depPos, position[spec.Name], "%s must precede %s", dep, spec.Name)
		}
	}
}

func TestBuildPlanPortArgsParameterized(t *testing.T) {
	plan, err := BuildPlan(testProblem(9090))
	require.NoError(t, err)

	for _, spec := range plan {
		if spec.Name == CheckPortReachability {
			assert.Equal(t, 9090, spec.Args["port"])
			return
		}
	}
	t.Fatalf("port-reachability missing from plan")
}

func TestBuildPlanMissingInstanceID(t *testing.T) {
	_, err := BuildPlan(model.ProblemStatement{Symptom: "down"})
	require.Error(t, err)

	var planErr *PlanConstructionError
	require.True(t, errors.As(err, &planErr))
	assert.Equal(t, "instance_id", planErr.Field)
}

func TestTopoSortDetectsCycle(t *testing.T) {
	specs := []model.CheckSpec{
		{Name: "a", Layer: model.LayerAWS, Requires: []string{"b"}},
		{Name: "b", Layer: model.LayerAWS, Requires: []string{"a"}},
	}

	_, err := topoSort(specs)
	require.Error(t, err)

	var cycleErr *DependencyCycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Checks)
}

func TestTopoSortKeepsStableOrderForIndependentChecks(t *testing.T) {
	specs := []model.CheckSpec{
		{Name: "first", Layer: model.LayerAWS},
		{Name: "second", Layer: model.LayerAWS},
		{Name: "third", Layer: model.LayerAWS},
	}

	ordered, err := topoSort(specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, planNames(ordered))
}

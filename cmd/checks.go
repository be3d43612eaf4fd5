package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/planner"
)

var checksPort int

func NewChecksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Print the diagnostic plan the planner would build",
		Long: `Show the ordered check plan for a representative problem statement.
Port-specific checks only appear when --port is given, mirroring how the
planner omits them for portless investigations.`,
		Args: cobra.NoArgs,
		RunE: runChecks,
	}

	cmd.Flags().IntVar(&checksPort, "port", 0, "Affected port to include port-specific checks")

	return cmd
}

func runChecks(cmd *cobra.Command, args []string) error {
	plan, err := planner.BuildPlan(model.ProblemStatement{
		InstanceID: "i-0123456789abcdef0",
		Region:     "us-east-1",
		Symptom:    "catalog preview",
		Port:       checksPort,
	})
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	var currentLayer model.Layer
	for i, spec := range plan {
		if spec.Layer != currentLayer {
			currentLayer = spec.Layer
			fmt.Println()
			cyan.Printf("%s\n", currentLayer)
		}
		fmt.Printf("  %2d. %-20s op=%s", i+1, spec.Name, spec.Operation)
		if len(spec.Requires) > 0 {
			fmt.Printf("  requires=%s", strings.Join(spec.Requires, ","))
		}
		fmt.Println()
		fmt.Printf("      %s\n", color.HiBlackString(spec.Rationale))
	}
	fmt.Println()
	return nil
}

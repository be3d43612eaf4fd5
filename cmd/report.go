package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opshound/ec2-rca/pkg/formatter"
	"github.com/opshound/ec2-rca/pkg/model"
)

var reportOutputFormat string

func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report RESULT.json",
		Short: "Re-render a persisted investigation result",
		Long: `Load an RCAResult previously saved with 'investigate -o json' and render
it again. Rendering is pure formatting: the same result file always
produces identical output.

Examples:
  ec2-rca investigate "site down" --instance-id i-0abc --fixture f.yaml -o json > result.json
  ec2-rca report result.json -o markdown`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	cmd.Flags().StringVarP(&reportOutputFormat, "output", "o", "markdown", "Output format (human, json, yaml, markdown)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read result file: %w", err)
	}

	var result model.RCAResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse result file: %w", err)
	}

	return formatter.DisplayResult(&result, reportOutputFormat)
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/opshound/ec2-rca/pkg/config"
	"github.com/opshound/ec2-rca/pkg/executor"
	"github.com/opshound/ec2-rca/pkg/formatter"
	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/rca"
	"github.com/opshound/ec2-rca/pkg/report"
	"github.com/opshound/ec2-rca/pkg/toolkit"
)

var (
	instanceID   string
	region       string
	port         int
	startTime    string
	environment  string
	description  string
	knownChanges []string
	fixturePath  string
	parallelism  int
	outputFormat string
	configPath   string
	reportPath   string
)

func NewInvestigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "investigate SYMPTOM",
		Short: "Run a root-cause investigation for a failing service",
		Long: `Build a layered diagnostic plan for the given symptom, execute it
through the bound toolkit, and print the synthesized root cause.

Examples:
  # Investigate a down website, replaying recorded diagnostics
  ec2-rca investigate "Website on port 8080 is down" \
    --instance-id i-0123456789abcdef0 --port 8080 --fixture incident.yaml

  # Same, with concurrent independent checks and a Markdown report
  ec2-rca investigate "API returns 502" \
    --instance-id i-0abc --fixture incident.yaml --parallelism 4 \
    --report-file rca.md`,
		Args: cobra.ExactArgs(1),
		RunE: runInvestigate,
	}

	cmd.Flags().StringVar(&instanceID, "instance-id", "", "EC2 instance to investigate (required)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region of the instance")
	cmd.Flags().IntVar(&port, "port", 0, "Affected application port (omitted checks stay out of the plan)")
	cmd.Flags().StringVar(&startTime, "start-time", "", "Observation window start (ISO-8601)")
	cmd.Flags().StringVar(&environment, "env", "", "Environment label for the report (e.g. production)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text details beyond the symptom")
	cmd.Flags().StringSliceVar(&knownChanges, "known-change", nil, "Recent change to note in the report (repeatable)")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Replay fixture YAML supplying toolkit payloads")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Max concurrent independent checks (default sequential)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format (human, json, yaml, markdown)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file with investigation defaults")
	cmd.Flags().StringVar(&reportPath, "report-file", "", "Also write the Markdown report to this file")

	return cmd
}

func runInvestigate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags win over config file values.
	if region == "" {
		region = cfg.Region
	}
	if outputFormat == "" {
		outputFormat = cfg.Output
	}
	if fixturePath == "" {
		fixturePath = cfg.Fixture
	}
	if parallelism == 0 {
		parallelism = cfg.Parallelism
	}
	if reportPath == "" {
		reportPath = cfg.ReportPath
	}

	if instanceID == "" {
		return fmt.Errorf("--instance-id is required")
	}
	if fixturePath == "" {
		return fmt.Errorf("no toolkit bound: provide a replay fixture with --fixture (or in the config file)")
	}

	problem := model.ProblemStatement{
		InstanceID:   instanceID,
		Region:       region,
		Symptom:      args[0],
		Description:  description,
		Environment:  environment,
		StartTime:    startTime,
		Port:         port,
		KnownChanges: knownChanges,
	}

	printHeader(problem)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Loading replay fixture..."
	s.Start()

	tk, err := toolkit.LoadReplayToolkit(fixturePath)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to load fixture: %w", err)
	}
	s.Stop()
	printSuccess("Toolkit bound from " + fixturePath)

	s.Suffix = " Executing diagnostic plan..."
	s.Start()

	orchestrator := rca.NewWithOptions(tk, executor.Options{Parallelism: parallelism})
	result, err := orchestrator.Run(cmd.Context(), problem)
	if err != nil {
		s.Stop()
		return fmt.Errorf("investigation failed: %w", err)
	}

	s.Stop()
	printSuccess(fmt.Sprintf("Executed %d checks", len(result.Observations)))

	if err := formatter.DisplayResult(result, outputFormat); err != nil {
		return err
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(report.Render(*result)), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		printSuccess("Report written to " + reportPath)
	}

	return nil
}

func printHeader(problem model.ProblemStatement) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("EC2 Root Cause Analyzer")
	fmt.Printf("Symptom:  %s\n", problem.Symptom)
	fmt.Printf("Instance: %s (%s)\n", problem.InstanceID, problem.Region)
	if problem.HasPort() {
		fmt.Printf("Port:     %d\n", problem.Port)
	}
	if problem.StartTime != "" {
		fmt.Printf("Since:    %s\n", problem.StartTime)
	}
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("+ %s\n", msg)
}

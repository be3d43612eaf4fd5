package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/opshound/ec2-rca/pkg/model"
	"github.com/opshound/ec2-rca/pkg/report"
)

// DisplayResult formats and displays an investigation result.
func DisplayResult(result *model.RCAResult, format string) error {
	switch format {
	case "json":
		return displayJSON(result)
	case "yaml":
		return displayYAML(result)
	case "markdown":
		fmt.Println(report.Render(*result))
		return nil
	case "human":
		fallthrough
	default:
		displayHuman(result)
	}
	return nil
}

func displayJSON(result *model.RCAResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayYAML(result *model.RCAResult) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayHuman(result *model.RCAResult) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Println()

	red.Println("ROOT CAUSE:")
	fmt.Printf("   %s\n\n", result.RootCause)

	confidenceColor(result.Confidence).Printf("CONFIDENCE: %s\n\n", result.Confidence)

	if len(result.Evidence) > 0 && result.Confidence != model.ConfidenceInconclusive {
		yellow.Println("EVIDENCE:")
		for i, obs := range result.Evidence {
			fmt.Printf("   %d. [%s/%s] %s\n", i+1, obs.Layer, obs.Status, obs.Note)
		}
		fmt.Println()
	}

	cyan.Println("CHECKS:")
	for _, obs := range result.Observations {
		fmt.Printf("   %s %-20s %s\n", statusGlyph(obs.Status), obs.CheckName, obs.Note)
	}
	fmt.Println()

	if len(result.DataGaps) > 0 {
		yellow.Println("DATA GAPS:")
		for _, gap := range result.DataGaps {
			fmt.Printf("   - %s\n", gap)
		}
		fmt.Println()
	}

	if len(result.CorrectiveActions) > 0 {
		white.Println("NEXT STEPS:")
		for i, action := range result.CorrectiveActions {
			fmt.Printf("   %d. %s\n", i+1, action)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("%s\n", color.HiBlackString("Run with -o json, -o yaml or -o markdown for machine-readable output"))
}

func confidenceColor(confidence model.Confidence) *color.Color {
	switch confidence {
	case model.ConfidenceHigh:
		return color.New(color.FgGreen, color.Bold)
	case model.ConfidenceMedium:
		return color.New(color.FgYellow, color.Bold)
	case model.ConfidenceLow:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}

func statusGlyph(status model.Status) string {
	switch status {
	case model.StatusOK:
		return color.GreenString("ok  ")
	case model.StatusAnomaly:
		return color.RedString("anom")
	case model.StatusFailedToRun:
		return color.YellowString("fail")
	case model.StatusSkipped:
		return color.HiBlackString("skip")
	default:
		return "    "
	}
}

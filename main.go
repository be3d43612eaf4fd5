package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opshound/ec2-rca/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ec2-rca",
		Short: "Automated root-cause analysis for EC2-hosted services",
		Long: `ec2-rca plans and executes a layered diagnostic investigation for a
failing service on an EC2 instance and synthesizes the most likely root
cause with its supporting evidence.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewInvestigateCmd(),
		cmd.NewReportCmd(),
		cmd.NewChecksCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ec2-rca version %s\n", version)
		},
	}
}

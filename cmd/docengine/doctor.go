package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/repohealth"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Scan registered repositories for health issues",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := newOutput()

	registry, err := openRegistry()
	if err != nil {
		return fmt.Errorf("failed to open repository registry: %w", err)
	}

	checker := repohealth.NewChecker(registry)
	issues, err := checker.CheckAll()
	if err != nil {
		return fmt.Errorf("doctor scan failed: %w", err)
	}

	out.Issues(issues)
	return nil
}

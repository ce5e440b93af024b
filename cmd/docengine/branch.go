package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/branch"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Inspect and switch branches",
}

var branchListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List local and remote branches",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchList,
}

var branchCurrentCmd = &cobra.Command{
	Use:   "current <project-id>",
	Short: "Print the current branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranchCurrent,
}

var branchSwitchCmd = &cobra.Command{
	Use:   "switch <project-id> <branch>",
	Short: "Switch to another branch",
	Args:  cobra.ExactArgs(2),
	RunE:  runBranchSwitch,
}

func init() {
	branchCmd.AddCommand(branchListCmd)
	branchCmd.AddCommand(branchCurrentCmd)
	branchCmd.AddCommand(branchSwitchCmd)
}

func runBranchList(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	coord := branch.New(client, docsBranchFor(repo))
	descriptors, err := coord.ListBranches()
	if err != nil {
		return fmt.Errorf("failed to list branches: %w", err)
	}

	if out.IsJSON() {
		out.JSON(map[string]interface{}{"branches": descriptors})
		return nil
	}

	for _, d := range descriptors {
		marker := " "
		if d.IsCurrent {
			marker = "*"
		}
		origin := "local"
		if d.IsRemote {
			origin = "remote"
		}
		fmt.Printf("%s %-30s %s\n", marker, d.Name, origin)
	}
	return nil
}

func runBranchCurrent(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	coord := branch.New(client, docsBranchFor(repo))
	current, err := coord.CurrentBranch()
	if err != nil {
		return err
	}

	if out.IsJSON() {
		out.JSON(map[string]interface{}{"branch": current})
		return nil
	}
	out.Info(current)
	return nil
}

func runBranchSwitch(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	coord := branch.New(client, docsBranchFor(repo))
	if err := coord.SwitchBranch(args[1]); err != nil {
		return err
	}

	out.Successf("switched to %s", args[1])
	return nil
}

// Command docengine is the CLI front end for the Document Repository
// Engine: project registration, document read/write, branch management,
// upstream sync, and repository health diagnostics.
//
// Grounded on the teacher's cmd/githelper layout: a Cobra root command with
// global --format/--no-color/--quiet/--verbose flags, a PersistentPreRunE
// git-version gate, and one file per subcommand group.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/gitcli"
	"github.com/lcgerke/docengine/internal/remediation"
)

var (
	format  string
	noColor bool
	quiet   bool
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "docengine",
		Short: "Project-scoped, Git-backed document repository engine",
		Long: `docengine manages project document repositories backed by Git: branch-aware
commits, upstream sync with rebase, worktree propagation, and per-repository
concurrency control.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := gitcli.CheckGitVersion(); err != nil {
				return fmt.Errorf("git check failed: %w", err)
			}
			if err := gitcli.NewClient("").ValidateGitVersion(); err != nil {
				return fmt.Errorf("git check failed: %w", err)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Output format (human|json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(doctorCmd)
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint, ok := remediation.ForError(err); ok {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint.Description)
			if hint.Command != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", hint.Command)
			}
		}
		os.Exit(1)
	}
}

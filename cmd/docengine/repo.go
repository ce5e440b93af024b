package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/reporegistry"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage registered document repositories",
	Long:  "Register, list, and deregister the document repositories this engine manages.",
}

var (
	repoRegisterWorktree string
	repoRegisterUpstream string
	repoRegisterRemote   string
	repoRegisterBranch   string
)

var repoRegisterCmd = &cobra.Command{
	Use:   "register <project-id>",
	Short: "Register a project's document repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoRegister,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered repositories",
	RunE:  runRepoList,
}

var repoDeregisterCmd = &cobra.Command{
	Use:   "deregister <project-id>",
	Short: "Remove a project from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoDeregister,
}

func init() {
	repoRegisterCmd.Flags().StringVar(&repoRegisterWorktree, "worktree", "", "Path to the repository worktree (required)")
	repoRegisterCmd.Flags().StringVar(&repoRegisterUpstream, "upstream-url", "", "Upstream remote URL")
	repoRegisterCmd.Flags().StringVar(&repoRegisterRemote, "remote", "origin", "Upstream remote name")
	repoRegisterCmd.Flags().StringVar(&repoRegisterBranch, "docs-branch", "main", "Docs branch name")
	repoRegisterCmd.MarkFlagRequired("worktree")

	repoCmd.AddCommand(repoRegisterCmd)
	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoDeregisterCmd)
}

func runRepoRegister(cmd *cobra.Command, args []string) error {
	out := newOutput()
	projectID := args[0]

	registry, err := openRegistry()
	if err != nil {
		return fmt.Errorf("failed to open repository registry: %w", err)
	}

	repo := reporegistry.Repository{
		ProjectID:      projectID,
		WorktreePath:   repoRegisterWorktree,
		UpstreamURL:    repoRegisterUpstream,
		UpstreamRemote: repoRegisterRemote,
		DocsBranch:     repoRegisterBranch,
	}
	if err := registry.Register(repo); err != nil {
		return fmt.Errorf("failed to register %s: %w", projectID, err)
	}

	out.Successf("registered %s at %s", projectID, repoRegisterWorktree)
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	out := newOutput()

	registry, err := openRegistry()
	if err != nil {
		return fmt.Errorf("failed to open repository registry: %w", err)
	}

	repos, err := registry.List()
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if len(repos) == 0 {
		if out.IsJSON() {
			out.JSON(map[string]interface{}{"repositories": []interface{}{}})
		} else {
			out.Info("No repositories registered.")
			out.Info("Register one with: docengine repo register <project-id> --worktree <path>")
		}
		return nil
	}

	if out.IsJSON() {
		out.JSON(map[string]interface{}{"repositories": repos})
		return nil
	}

	out.Header("Registered Repositories")
	for _, repo := range repos {
		fmt.Printf("%s\n", repo.ProjectID)
		fmt.Printf("   Worktree:  %s\n", repo.WorktreePath)
		fmt.Printf("   Upstream:  %s (%s)\n", repo.UpstreamURL, repo.UpstreamRemote)
		fmt.Printf("   Branch:    %s\n", repo.DocsBranch)
		if repo.LastSync != "" {
			fmt.Printf("   LastSync:  %s\n", repo.LastSync)
		}
		fmt.Println()
	}
	out.Separator()
	out.Infof("Total: %d repositories", len(repos))
	return nil
}

func runRepoDeregister(cmd *cobra.Command, args []string) error {
	out := newOutput()
	projectID := args[0]

	registry, err := openRegistry()
	if err != nil {
		return fmt.Errorf("failed to open repository registry: %w", err)
	}

	if err := registry.Deregister(projectID); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", projectID, err)
	}

	out.Successf("deregistered %s", projectID)
	return nil
}

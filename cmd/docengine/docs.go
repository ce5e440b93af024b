package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/commit"
	"github.com/lcgerke/docengine/internal/docindex"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Read and write documents in a repository",
}

var docsListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List documents in a project's repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsList,
}

var docsGetCmd = &cobra.Command{
	Use:   "get <project-id> <path>",
	Short: "Print a document's content",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsGet,
}

var docsWriteCmd = &cobra.Command{
	Use:   "write <project-id> <path>",
	Short: "Create or update a document from stdin, committing the change",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsWrite,
}

var docsCreateCmd = &cobra.Command{
	Use:   "create <project-id> <path>",
	Short: "Create a new document from stdin, failing if one already exists",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsCreate,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsGetCmd)
	docsCmd.AddCommand(docsWriteCmd)
	docsCmd.AddCommand(docsCreateCmd)
}

func runDocsList(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, _, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	entries, err := docindex.Build(repo.WorktreePath, nil)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if out.IsJSON() {
		out.JSON(map[string]interface{}{"documents": entries})
		return nil
	}

	if len(entries) == 0 {
		out.Info("No documents found.")
		return nil
	}

	out.Header(fmt.Sprintf("Documents in %s", args[0]))
	for _, e := range entries {
		fmt.Printf("%-8s %10d  %s\n", e.FileType, e.SizeBytes, e.RelativePath)
	}
	out.Separator()
	out.Infof("Total: %d documents", len(entries))
	return nil
}

func runDocsGet(cmd *cobra.Command, args []string) error {
	repo, _, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	content, err := docindex.ReadContent(repo.WorktreePath, args[1])
	if err != nil {
		return err
	}

	fmt.Print(content)
	return nil
}

func runDocsWrite(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	engine := commit.New(client, repo.WorktreePath, identityFor(repo), coordinatorFor(repo, client))
	var result commit.Result
	err = sharedEventLog.Track(repo.ProjectID, "docs.write", []string{args[1]}, func() error {
		var writeErr error
		result, writeErr = engine.Write(args[1], content)
		return writeErr
	})
	if err != nil {
		return err
	}

	if out.IsJSON() {
		out.JSON(result)
		return nil
	}

	if result.NoChange {
		out.Info("no change: content identical to existing document")
		return nil
	}
	out.Successf("%s %s (%s)", result.Verb, args[1], result.CommitHash[:minInt(8, len(result.CommitHash))])
	return nil
}

func runDocsCreate(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	engine := commit.New(client, repo.WorktreePath, identityFor(repo), coordinatorFor(repo, client))
	var result commit.Result
	err = sharedEventLog.Track(repo.ProjectID, "docs.create", []string{args[1]}, func() error {
		var createErr error
		result, createErr = engine.CreateFile(args[1], content)
		return createErr
	})
	if err != nil {
		return err
	}

	if out.IsJSON() {
		out.JSON(result)
		return nil
	}

	out.Successf("%s %s (%s)", result.Verb, args[1], result.CommitHash[:minInt(8, len(result.CommitHash))])
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

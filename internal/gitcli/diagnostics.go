package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lcgerke/docengine/internal/constants"
)

// diagnostics.go contains informational, non-mutating checks used by the
// `doctor` CLI command and the engine's startup gate: ValidateGitVersion,
// CheckLFSEnabled, ScanLargeBinaries. None of these is ever invoked by the
// mutating write/sync path — they are purely additive diagnostics, matching
// the teacher's own treatment in internal/git/cli_advanced.go.

// ValidateGitVersion checks the installed git binary meets the engine's
// minimum supported version (spec.md §9 supplemented feature: "Git version
// gate").
func (c *Client) ValidateGitVersion() error {
	output, err := c.run("--version")
	if err != nil {
		return fmt.Errorf("git is not installed: %w", err)
	}

	parts := strings.Fields(output)
	if len(parts) < 3 {
		return fmt.Errorf("unexpected git version output: %s", output)
	}

	versionParts := strings.Split(parts[2], ".")
	if len(versionParts) < 2 {
		return fmt.Errorf("invalid git version format: %s", parts[2])
	}

	major, err := strconv.Atoi(versionParts[0])
	if err != nil {
		return fmt.Errorf("invalid major version: %s", versionParts[0])
	}
	minor, err := strconv.Atoi(versionParts[1])
	if err != nil {
		return fmt.Errorf("invalid minor version: %s", versionParts[1])
	}

	if major < 2 || (major == 2 && minor < 30) {
		return fmt.Errorf("docengine requires Git 2.30.0 or newer (found: %s)", parts[2])
	}
	return nil
}

// CheckGitVersion verifies git is installed and runnable at all, without an
// existing Client (used at process startup before any repository is opened).
func CheckGitVersion() error {
	cmd := exec.Command("git", "--version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("git is not installed or not in PATH: %w", err)
	}
	if !strings.Contains(string(output), "git version") {
		return fmt.Errorf("unexpected git version output: %s", output)
	}
	return nil
}

// CheckLFSEnabled detects whether Git LFS is installed and tracking files.
func (c *Client) CheckLFSEnabled() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	if _, err := c.runWithContext(ctx, "lfs", "version"); err != nil {
		return false, nil
	}
	output, err := c.runWithContext(ctx, "lfs", "ls-files")
	if err != nil {
		return false, nil
	}
	return output != "", nil
}

// LargeBinary describes a blob in the object database exceeding a size
// threshold. Path is intentionally omitted (too expensive to resolve).
type LargeBinary struct {
	SHA1   string
	SizeMB float64
}

// ScanLargeBinaries finds blobs at or above thresholdBytes.
func (c *Client) ScanLargeBinaries(thresholdBytes int64) ([]LargeBinary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultFetchTimeout)
	defer cancel()

	revListOut, err := c.runWithContext(ctx, "rev-list", "--objects", "--all")
	if err != nil {
		return nil, fmt.Errorf("rev-list failed: %w", err)
	}
	if revListOut == "" {
		return []LargeBinary{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := exec.CommandContext(ctx, "git", "cat-file", "--batch-check=%(objectname) %(objecttype) %(objectsize)")
	if c.workdir != "" {
		cmd.Dir = c.workdir
	}
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	cmd.Stdin = strings.NewReader(revListOut)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cat-file failed: %w", err)
	}

	var large []LargeBinary
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 || parts[1] != "blob" {
			continue
		}
		size, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || size < thresholdBytes {
			continue
		}
		large = append(large, LargeBinary{SHA1: parts[0], SizeMB: float64(size) / (1024 * 1024)})
	}

	return large, nil
}

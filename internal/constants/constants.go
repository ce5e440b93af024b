package constants

import "time"

// Remote and branch defaults
const (
	DefaultUpstreamRemote = "origin"
	DefaultDocsBranch     = "main"
	MasterBranch          = "master"
)

// Timeouts for individual git invocations. These bound a single shell-out,
// not a whole operation; lock acquisition has its own timeout (see
// internal/arbiter).
const (
	DefaultFetchTimeout     = 60 * time.Second
	DefaultOperationTimeout = 10 * time.Second
	QuickOperationTimeout   = 5 * time.Second
	BranchOperationTimeout  = 2 * time.Second
)

// DefaultLockTimeout is the default repository-lock acquisition timeout
// (spec.md §5 "Lock acquisition: configurable, default 30 seconds").
const DefaultLockTimeout = 30 * time.Second

// StatusCacheTTL bounds how long branch-list / sync-status memoization may
// be served stale before recomputation (spec.md §5, "≤ 5 seconds"). The
// same bound applies to cached per-project config (docs branch name,
// upstream remote) read from Vault.
const StatusCacheTTL = 5 * time.Second

// CredentialCacheTTL is the credential TTL that config.Manager records.
// Push credentials (SSH key, PAT) are not cached: config.Manager reads them
// from Vault on every request, so this value bounds nothing at present.
const CredentialCacheTTL = 24 * time.Hour

// MaxPathBytes and MaxSegmentBytes are Path Policy length limits (spec.md §4.1).
const (
	MaxPathBytes    = 4096
	MaxSegmentBytes = 255
)

// IgnoredDirs are directory names the Document Index never descends into.
var IgnoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
}

package ports

import (
	"context"

	"odoo-supervisor/internal/types"
)

// RepoStatusPort reports the upstream state of addon repositories via the
// GitHub API.
type RepoStatusPort interface {
	// BranchStatus fetches the head commit of owner/repo at branch.
	// A missing branch is reported with Exists=false, not an error.
	BranchStatus(ctx context.Context, owner string, repo string, branch string) (types.RepoStatus, error)
}

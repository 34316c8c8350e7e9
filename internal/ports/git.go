package ports

import "context"

// GitSourcePort manages the third-party addon checkouts (OCA community
// repositories and the Odoo Enterprise repository).
type GitSourcePort interface {
	// CloneOCA runs oca-clone-everything for the branch inside dir.
	CloneOCA(ctx context.Context, dir string, branch string) error

	// CloneEnterprise clones the Enterprise repository into dir using the
	// given credentials. The token never appears in logs.
	CloneEnterprise(ctx context.Context, dir string, branch string, user string, token string) error

	// PullRecursive fetches and pulls every git checkout found under dir.
	PullRecursive(ctx context.Context, dir string) error
}

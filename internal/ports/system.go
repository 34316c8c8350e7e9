package ports

import (
	"context"

	"odoo-supervisor/internal/types"
)

// OwnershipPort applies filesystem ownership recursively.
type OwnershipPort interface {
	// ChownRecursive sets uid:gid on path and everything below it.
	// Per-entry failures are logged and tolerated; only a missing or
	// unreadable root is an error.
	ChownRecursive(ctx context.Context, path string, uid int, gid int) error
}

// CredentialsPort writes the git and OCA credential material used by the
// clone collaborators.
type CredentialsPort interface {
	// SetupGitHub invokes the credential helper script when user, token
	// and email are all present.
	SetupGitHub(ctx context.Context, user string, token string, email string) error

	// WriteOCAConfig writes oca.cfg in dir. With force false an existing
	// file is left untouched.
	WriteOCAConfig(dir string, settings types.Settings, force bool) error
}

// MarkerPort reads and writes the sentinel file that suppresses
// first-run-only provisioning steps on later invocations.
type MarkerPort interface {
	Exists(path string) bool
	Write(path string, record types.RunRecord) error
	Read(path string) (types.RunRecord, error)
}

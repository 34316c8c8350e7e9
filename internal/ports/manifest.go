package ports

import "odoo-supervisor/internal/types"

// ManifestPort loads addon manifest files. Implementations parse the
// manifest as a literal data structure; executable content is rejected.
type ManifestPort interface {
	// Load parses the manifest at path and extracts the keys the
	// supervisor acts on (depends, external_dependencies.python,
	// installable).
	Load(path string) (types.Manifest, error)
}

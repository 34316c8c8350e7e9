package types

// Addon is one discoverable addon module: a directory holding a manifest
// file. Constructed during a scan pass and immutable afterwards; nothing is
// persisted between runs.
type Addon struct {
	// Root is the directory the scan call found the addon under.
	Root string
	// Path is the absolute path of the addon directory itself.
	Path string
	// Name is the directory basename, unique within one target directory.
	Name string
	// Depends lists addon names declared by the manifest's depends key.
	Depends []string
	// ExternalPython lists Python requirement strings declared under
	// external_dependencies.python, optionally version-qualified.
	ExternalPython []string
	// RequirementsFile is the path of a requirements.txt sitting next to
	// the manifest, empty when the addon ships none.
	RequirementsFile string
}

// Manifest carries the subset of manifest keys the supervisor acts on.
type Manifest struct {
	Depends        []string
	ExternalPython []string
	Installable    bool
}

// ReconcileReport aggregates the per-unit outcomes of one reconciliation
// pass over the target directory.
type ReconcileReport struct {
	Created   int `yaml:"created"`
	Updated   int `yaml:"updated"`
	Skipped   int `yaml:"skipped"`
	Conflicts int `yaml:"conflicts"`
}

// RepoStatus is the GitHub-side state of one addon repository branch.
type RepoStatus struct {
	Owner      string `yaml:"owner"`
	Repo       string `yaml:"repo"`
	Branch     string `yaml:"branch"`
	Exists     bool   `yaml:"exists"`
	CommitSHA  string `yaml:"commit_sha,omitempty"`
	CommitDate string `yaml:"commit_date,omitempty"`
	Message    string `yaml:"message,omitempty"`
}

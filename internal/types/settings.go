package types

// Settings is the merged view of the INI configuration file, environment
// and CLI flag overrides. CLI flags win over file values, file values win
// over built-in defaults.
type Settings struct {
	Branch    string
	SourceDir string
	TargetDir string
	OCADir    string
	EEDir     string
	OdooDir   string
	PyTarget  string
	ExtraDir  string

	// MarkerFile is the sentinel whose existence suppresses first-run
	// provisioning steps.
	MarkerFile string
	// GlobalRequirements is an optional requirements.txt installed before
	// the scan.
	GlobalRequirements string
	// ConfigFile is the path the settings were loaded from.
	ConfigFile string

	Priority []string
	Ignore   []string
	// Excluded holds addon names never recorded as dependencies, the
	// root/base modules a scan should not chase.
	Excluded []string

	ForceUpdate     bool
	UseRequirements bool
	UseOCA          bool
	UseEE           bool
	LinkAll         bool
	Mode            RunMode

	OwnerUID int
	OwnerGID int

	GitHubUser  string
	GitHubToken string
	GitHubEmail string

	OdooUser     string
	OdooPassword string
	AppsUser     string
	AppsPassword string

	// UninstallPackages are Python packages removed before provisioning and
	// filtered out of every requirements install.
	UninstallPackages []string

	// ExplicitOCAAddons and ExplicitAddons install straight via pip into the
	// extra-addons directory, bypassing the scan.
	ExplicitOCAAddons []string
	ExplicitAddons    []string
}

// RunRecord is the marker-file payload. Its mere existence suppresses the
// first-run-only steps; the content exists for operators reading the file.
type RunRecord struct {
	CompletedAt  string          `yaml:"completed_at"`
	ConfigFile   string          `yaml:"config_file"`
	ForceUpdate  bool            `yaml:"force_update"`
	OwnerUID     int             `yaml:"owner_uid"`
	OwnerGID     int             `yaml:"owner_gid"`
	Links        ReconcileReport `yaml:"links"`
	Dependencies int             `yaml:"dependencies"`
	ConfigEcho   []string        `yaml:"config_echo,omitempty"`
}

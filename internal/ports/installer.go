package ports

import "context"

// PipInstallerPort installs and removes Python packages for the addon
// tree. Implementations shell out to pip; callers treat failures per the
// active run mode.
type PipInstallerPort interface {
	// Install installs the given requirement strings into targetDir,
	// skipping requirements already satisfied there.
	Install(ctx context.Context, requirements []string, targetDir string) error

	// InstallRequirementsFile installs from a requirements.txt, dropping
	// any line whose package name is on the suppress list first.
	InstallRequirementsFile(ctx context.Context, path string, targetDir string, suppress []string) error

	// Uninstall removes the given packages where present.
	Uninstall(ctx context.Context, requirements []string) error
}

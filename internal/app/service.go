package app

import (
	"time"

	"odoo-supervisor/internal/adapters"
	"odoo-supervisor/internal/core"
	"odoo-supervisor/internal/ports"
)

// Service wires the scan/reconcile core to its external collaborators.
// Every collaborator sits behind a port so the orchestration logic is
// testable without pip, git or the GitHub API.
type Service struct {
	Scanner     core.Scanner
	Installer   ports.PipInstallerPort
	Git         ports.GitSourcePort
	Ownership   ports.OwnershipPort
	Credentials ports.CredentialsPort
	Marker      ports.MarkerPort
	RepoStatus  func(user string, token string) ports.RepoStatusPort
	Clock       func() time.Time
}

func NewService() Service {
	return Service{
		Scanner:     core.NewScanner(adapters.NewManifestFileAdapter()),
		Installer:   adapters.NewPipInstallerAdapter(),
		Git:         adapters.NewGitSourceAdapter(),
		Ownership:   adapters.NewOwnershipAdapter(),
		Credentials: adapters.NewCredentialsAdapter(),
		Marker:      adapters.NewMarkerFileAdapter(),
		RepoStatus: func(user string, token string) ports.RepoStatusPort {
			return adapters.NewGitHubStatusAdapter(user, token)
		},
		Clock: time.Now,
	}
}

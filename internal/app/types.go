package app

import "odoo-supervisor/internal/types"

type ProvisionRequest struct {
	Settings types.Settings
}

type ProvisionResult struct {
	FirstRun     bool
	Addons       int
	Dependencies int
	Links        types.ReconcileReport
	MarkerFile   string
}

type ScanRequest struct {
	Settings types.Settings
}

type ScanResult struct {
	Addons  []types.Addon
	Depends []string
}

type LinkRequest struct {
	Settings types.Settings
}

type LinkResult struct {
	Addons       int
	Dependencies int
	Links        types.ReconcileReport
}

// RepoRef identifies one repository whose branch status is polled.
type RepoRef struct {
	Owner string
	Repo  string
}

type StatusRequest struct {
	Settings types.Settings
	Repos    []RepoRef
}

type StatusResult struct {
	Statuses []types.RepoStatus
}

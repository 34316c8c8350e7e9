package app

import (
	"context"

	"odoo-supervisor/internal/core"
	"odoo-supervisor/internal/policies"
)

// Scan runs discovery only: no installs, no links, no ownership changes.
// The dry-run view of what provisioning would act on.
func (s Service) Scan(ctx context.Context, request ScanRequest) (ScanResult, error) {
	settings := request.Settings
	result, err := s.Scanner.Scan(ctx, settings.SourceDir, core.ScanOptions{
		Priority: settings.Priority,
		Ignore:   settings.Ignore,
		Excluded: settings.Excluded,
		Rescan:   policies.RescanAll,
	})
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{
		Addons:  result.Addons,
		Depends: sortedNames(result.Depends),
	}, nil
}

// Link scans and reconciles without any of the surrounding provisioning
// steps. Useful after moving a source tree, when only the symlinks need
// healing.
func (s Service) Link(ctx context.Context, request LinkRequest) (LinkResult, error) {
	settings := request.Settings
	scan, err := s.Scanner.Scan(ctx, settings.SourceDir, core.ScanOptions{
		Priority: settings.Priority,
		Ignore:   settings.Ignore,
		Excluded: settings.Excluded,
		Rescan:   policies.RescanAll,
	})
	if err != nil {
		return LinkResult{}, err
	}

	required := scan.Depends
	if settings.LinkAll {
		required = map[string]struct{}{}
		for _, addon := range scan.Addons {
			required[addon.Name] = struct{}{}
		}
	}

	report, err := core.Reconcile(ctx, scan.Addons, required, settings.TargetDir)
	if err != nil {
		return LinkResult{}, err
	}
	return LinkResult{
		Addons:       len(scan.Addons),
		Dependencies: len(scan.Depends),
		Links:        report,
	}, nil
}

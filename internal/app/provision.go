package app

import (
	"context"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/config"
	"odoo-supervisor/internal/core"
	"odoo-supervisor/internal/policies"
	"odoo-supervisor/internal/types"
)

// Provision runs the full deployment flow: first-run setup, third-party
// checkouts, Python dependency installation, the source-tree scan and the
// symlink reconciliation. In init-container mode any collaborator failure
// aborts the run; otherwise failures are logged and the run continues so a
// partially broken tree still gets its links.
func (s Service) Provision(ctx context.Context, request ProvisionRequest) (ProvisionResult, error) {
	logger := log.Ctx(ctx)
	settings := request.Settings
	strict := settings.Mode == types.RunModeInit

	if strict {
		// Init containers must leave a fully prepared volume behind.
		settings.ForceUpdate = true
		settings.UseRequirements = true
	}

	firstRun := !s.Marker.Exists(settings.MarkerFile)
	logger.Info().
		Bool("first_run", firstRun).
		Bool("force_update", settings.ForceUpdate).
		Bool("strict", strict).
		Str("source", settings.SourceDir).
		Str("target", settings.TargetDir).
		Msg("starting provisioning")

	if err := s.prepareFolders(settings); err != nil {
		return ProvisionResult{}, err
	}

	if firstRun || settings.ForceUpdate {
		if err := s.firstRunSetup(ctx, settings, strict); err != nil {
			return ProvisionResult{}, err
		}
	}

	if len(settings.UninstallPackages) > 0 {
		if err := s.Installer.Uninstall(ctx, settings.UninstallPackages); err != nil {
			if failed := tolerate(ctx, strict, err, "package uninstall failed"); failed != nil {
				return ProvisionResult{}, failed
			}
		}
	}

	if err := s.prepareCheckouts(ctx, settings, firstRun, strict); err != nil {
		return ProvisionResult{}, err
	}

	if err := s.installExplicit(ctx, settings, strict); err != nil {
		return ProvisionResult{}, err
	}

	scan, err := s.scanTree(ctx, settings, strict)
	if err != nil {
		return ProvisionResult{}, err
	}
	if len(scan.Addons) == 0 {
		logger.Warn().
			Str("source", settings.SourceDir).
			Msg("no addons found, check the source directory and manifest files")
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
		return ProvisionResult{}, err
	}

	if firstRun || settings.ForceUpdate {
		if err := s.Ownership.ChownRecursive(ctx, settings.OdooDir, settings.OwnerUID, settings.OwnerGID); err != nil {
			if failed := tolerate(ctx, strict, err, "ownership pass failed"); failed != nil {
				return ProvisionResult{}, failed
			}
		}
	}

	record := types.RunRecord{
		CompletedAt:  s.Clock().UTC().Format("2006-01-02T15:04:05Z"),
		ConfigFile:   settings.ConfigFile,
		ForceUpdate:  settings.ForceUpdate,
		OwnerUID:     settings.OwnerUID,
		OwnerGID:     settings.OwnerGID,
		Links:        report,
		Dependencies: len(scan.Depends),
		ConfigEcho:   config.Echo(settings.ConfigFile),
	}
	if err := s.Marker.Write(settings.MarkerFile, record); err != nil {
		if failed := tolerate(ctx, strict, err, "marker write failed"); failed != nil {
			return ProvisionResult{}, failed
		}
	}

	return ProvisionResult{
		FirstRun:     firstRun,
		Addons:       len(scan.Addons),
		Dependencies: len(scan.Depends),
		Links:        report,
		MarkerFile:   settings.MarkerFile,
	}, nil
}

func (s Service) prepareFolders(settings types.Settings) error {
	folders := []string{settings.TargetDir}
	if settings.UseOCA {
		folders = append(folders, settings.OCADir)
	}
	if settings.UseEE {
		folders = append(folders, settings.EEDir)
	}
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (s Service) firstRunSetup(ctx context.Context, settings types.Settings, strict bool) error {
	logger := log.Ctx(ctx)
	logger.Info().Msg("running first-time setup")

	if err := s.Ownership.ChownRecursive(ctx, settings.OdooDir, settings.OwnerUID, settings.OwnerGID); err != nil {
		if failed := tolerate(ctx, strict, err, "initial ownership pass failed"); failed != nil {
			return failed
		}
	}
	if err := s.Credentials.SetupGitHub(ctx, settings.GitHubUser, settings.GitHubToken, settings.GitHubEmail); err != nil {
		if failed := tolerate(ctx, strict, err, "github credentials setup failed"); failed != nil {
			return failed
		}
	}
	if settings.UseOCA {
		if err := s.Credentials.WriteOCAConfig(settings.OCADir, settings, settings.ForceUpdate); err != nil {
			if failed := tolerate(ctx, strict, err, "oca config write failed"); failed != nil {
				return failed
			}
		}
	}
	return nil
}

func (s Service) prepareCheckouts(ctx context.Context, settings types.Settings, firstRun bool, strict bool) error {
	if settings.UseOCA {
		var err error
		if firstRun {
			err = s.Git.CloneOCA(ctx, settings.OCADir, settings.Branch)
		} else if settings.ForceUpdate {
			err = s.Git.PullRecursive(ctx, settings.OCADir)
		}
		if err != nil {
			if failed := tolerate(ctx, strict, err, "oca checkout failed"); failed != nil {
				return failed
			}
		}
	}
	if settings.UseEE {
		var err error
		if firstRun {
			err = s.Git.CloneEnterprise(ctx, settings.EEDir, settings.Branch, settings.GitHubUser, settings.GitHubToken)
		} else if settings.ForceUpdate {
			err = s.Git.PullRecursive(ctx, settings.EEDir)
		}
		if err != nil {
			if failed := tolerate(ctx, strict, err, "enterprise checkout failed"); failed != nil {
				return failed
			}
		}
	}
	return nil
}

func (s Service) installExplicit(ctx context.Context, settings types.Settings, strict bool) error {
	for _, packages := range [][]string{settings.ExplicitOCAAddons, settings.ExplicitAddons} {
		if len(packages) == 0 {
			continue
		}
		filtered := core.FilterSuppressed(packages, settings.UninstallPackages)
		if err := s.Installer.Install(ctx, filtered, settings.ExtraDir); err != nil {
			if failed := tolerate(ctx, strict, err, "explicit addon install failed"); failed != nil {
				return failed
			}
		}
	}
	if settings.GlobalRequirements != "" {
		if _, err := os.Stat(settings.GlobalRequirements); err == nil {
			if err := s.Installer.InstallRequirementsFile(ctx, settings.GlobalRequirements, settings.PyTarget, settings.UninstallPackages); err != nil {
				if failed := tolerate(ctx, strict, err, "global requirements install failed"); failed != nil {
					return failed
				}
			}
		}
	}
	return nil
}

// scanTree runs the scanner with the external-package side channel hooked
// to the pip installer, the way the provisioning flow feeds discovered
// requirements to pip while the walk is still in progress.
func (s Service) scanTree(ctx context.Context, settings types.Settings, strict bool) (core.ScanResult, error) {
	var installErr error
	opts := core.ScanOptions{
		Priority: settings.Priority,
		Ignore:   settings.Ignore,
		Excluded: settings.Excluded,
		Rescan:   policies.RescanAll,
		OnAddon: func(addon types.Addon) {
			if installErr != nil && strict {
				return
			}
			if settings.UseRequirements && addon.RequirementsFile != "" {
				if err := s.Installer.InstallRequirementsFile(ctx, addon.RequirementsFile, settings.PyTarget, settings.UninstallPackages); err != nil {
					log.Ctx(ctx).Error().Str("addon", addon.Name).Err(err).Msg("requirements install failed")
					installErr = err
				}
			}
			if len(addon.ExternalPython) > 0 {
				filtered := core.FilterSuppressed(addon.ExternalPython, settings.UninstallPackages)
				if err := s.Installer.Install(ctx, filtered, settings.PyTarget); err != nil {
					log.Ctx(ctx).Error().Str("addon", addon.Name).Err(err).Msg("external dependency install failed")
					installErr = err
				}
			}
		},
	}
	result, err := s.Scanner.Scan(ctx, settings.SourceDir, opts)
	if err != nil {
		return core.ScanResult{}, err
	}
	if installErr != nil && strict {
		return core.ScanResult{}, installErr
	}
	return result, nil
}

// tolerate implements the propagation policy: strict mode re-raises,
// otherwise the error is logged and swallowed.
func tolerate(ctx context.Context, strict bool, err error, msg string) error {
	if strict {
		return err
	}
	log.Ctx(ctx).Error().Err(err).Msg(msg)
	return nil
}

// sortedNames returns the set's members in a stable order for display.
func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package core

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/policies"
	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/types"
)

// manifestNames are the files whose presence marks a directory as an addon.
// __openerp__.py is the pre-10.0 spelling still shipped by old community
// modules.
var manifestNames = []string{"__manifest__.py", "__openerp__.py"}

const requirementsFileName = "requirements.txt"

// ScanOptions carries the per-call knobs of a scan pass. Everything is an
// explicit parameter; the scanner keeps no process-wide state.
type ScanOptions struct {
	// Priority names sort before everything else in each directory
	// listing. Order among the same priority class is the listing order.
	Priority []string
	// Ignore names are never descended into and never treated as addons
	// (version-control metadata, setup folders).
	Ignore []string
	// Excluded addon names are dropped from the dependency set, used to
	// keep root/base modules from being chased as dependencies.
	Excluded []string
	// Rescan decides whether already-symlinked entries are inspected.
	Rescan policies.RescanPolicy
	// OnAddon, when set, is invoked for every discovered addon during the
	// walk. The app layer uses it to hand external Python requirements to
	// the installer collaborator without coupling it into the scanner.
	OnAddon func(addon types.Addon)
}

// ScanResult is the outcome of one full tree walk.
type ScanResult struct {
	Addons []types.Addon
	// Depends is the union of every addon's direct depends list, minus the
	// excluded names. Single-level on purpose: names pulled in only by a
	// dependency's own manifest are not chased.
	Depends map[string]struct{}
}

// Scanner walks a source tree and discovers addon units by manifest
// presence.
type Scanner struct {
	Manifests ports.ManifestPort
}

func NewScanner(manifests ports.ManifestPort) Scanner {
	return Scanner{Manifests: manifests}
}

// Scan lists root, treats every directory holding a manifest as an addon,
// and recurses into directories without one so addons can live at any
// nesting depth under category folders. A missing or unreadable root is a
// warning, not an error; a malformed manifest skips that one entry and the
// scan continues with its siblings.
func (s Scanner) Scan(ctx context.Context, root string, opts ScanOptions) (ScanResult, error) {
	result := ScanResult{Depends: map[string]struct{}{}}
	if err := s.scanDir(ctx, root, root, opts, &result); err != nil {
		return ScanResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("root", root).
		Int("addons", len(result.Addons)).
		Int("depends", len(result.Depends)).
		Msg("scan complete")
	return result, nil
}

func (s Scanner) scanDir(ctx context.Context, root string, dir string, opts ScanOptions, result *ScanResult) error {
	logger := log.Ctx(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn().Str("dir", dir).Err(err).Msg("addon directory not readable, treating as empty")
		return nil
	}

	ignore := toSet(opts.Ignore)
	priority := toSet(opts.Priority)
	excluded := toSet(opts.Excluded)

	// Priority is a partition, not a total order: prioritized names come
	// first, everything else keeps the listing order.
	sort.SliceStable(entries, func(i, j int) bool {
		_, pi := priority[entries[i].Name()]
		_, pj := priority[entries[j].Name()]
		return pi && !pj
	})

	for _, entry := range entries {
		name := entry.Name()
		if _, skip := ignore[name]; skip {
			continue
		}
		if !opts.Rescan.ShouldInspect(entry.Type()) {
			logger.Debug().Str("entry", name).Msg("skipping symlinked entry per rescan policy")
			continue
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		manifestPath, ok := findManifest(path)
		if !ok {
			// Category folder: addons may sit arbitrarily deep below it.
			if err := s.scanDir(ctx, root, path, opts, result); err != nil {
				return err
			}
			continue
		}

		manifest, err := s.Manifests.Load(manifestPath)
		if err != nil {
			logger.Error().Str("addon", name).Err(err).Msg("skipping addon with malformed manifest")
			continue
		}
		if !manifest.Installable {
			logger.Debug().Str("addon", name).Msg("addon marked not installable")
		}

		addon := types.Addon{
			Root:           dir,
			Path:           path,
			Name:           name,
			Depends:        manifest.Depends,
			ExternalPython: manifest.ExternalPython,
		}
		if reqs := filepath.Join(path, requirementsFileName); fileExists(reqs) {
			addon.RequirementsFile = reqs
		}
		result.Addons = append(result.Addons, addon)
		logger.Debug().Str("addon", name).Str("path", path).Msg("addon discovered")

		for _, dep := range manifest.Depends {
			if _, skip := excluded[dep]; skip {
				continue
			}
			result.Depends[dep] = struct{}{}
		}

		if opts.OnAddon != nil {
			opts.OnAddon(addon)
		}
	}
	return nil
}

func findManifest(dir string) (string, bool) {
	for _, name := range manifestNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

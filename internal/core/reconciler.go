package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/policies"
	"odoo-supervisor/internal/types"
)

// Reconcile makes targetDir's symlinks match the discovered addons that are
// members of the required name set. It only creates and repairs links:
// links for addons no longer required are left alone, since a later run may
// require them again. Not safe to run twice concurrently against the same
// target directory.
func Reconcile(ctx context.Context, addons []types.Addon, required map[string]struct{}, targetDir string) (types.ReconcileReport, error) {
	logger := log.Ctx(ctx)
	report := types.ReconcileReport{}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create target directory").
			WithCause(err)
	}

	for _, addon := range addons {
		if _, ok := required[addon.Name]; !ok {
			continue
		}
		target := filepath.Join(targetDir, addon.Name)
		state, current := linkState(target, addon.Path)

		switch policies.DecideLink(state) {
		case policies.LinkActionCreate:
			if err := os.Symlink(addon.Path, target); err != nil {
				logger.Error().Str("addon", addon.Name).Err(err).Msg("failed to create symlink")
				report.Conflicts++
				continue
			}
			logger.Info().Str("source", addon.Path).Str("target", target).Msg("symlink created")
			report.Created++

		case policies.LinkActionUpdate:
			// Self-healing: a moved source tree corrects the link instead
			// of leaving it dangling.
			if err := os.Remove(target); err != nil {
				logger.Error().Str("addon", addon.Name).Err(err).Msg("failed to remove stale symlink")
				report.Conflicts++
				continue
			}
			if err := os.Symlink(addon.Path, target); err != nil {
				logger.Error().Str("addon", addon.Name).Err(err).Msg("failed to recreate symlink")
				report.Conflicts++
				continue
			}
			logger.Info().Str("target", target).Str("from", current).Str("to", addon.Path).Msg("symlink updated")
			report.Updated++

		default:
			if state == types.LinkStateOccupied {
				logger.Warn().Str("target", target).Msg("target exists and is not a symlink, leaving untouched")
			} else {
				logger.Debug().Str("target", target).Msg("symlink already correct")
			}
			report.Skipped++
		}
	}

	logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("conflicts", report.Conflicts).
		Msg("reconcile complete")
	return report, nil
}

// linkState classifies the target path relative to the wanted source.
// Returns the state and, for links, their current destination.
func linkState(target string, want string) (types.LinkState, string) {
	info, err := os.Lstat(target)
	if err != nil {
		return types.LinkStateAbsent, ""
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return types.LinkStateOccupied, ""
	}
	current, err := os.Readlink(target)
	if err != nil || current != want {
		return types.LinkStateStale, current
	}
	return types.LinkStateCorrect, current
}

package adapters

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/ports"
)

// OwnershipAdapter applies uid:gid recursively. Individual entries that
// refuse the change (bind mounts, sockets) are logged and skipped; only a
// missing root is an error, and callers in non-strict mode swallow even
// that.
type OwnershipAdapter struct{}

func NewOwnershipAdapter() OwnershipAdapter {
	return OwnershipAdapter{}
}

func (a OwnershipAdapter) ChownRecursive(ctx context.Context, path string, uid int, gid int) error {
	logger := log.Ctx(ctx)
	if _, err := os.Stat(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("ownership path does not exist").
			WithCause(err)
	}

	logger.Info().Str("path", path).Int("uid", uid).Int("gid", gid).Msg("changing ownership")
	failures := 0
	err := filepath.WalkDir(path, func(entry string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn().Str("entry", entry).Err(walkErr).Msg("ownership walk error")
			failures++
			return nil
		}
		if err := os.Lchown(entry, uid, gid); err != nil {
			logger.Warn().Str("entry", entry).Err(err).Msg("ownership not updated")
			failures++
		}
		return nil
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("ownership walk failed").
			WithCause(err)
	}
	if failures > 0 {
		logger.Warn().Int("failures", failures).Str("path", path).Msg("ownership pass finished with skipped entries")
	}
	return nil
}

var _ ports.OwnershipPort = OwnershipAdapter{}

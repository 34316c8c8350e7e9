package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/shared"
)

const enterpriseRepo = "github.com/odoo/enterprise.git"

// GitSourceAdapter manages the OCA and Enterprise addon checkouts through
// the git and oca-clone-everything binaries.
type GitSourceAdapter struct{}

func NewGitSourceAdapter() GitSourceAdapter {
	return GitSourceAdapter{}
}

func (a GitSourceAdapter) CloneOCA(ctx context.Context, dir string, branch string) error {
	log.Ctx(ctx).Info().Str("dir", dir).Str("branch", branch).Msg("cloning OCA addon repositories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create OCA directory").
			WithCause(err)
	}
	cmd := exec.CommandContext(ctx, "oca-clone-everything", "--target-branch", branch)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("oca-clone-everything failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

func (a GitSourceAdapter) CloneEnterprise(ctx context.Context, dir string, branch string, user string, token string) error {
	if strings.TrimSpace(user) == "" || strings.TrimSpace(token) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("github credentials missing for enterprise installation")
	}
	log.Ctx(ctx).Info().
		Str("dir", dir).
		Str("branch", branch).
		Str("user", user).
		Msg("cloning enterprise addons")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create enterprise directory").
			WithCause(err)
	}
	url := fmt.Sprintf("https://oauth2:%s@%s", token, enterpriseRepo)
	cmd := exec.CommandContext(ctx, "git", "clone", "--branch", branch, url)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		// The clone URL embeds the token; scrub it before the error can
		// reach a log line.
		scrubbed := strings.ReplaceAll(string(output), token, "***")
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("enterprise clone failed").
			WithCause(shared.CommandError([]byte(scrubbed), err))
	}
	return nil
}

// PullRecursive walks dir looking for git checkouts and runs fetch + pull
// in each. Directories without a .git folder are descended into, so a
// folder of cloned OCA repositories updates in one pass.
func (a GitSourceAdapter) PullRecursive(ctx context.Context, dir string) error {
	logger := log.Ctx(ctx)
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn().Str("dir", dir).Err(err).Msg("git pull path not readable")
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
			if err := a.pull(ctx, path); err != nil {
				return err
			}
			continue
		}
		if err := a.PullRecursive(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (a GitSourceAdapter) pull(ctx context.Context, dir string) error {
	log.Ctx(ctx).Info().Str("dir", dir).Msg("updating git checkout")
	for _, args := range [][]string{{"fetch"}, {"pull"}} {
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = dir
		output, err := cmd.CombinedOutput()
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("git %s failed in %s", args[0], dir)).
				WithCause(shared.CommandError(output, err))
		}
	}
	return nil
}

var _ ports.GitSourcePort = GitSourceAdapter{}

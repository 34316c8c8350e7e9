package adapters

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"

	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/shared"
	"odoo-supervisor/internal/types"
)

const ocaConfigName = "oca.cfg"
const chromedriverPath = "/usr/lib/chromium-browser/chromedriver"

// CredentialsAdapter writes the git credential material the clone
// collaborators need: the github_credentials helper invocation and the
// oca.cfg consumed by oca-clone-everything.
type CredentialsAdapter struct {
	// HelperScript is the credential helper path; setup is skipped when it
	// does not exist.
	HelperScript string
}

func NewCredentialsAdapter() CredentialsAdapter {
	return CredentialsAdapter{HelperScript: "/usr/local/bin/github_credentials.sh"}
}

func (a CredentialsAdapter) SetupGitHub(ctx context.Context, user string, token string, email string) error {
	logger := log.Ctx(ctx)
	if user == "" || token == "" || email == "" {
		logger.Debug().Msg("skipping github credentials setup, parameters missing")
		return nil
	}
	if _, err := os.Stat(a.HelperScript); err != nil {
		logger.Debug().Str("script", a.HelperScript).Msg("credential helper script not present")
		return nil
	}

	logger.Info().Str("user", user).Msg("setting up github credentials")
	cmd := exec.CommandContext(ctx, a.HelperScript, "-u", user, "-t", token, "-e", email)
	output, err := cmd.CombinedOutput()
	if err != nil {
		scrubbed := strings.ReplaceAll(string(output), token, "***")
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("github credentials setup failed").
			WithCause(shared.CommandError([]byte(scrubbed), err))
	}
	return nil
}

func (a CredentialsAdapter) WriteOCAConfig(dir string, settings types.Settings, force bool) error {
	path := filepath.Join(dir, ocaConfigName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	cfg := ini.Empty()
	if _, err := os.Stat(path); err == nil {
		// Preserve sections other tools may have added.
		if loaded, err := ini.Load(path); err == nil {
			cfg = loaded
		}
	}

	github := cfg.Section("GitHub")
	github.Key("username").SetValue(settings.GitHubUser)
	github.Key("token").SetValue(settings.GitHubToken)

	odoo := cfg.Section("odoo")
	odoo.Key("username").SetValue(settings.OdooUser)
	odoo.Key("password").SetValue(settings.OdooPassword)

	apps := cfg.Section("apps.odoo.com")
	apps.Key("username").SetValue(settings.AppsUser)
	apps.Key("password").SetValue(settings.AppsPassword)
	apps.Key("chromedriver_path").SetValue(chromedriverPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create OCA config directory").
			WithCause(err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write oca.cfg").
			WithCause(err)
	}
	return nil
}

var _ ports.CredentialsPort = CredentialsAdapter{}

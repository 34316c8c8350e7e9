// Package config loads the supervisor's INI configuration file and merges
// it with built-in defaults. CLI flag overrides are applied afterwards by
// the cli package, so precedence is flags > file > defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/ini.v1"

	"odoo-supervisor/internal/shared"
	"odoo-supervisor/internal/types"
)

const (
	defaultBranch   = "18.0"
	defaultOptDir   = "/opt/odoo"
	defaultOdooDir  = "/var/lib/odoo"
	defaultPyTarget = "/opt/python3"
	defaultExtraDir = "/mnt/extra-addons"
	defaultUID      = 100
	defaultGID      = 100
)

// defaultIgnore names version-control and scaffolding entries the scanner
// never descends into.
var defaultIgnore = []string{".git", "setup", ".gitignore", ".idea"}

// Defaults builds the built-in settings for the branch taken from
// ODOO_BRANCH (falling back to the current stable series).
func Defaults() types.Settings {
	branch := strings.TrimSpace(os.Getenv("ODOO_BRANCH"))
	if branch == "" {
		branch = defaultBranch
	}
	return types.Settings{
		Branch:             branch,
		SourceDir:          fmt.Sprintf("%s/odoo-%s", defaultOptDir, branch),
		TargetDir:          fmt.Sprintf("%s/.local/share/Odoo/addons/%s", defaultOdooDir, branch),
		OCADir:             defaultOptDir + "/oca",
		EEDir:              defaultOptDir + "/ee",
		OdooDir:            defaultOdooDir,
		PyTarget:           defaultPyTarget,
		ExtraDir:           defaultExtraDir,
		MarkerFile:         defaultOptDir + "/supervisor.yaml",
		GlobalRequirements: "/etc/odoo/requirements.txt",
		Ignore:             append([]string(nil), defaultIgnore...),
		OwnerUID:           defaultUID,
		OwnerGID:           defaultGID,
		Mode:               types.RunModeService,
	}
}

// Load reads the INI configuration file on top of the defaults. A missing
// file is an error; the file is the tool's single positional argument and
// running without one is almost always a deployment mistake.
func Load(path string) (types.Settings, error) {
	settings := Defaults()
	settings.ConfigFile = path

	cfg, err := ini.Load(path)
	if err != nil {
		return types.Settings{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read configuration file").
			WithCause(err)
	}

	global := cfg.Section("global")
	settings.ForceUpdate = global.Key("force_update").MustBool(settings.ForceUpdate)
	settings.UseRequirements = global.Key("use_requirements").MustBool(settings.UseRequirements)

	symlinks := cfg.Section("symlinks")
	if value := symlinks.Key("source_dir").String(); value != "" {
		settings.SourceDir = value
	}
	if value := symlinks.Key("target_dir").String(); value != "" {
		settings.TargetDir = value
	}
	settings.Priority = append(settings.Priority, shared.NormalizeList(symlinks.Key("priority").String())...)
	settings.Excluded = append(settings.Excluded, shared.NormalizeList(symlinks.Key("exclude").String())...)

	github := cfg.Section("github")
	settings.GitHubUser = github.Key("username").String()
	settings.GitHubEmail = github.Key("email").String()
	settings.GitHubToken = github.Key("password").String()

	odoo := cfg.Section("odoo")
	settings.OdooUser = odoo.Key("username").String()
	settings.OdooPassword = odoo.Key("password").String()

	apps := cfg.Section("apps.odoo.com")
	settings.AppsUser = apps.Key("username").String()
	settings.AppsPassword = apps.Key("password").String()

	owner := cfg.Section("owner")
	settings.OwnerUID = owner.Key("uid").MustInt(settings.OwnerUID)
	settings.OwnerGID = owner.Key("gid").MustInt(settings.OwnerGID)

	addons := cfg.Section("addons")
	settings.UseOCA = addons.Key("use_oca").MustBool(settings.UseOCA)
	settings.UseEE = addons.Key("use_ee").MustBool(settings.UseEE)
	settings.ExplicitOCAAddons = shared.NormalizeList(addons.Key("odoo_addons_oca").String())

	uninstall := cfg.Section("uninstall")
	settings.UninstallPackages = shared.NormalizeList(uninstall.Key("python_package").String())

	if err := Validate(context.Background(), settings); err != nil {
		return types.Settings{}, err
	}
	return settings, nil
}

// Validate checks the invariants every run depends on.
func Validate(ctx context.Context, settings types.Settings) error {
	assert.NotEmpty(ctx, settings.Branch, "branch must be set")
	assert.NotEmpty(ctx, settings.OdooDir, "odoo directory must be set")

	if strings.TrimSpace(settings.SourceDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source_dir must not be empty")
	}
	if strings.TrimSpace(settings.TargetDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target_dir must not be empty")
	}
	if settings.OwnerUID < 0 || settings.OwnerGID < 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("owner uid and gid must be non-negative")
	}
	if settings.UseEE && settings.Mode == types.RunModeInit && strings.TrimSpace(settings.GitHubToken) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("enterprise installation requested but github token is missing")
	}
	return nil
}

// Echo renders the effective configuration as "[section]"/"key = value"
// lines with every secret masked, for the run record and verbose logs.
func Echo(path string) []string {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil
	}
	var lines []string
	sections := cfg.Sections()
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name() < sections[j].Name() })
	for _, section := range sections {
		if len(section.Keys()) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s]", section.Name()))
		for _, key := range section.Keys() {
			value := key.Value()
			lower := strings.ToLower(key.Name())
			if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
				value = shared.MaskSecret(value)
			}
			lines = append(lines, fmt.Sprintf("%s = %s", key.Name(), value))
		}
	}
	return lines
}

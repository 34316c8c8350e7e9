package adapters

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"odoo-supervisor/internal/core"
	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/shared"
)

// PipInstallerAdapter installs Python packages through python3 -m pip.
// Requirements already satisfied in the target directory are skipped;
// callers pass the uninstall list as a suppress set so known-bad
// distributions are never reinstalled from a requirements file.
type PipInstallerAdapter struct {
	Python string
}

func NewPipInstallerAdapter() PipInstallerAdapter {
	return PipInstallerAdapter{Python: "python3"}
}

func (a PipInstallerAdapter) Install(ctx context.Context, requirements []string, targetDir string) error {
	logger := log.Ctx(ctx)
	if len(requirements) == 0 {
		logger.Debug().Msg("no packages to install")
		return nil
	}

	installed, err := a.installedVersions(targetDir)
	if err != nil {
		// A fresh target has nothing installed yet; pip list failing on it
		// is not a reason to skip the install.
		logger.Debug().Err(err).Msg("could not list installed packages, assuming none")
		installed = map[string]string{}
	}

	toInstall := filterRequirements(requirements, installed, nil)
	if len(toInstall) == 0 {
		logger.Info().Msg("requirements already satisfied")
		return nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create pip target directory").
			WithCause(err)
	}

	logger.Info().Strs("packages", toInstall).Str("target", targetDir).Msg("installing python packages")
	args := append([]string{"-m", "pip", "install", "--upgrade", "--target", targetDir}, toInstall...)
	return a.runPip(ctx, args)
}

func (a PipInstallerAdapter) InstallRequirementsFile(ctx context.Context, path string, targetDir string, suppress []string) error {
	logger := log.Ctx(ctx)
	if _, err := os.Stat(path); err != nil {
		logger.Warn().Str("path", path).Msg("requirements file not found")
		return nil
	}

	installPath := path
	if len(suppress) > 0 {
		filtered, kept, err := writeFilteredRequirements(path, toNameSet(suppress))
		if err != nil {
			return err
		}
		if filtered != "" {
			defer os.Remove(filtered)
			if kept == 0 {
				logger.Info().Str("path", path).Msg("every requirement is on the uninstall list, nothing to install")
				return nil
			}
			installPath = filtered
		}
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create pip target directory").
			WithCause(err)
	}

	logger.Info().Str("requirements", path).Str("target", targetDir).Msg("installing python requirements")
	return a.runPip(ctx, []string{"-m", "pip", "install", "--upgrade", "--target", targetDir, "-r", installPath})
}

func (a PipInstallerAdapter) Uninstall(ctx context.Context, requirements []string) error {
	logger := log.Ctx(ctx)
	installed, err := a.installedVersions("")
	if err != nil {
		logger.Debug().Err(err).Msg("could not list installed packages")
		installed = map[string]string{}
	}

	var toRemove []string
	for _, raw := range requirements {
		name := shared.NormalizePipName(raw)
		if _, ok := installed[name]; ok {
			toRemove = append(toRemove, raw)
		}
	}
	if len(toRemove) == 0 {
		logger.Info().Msg("no packages to uninstall")
		return nil
	}

	for _, pkg := range toRemove {
		logger.Info().Str("package", pkg).Msg("uninstalling python package")
		if err := a.runPip(ctx, []string{"-m", "pip", "uninstall", "--yes", pkg}); err != nil {
			return err
		}
	}
	return nil
}

func (a PipInstallerAdapter) runPip(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, a.python(), args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip command failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// installedVersions maps normalized package names to versions. An empty
// targetDir queries the interpreter's own environment.
func (a PipInstallerAdapter) installedVersions(targetDir string) (map[string]string, error) {
	args := []string{"-m", "pip", "list", "--format=json"}
	if targetDir != "" {
		args = append(args, "--path", targetDir)
	}
	cmd := exec.Command(a.python(), args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip list failed").
			WithCause(fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err))
	}
	var entries []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pip list output is invalid").
			WithCause(err)
	}
	versions := map[string]string{}
	for _, entry := range entries {
		if name := shared.NormalizePipName(entry.Name); name != "" {
			versions[name] = strings.TrimSpace(entry.Version)
		}
	}
	return versions, nil
}

func (a PipInstallerAdapter) python() string {
	if strings.TrimSpace(a.Python) == "" {
		return "python3"
	}
	return a.Python
}

// filterRequirements keeps the raw requirement strings that still need
// installing: not suppressed, not already satisfied, parseable.
func filterRequirements(requirements []string, installed map[string]string, suppressed map[string]struct{}) []string {
	var out []string
	for _, raw := range requirements {
		req, err := core.ParseRequirement(raw)
		if err != nil {
			continue
		}
		if _, skip := suppressed[req.Name]; skip {
			continue
		}
		if version, ok := installed[req.Name]; ok && req.SatisfiedBy(version) {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// writeFilteredRequirements copies a requirements file to a temp location
// with the suppressed packages removed. Returns the temp path ("" when no
// line was dropped) and how many requirement lines were kept.
func writeFilteredRequirements(path string, suppressed map[string]struct{}) (string, int, error) {
	source, err := os.Open(path)
	if err != nil {
		return "", 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open requirements file").
			WithCause(err)
	}
	defer source.Close()

	var kept []string
	dropped := 0
	keptCount := 0
	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			kept = append(kept, line)
			continue
		}
		req, err := core.ParseRequirement(trimmed)
		if err == nil {
			if _, skip := suppressed[req.Name]; skip {
				dropped++
				continue
			}
		}
		kept = append(kept, line)
		keptCount++
	}
	if err := scanner.Err(); err != nil {
		return "", 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read requirements file").
			WithCause(err)
	}
	if dropped == 0 {
		return "", keptCount, nil
	}

	tmp := filepath.Join(os.TempDir(), "filtered-"+filepath.Base(path))
	if err := os.WriteFile(tmp, []byte(strings.Join(kept, "\n")+"\n"), 0o644); err != nil {
		return "", 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write filtered requirements").
			WithCause(err)
	}
	return tmp, keptCount, nil
}

func toNameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[shared.NormalizePipName(name)] = struct{}{}
	}
	return set
}

var _ ports.PipInstallerPort = PipInstallerAdapter{}

package adapters

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/types"
)

// ManifestFileAdapter parses addon manifest files (__manifest__.py and the
// legacy __openerp__.py). The manifest body is read as a constrained
// literal data structure, never executed. Parsed results are cached by
// modification time since a provisioning run touches many manifests and
// the incremental update path re-reads them.
type ManifestFileAdapter struct {
	mu    sync.Mutex
	cache map[string]manifestCacheEntry
}

func NewManifestFileAdapter() *ManifestFileAdapter {
	return &ManifestFileAdapter{cache: map[string]manifestCacheEntry{}}
}

type manifestCacheEntry struct {
	modTime  time.Time
	manifest types.Manifest
}

func (a *ManifestFileAdapter) Load(path string) (types.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read manifest").
			WithCause(err)
	}
	a.mu.Lock()
	if entry, ok := a.cache[path]; ok && entry.modTime.Equal(info.ModTime()) {
		a.mu.Unlock()
		return entry.manifest, nil
	}
	a.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read manifest").
			WithCause(err)
	}

	value, err := parsePyLiteral(string(content))
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse manifest").
			WithCause(err)
	}
	mapping, ok := value.(map[string]any)
	if !ok {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest is not a mapping")
	}

	manifest := types.Manifest{Installable: true}
	manifest.Depends = stringList(mapping["depends"])
	if installable, ok := mapping["installable"].(bool); ok {
		manifest.Installable = installable
	}
	if external, ok := mapping["external_dependencies"].(map[string]any); ok {
		manifest.ExternalPython = stringList(external["python"])
	}

	a.mu.Lock()
	a.cache[path] = manifestCacheEntry{modTime: info.ModTime(), manifest: manifest}
	a.mu.Unlock()
	return manifest, nil
}

// stringList extracts the non-empty string members of a parsed list,
// tolerating absent keys and ignoring entries of other types.
func stringList(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

var _ ports.ManifestPort = (*ManifestFileAdapter)(nil)

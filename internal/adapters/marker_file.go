package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"odoo-supervisor/internal/ports"
	"odoo-supervisor/internal/types"
)

// MarkerFileAdapter reads and writes the sentinel run record. Existence is
// the contract -- a run with the marker present skips first-time setup --
// and the YAML body is a courtesy to whoever inspects the container.
type MarkerFileAdapter struct{}

func NewMarkerFileAdapter() MarkerFileAdapter {
	return MarkerFileAdapter{}
}

func (a MarkerFileAdapter) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (a MarkerFileAdapter) Write(path string, record types.RunRecord) error {
	content, err := yaml.Marshal(record)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode run record").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create marker directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write marker file").
			WithCause(err)
	}
	return nil
}

func (a MarkerFileAdapter) Read(path string) (types.RunRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.RunRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read marker file").
			WithCause(err)
	}
	var record types.RunRecord
	if err := yaml.Unmarshal(content, &record); err != nil {
		return types.RunRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("marker file is invalid").
			WithCause(err)
	}
	return record, nil
}

var _ ports.MarkerPort = MarkerFileAdapter{}

package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"odoo-supervisor/internal/shared"
)

// opTokens is the ordered list of requirement operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false matches
// (e.g. ">=" before ">").
var opTokens = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}

// Requirement is one Python package requirement, optionally
// version-qualified with a PEP 440 specifier set.
type Requirement struct {
	// Name is the PEP 503 normalized package name.
	Name string
	// Raw is the string as declared in the manifest or requirements file.
	Raw string

	spec    pep440.Specifiers
	hasSpec bool
}

// ParseRequirement splits a raw "name>=version" string into a Requirement.
// A bare name parses to a requirement any installed version satisfies.
func ParseRequirement(raw string) (Requirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty requirement")
	}
	for _, op := range opTokens {
		idx := strings.Index(trimmed, op)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(trimmed[:idx])
		version := strings.TrimSpace(trimmed[idx:])
		if name == "" || version == op {
			return Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid requirement: %s", raw))
		}
		spec, err := pep440.NewSpecifiers(version)
		if err != nil {
			return Requirement{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid version specifier: %s", raw)).
				WithCause(err)
		}
		return Requirement{
			Name:    shared.NormalizePipName(name),
			Raw:     trimmed,
			spec:    spec,
			hasSpec: true,
		}, nil
	}
	return Requirement{
		Name: shared.NormalizePipName(trimmed),
		Raw:  trimmed,
	}, nil
}

// FilterSuppressed drops every requirement whose normalized name is on the
// suppress list. Unparseable requirements pass through untouched so pip
// can produce its own diagnostics for them.
func FilterSuppressed(requirements []string, suppress []string) []string {
	if len(suppress) == 0 {
		return requirements
	}
	suppressed := make(map[string]struct{}, len(suppress))
	for _, name := range suppress {
		suppressed[shared.NormalizePipName(name)] = struct{}{}
	}
	var out []string
	for _, raw := range requirements {
		req, err := ParseRequirement(raw)
		if err == nil {
			if _, skip := suppressed[req.Name]; skip {
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}

// SatisfiedBy reports whether the installed version string meets the
// requirement. An unparseable installed version never satisfies a
// qualified requirement.
func (r Requirement) SatisfiedBy(installed string) bool {
	if !r.hasSpec {
		return installed != ""
	}
	version, err := pep440.Parse(installed)
	if err != nil {
		return false
	}
	return r.spec.Check(version)
}

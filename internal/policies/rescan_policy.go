// Package policies encodes the behavioural choices the scanner and
// reconciler take where historical revisions of the provisioning tool
// disagreed with each other.
package policies

import "os"

// RescanPolicy decides whether a directory entry that is itself a symbolic
// link may still be inspected as an addon candidate.
type RescanPolicy string

const (
	// RescanAll inspects every directory by manifest presence, link or not.
	// This keeps a second run finding the addons the first run linked.
	RescanAll RescanPolicy = "all"
	// RescanSkipLinks ignores entries that are already symlinks. Matches
	// layouts where the source tree itself holds links into the target
	// directory and rescanning them would self-reference.
	RescanSkipLinks RescanPolicy = "skip-links"
)

// ShouldInspect reports whether an entry with the given file mode is a
// candidate under the policy. Unknown policies behave like RescanAll.
func (p RescanPolicy) ShouldInspect(mode os.FileMode) bool {
	if p == RescanSkipLinks && mode&os.ModeSymlink != 0 {
		return false
	}
	return true
}

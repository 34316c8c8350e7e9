package policies

import "odoo-supervisor/internal/types"

// LinkAction is the reconciler's decision for one addon unit.
type LinkAction string

const (
	LinkActionCreate LinkAction = "create"
	LinkActionUpdate LinkAction = "update"
	LinkActionSkip   LinkAction = "skip"
)

// DecideLink maps the observed state of a target path to the action the
// reconciler takes. A real file or directory occupying the name is never
// overwritten; a link pointing elsewhere is replaced.
func DecideLink(state types.LinkState) LinkAction {
	switch state {
	case types.LinkStateAbsent:
		return LinkActionCreate
	case types.LinkStateStale:
		return LinkActionUpdate
	default:
		return LinkActionSkip
	}
}

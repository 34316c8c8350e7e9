package types

// LinkState classifies the target-directory entry for one addon before
// reconciliation touches it.
type LinkState string

const (
	LinkStateAbsent   LinkState = "absent"
	LinkStateCorrect  LinkState = "correct-link"
	LinkStateStale    LinkState = "stale-link"
	LinkStateOccupied LinkState = "occupied"
)

type RunMode string

const (
	// RunModeService logs and swallows per-unit failures.
	RunModeService RunMode = "service"
	// RunModeInit is the strict init-container mode: failures abort the run.
	RunModeInit RunMode = "init"
)

package radiometry

import "fmt"

// Guard messages for the exposure-time correction state checks.
const (
	applyGuardMsg = "exposure time correction has probably already been applied " +
		"since the unit already includes inverse time; set force to apply it anyway"
	undoGuardMsg = "exposure time correction has probably already been undone " +
		"since the unit does not include inverse time; set force to undo it anyway"
)

// GuardError reports an exposure-time correction requested in a direction
// the unit's current time basis contradicts. Callers must pass force to
// proceed; there is no other recovery path.
type GuardError struct {
	msg string
}

func (e *GuardError) Error() string { return e.msg }

// ShapeError reports a data array whose rank an operation does not
// support.
type ShapeError struct {
	Op   string
	Rank int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s does not support data of rank %d", e.Op, e.Rank)
}

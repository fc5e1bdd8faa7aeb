// Package simerrors collects the shared error-handling idioms used across
// this repo: wrapped errors via github.com/pkg/errors (the teacher's habit
// throughout its codebase) and a small "this is a bug, not bad input"
// fatal path for the invariant violations spec §7 calls out as
// programmer errors rather than recoverable conditions.
package simerrors

import (
	"github.com/pkg/errors"

	"github.com/cityplan/simcore/logging"
)

// Wrap and Wrapf re-export github.com/pkg/errors so callers only need to
// import this package for the common case.
var (
	Wrap  = errors.Wrap
	Wrapf = errors.Wrapf
	New   = errors.New
)

// Fatal logs msg at Fatal (which, per the teacher's logging.Logger
// contract, terminates the process) for invariant violations that
// indicate a bug in this codebase rather than bad input -- e.g. an
// unknown step passed to PlanHistory.NewerStep, or a SpatialGrid cell
// whose content-hash doesn't match its members after a mutation.
func Fatal(logger logging.Logger, msg string, keysAndValues ...interface{}) {
	logger.Fatalw(msg, keysAndValues...)
}

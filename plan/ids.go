// Package plan implements the editable gesture/plan/history/proposal model
// (spec §3, §4.1): the layer an editor mutates before it is compiled into
// prototypes.
package plan

import "github.com/google/uuid"

// GestureID, StepID and ProjectID are opaque 128-bit identifiers, grounded
// on the teacher's habit of using google/uuid for every entity identifier
// that does not need to be content-addressed (contrast prototype.ID, which
// is a structural hash).
type GestureID uuid.UUID
type StepID uuid.UUID
type ProjectID uuid.UUID

func NewGestureID() GestureID { return GestureID(uuid.New()) }
func NewStepID() StepID       { return StepID(uuid.New()) }
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }

func (g GestureID) String() string { return uuid.UUID(g).String() }
func (s StepID) String() string    { return uuid.UUID(s).String() }
func (p ProjectID) String() string { return uuid.UUID(p).String() }

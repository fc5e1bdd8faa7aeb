package plan

// Proposal (called Project at the editor boundary, spec §3/§6) is a user's
// undoable stack of draft Plans layered on top of a master PlanHistory.
type Proposal struct {
	ID        ProjectID
	Undoable  []Plan
	Ongoing   Plan
	Redoable  []Plan
}

// NewProposal starts an empty proposal with one fresh ongoing plan.
func NewProposal() Proposal {
	return Proposal{ID: NewProjectID(), Ongoing: NewPlan()}
}

func (p Proposal) clone() Proposal {
	undoable := make([]Plan, len(p.Undoable))
	copy(undoable, p.Undoable)
	redoable := make([]Plan, len(p.Redoable))
	copy(redoable, p.Redoable)
	return Proposal{ID: p.ID, Undoable: undoable, Ongoing: p.Ongoing, Redoable: redoable}
}

// SetOngoing replaces the ongoing plan and clears the redo stack -- any
// edit after an undo discards the redo history, matching a standard
// undo/redo editor model.
func (p Proposal) SetOngoing(np Plan) Proposal {
	next := p.clone()
	next.Ongoing = np
	next.Redoable = nil
	return next
}

// StartNewStep pushes the ongoing plan onto the undo stack and opens a
// fresh empty one -- the editor calls this at a natural commit boundary
// (spec §6's commit:bool parameters).
func (p Proposal) StartNewStep() Proposal {
	next := p.clone()
	next.Undoable = append(next.Undoable, next.Ongoing)
	next.Ongoing = NewPlan()
	return next
}

// Undo moves the last undoable plan to the redo stack and resets ongoing
// to a fresh empty plan.
func (p Proposal) Undo() Proposal {
	if len(p.Undoable) == 0 {
		return p
	}
	next := p.clone()
	last := next.Undoable[len(next.Undoable)-1]
	next.Undoable = next.Undoable[:len(next.Undoable)-1]
	next.Redoable = append([]Plan{last}, next.Redoable...)
	next.Ongoing = NewPlan()
	return next
}

// Redo reverses Undo: pops the first redoable plan back onto undoable and
// resets ongoing to a fresh empty plan, the mirror image of Undo.
func (p Proposal) Redo() Proposal {
	if len(p.Redoable) == 0 {
		return p
	}
	next := p.clone()
	first := next.Redoable[0]
	next.Redoable = next.Redoable[1:]
	next.Undoable = append(next.Undoable, first)
	next.Ongoing = NewPlan()
	return next
}

// ApplyTo extends base with every undoable plan, in order.
func (p Proposal) ApplyTo(base PlanHistory) PlanHistory {
	return base.AndThen(p.Undoable...)
}

// ApplyToWithOngoing additionally appends the ongoing plan, giving a
// preview of the proposal's in-progress edits (used by
// project_preview_update, spec §6).
func (p Proposal) ApplyToWithOngoing(base PlanHistory) PlanHistory {
	plans := append(append([]Plan{}, p.Undoable...), p.Ongoing)
	return base.AndThen(plans...)
}

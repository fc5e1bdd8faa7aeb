package plan

import "github.com/cityplan/simcore/geom"

// Manager owns the master PlanHistory and every open Proposal, and is the
// single serialization point for plan mutation (spec §5: "plan history
// mutation is serialized through the plan manager entity"). Its exported
// methods are the editor-facing operations of spec §6; all of them are
// meant to run on the manager's own goroutine/shard, so none of them take
// a lock -- callers serialize access the same way every other entity in
// this codebase does (one inbox, one handler goroutine).
type Manager struct {
	Master    PlanHistory
	Proposals map[ProjectID]Proposal
}

// NewManager returns a Manager over an empty master history.
func NewManager() *Manager {
	return &Manager{Master: NewPlanHistory(), Proposals: map[ProjectID]Proposal{}}
}

// StartNewProject opens a fresh empty Proposal and returns its id.
func (m *Manager) StartNewProject() ProjectID {
	p := NewProposal()
	m.Proposals[p.ID] = p
	return p.ID
}

func (m *Manager) mutate(project ProjectID, f func(Proposal) Proposal) {
	p, ok := m.Proposals[project]
	if !ok {
		return
	}
	m.Proposals[project] = f(p)
}

// StartNewGesture stages a brand-new gesture with no control points yet
// under id in the proposal's ongoing plan.
func (m *Manager) StartNewGesture(project ProjectID, id GestureID, intent Intent) {
	m.mutate(project, func(p Proposal) Proposal {
		return p.SetOngoing(p.Ongoing.WithGesture(id, NewGesture(intent)))
	})
}

// SetIntent updates a staged gesture's intent; if commit is true the
// ongoing plan is pushed to the undo stack (a fresh editing step begins).
func (m *Manager) SetIntent(project ProjectID, id GestureID, intent Intent, commit bool) {
	m.mutate(project, func(p Proposal) Proposal {
		g, ok := m.effectiveGesture(p, id)
		if !ok {
			g = NewGesture(intent)
		}
		p = p.SetOngoing(p.Ongoing.WithGesture(id, g.WithIntent(intent)))
		if commit {
			p = p.StartNewStep()
		}
		return p
	})
}

// AddControlPoint appends (or prepends) a control point to a staged
// gesture.
func (m *Manager) AddControlPoint(project ProjectID, id GestureID, point geom.Point, addToEnd, commit bool) {
	m.mutate(project, func(p Proposal) Proposal {
		g, ok := m.effectiveGesture(p, id)
		if !ok {
			g = NewGesture(Intent{})
		}
		p = p.SetOngoing(p.Ongoing.WithGesture(id, g.WithCorner(point, addToEnd)))
		if commit {
			p = p.StartNewStep()
		}
		return p
	})
}

// MoveControlPoint relocates an existing control point; if finished is
// true the edit is committed as a new step (the editor calls this
// repeatedly with finished=false while the user drags, and once more with
// finished=true on release).
func (m *Manager) MoveControlPoint(project ProjectID, id GestureID, index int, newPosition geom.Point, finished bool) {
	m.mutate(project, func(p Proposal) Proposal {
		g, ok := m.effectiveGesture(p, id)
		if !ok {
			return p
		}
		p = p.SetOngoing(p.Ongoing.WithGesture(id, g.WithMovedCorner(index, newPosition)))
		if finished {
			p = p.StartNewStep()
		}
		return p
	})
}

// effectiveGesture looks up a gesture first in the proposal's own ongoing
// plan, then in the master history -- the view an editor sees while
// drafting.
func (m *Manager) effectiveGesture(p Proposal, id GestureID) (Gesture, bool) {
	if g, ok := p.Ongoing.Gestures[id]; ok {
		return g, true
	}
	eff := p.ApplyTo(m.Master)
	return eff.Gesture(id)
}

// Undo/Redo delegate to the Proposal's own undo/redo stack.
func (m *Manager) Undo(project ProjectID) {
	m.mutate(project, Proposal.Undo)
}

func (m *Manager) Redo(project ProjectID) {
	m.mutate(project, Proposal.Redo)
}

// Implement folds a proposal's undoable plans permanently into the master
// history and resets the proposal to empty -- the editor's "commit this
// draft" action.
func (m *Manager) Implement(project ProjectID) {
	p, ok := m.Proposals[project]
	if !ok {
		return
	}
	m.Master = p.ApplyTo(m.Master)
	m.Proposals[project] = NewProposal()
}

// EffectiveHistory returns the PlanHistory a project's proposal produces
// when laid over the master, including its in-progress ongoing plan.
func (m *Manager) EffectiveHistory(project ProjectID) PlanHistory {
	p, ok := m.Proposals[project]
	if !ok {
		return m.Master
	}
	return p.ApplyToWithOngoing(m.Master)
}

package plan

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/geom"
)

func TestHistoryUpdateRoundTrip(t *testing.T) {
	h := NewPlanHistory()
	g1 := NewStepID()
	p1 := Plan{Step: g1, Gestures: map[GestureID]Gesture{NewGestureID(): NewGesture(RoadGesture(1, 0), geom.Pt(0, 0), geom.Pt(10, 0))}}
	h = h.AndThen(p1)

	known := KnownHistoryState{}
	update := h.UpdateFor(known)
	test.That(t, update.Add, test.ShouldHaveLength, 1)
	test.That(t, update.Drop, test.ShouldHaveLength, 0)

	observer := NewPlanHistory().ApplyUpdate(update)
	test.That(t, observer.AsKnownState().Steps, test.ShouldResemble, h.AsKnownState().Steps)

	// A subsequent UpdateFor against the now-caught-up observer is empty.
	noop := h.UpdateFor(observer.AsKnownState())
	test.That(t, noop.Add, test.ShouldHaveLength, 0)
	test.That(t, noop.Drop, test.ShouldHaveLength, 0)
}

func TestApplyUpdateIdempotent(t *testing.T) {
	h := NewPlanHistory()
	p1 := Plan{Step: NewStepID(), Gestures: map[GestureID]Gesture{NewGestureID(): NewGesture(RoadGesture(1, 0))}}
	h = h.AndThen(p1)

	update := h.UpdateFor(KnownHistoryState{})
	once := NewPlanHistory().ApplyUpdate(update)
	twice := once.ApplyUpdate(once.UpdateFor(KnownHistoryState{}))
	test.That(t, twice.AsKnownState().Steps, test.ShouldResemble, once.AsKnownState().Steps)
}

func TestProposalUndoRedoRoundTrip(t *testing.T) {
	// Scenario S5.
	m := NewManager()
	project := m.StartNewProject()
	gid := NewGestureID()

	m.AddControlPoint(project, gid, geom.Pt(0, 0), true, true)
	m.AddControlPoint(project, gid, geom.Pt(10, 0), true, true)

	afterAdds := m.EffectiveHistory(project).Gestures()[gid]

	m.Undo(project)
	m.Undo(project)
	m.Redo(project)
	m.Redo(project)

	afterRoundTrip := m.EffectiveHistory(project).Gestures()[gid]
	test.That(t, afterRoundTrip.Corners, test.ShouldResemble, afterAdds.Corners)
}

func TestNewerStepPanicsOnUnknownStep(t *testing.T) {
	defer func() {
		r := recover()
		test.That(t, r, test.ShouldNotBeNil)
	}()
	h := NewPlanHistory()
	h.NewerStep(NewStepID(), NewStepID())
}

func TestInOrder(t *testing.T) {
	h := NewPlanHistory()
	s1, s2 := NewStepID(), NewStepID()
	h = h.AndThen(Plan{Step: s1, Gestures: map[GestureID]Gesture{}})
	h = h.AndThen(Plan{Step: s2, Gestures: map[GestureID]Gesture{}})

	before, ok := h.InOrder(s1, s2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, before, test.ShouldBeTrue)

	_, ok = h.InOrder(s1, NewStepID())
	test.That(t, ok, test.ShouldBeFalse)
}

package plan

// Plan records only the gestures changed in one step.
type Plan struct {
	Step     StepID
	Gestures map[GestureID]Gesture
}

// NewPlan builds a Plan for a freshly minted step.
func NewPlan() Plan {
	return Plan{Step: NewStepID(), Gestures: map[GestureID]Gesture{}}
}

// WithGesture returns a copy of the plan with gesture g set under id,
// overwriting shadow gestures with the same id already staged in this
// plan (duplicate ids within later steps shadow earlier ones, spec §4.1).
func (p Plan) WithGesture(id GestureID, g Gesture) Plan {
	next := Plan{Step: p.Step, Gestures: make(map[GestureID]Gesture, len(p.Gestures)+1)}
	for k, v := range p.Gestures {
		next.Gestures[k] = v
	}
	next.Gestures[id] = g
	return next
}

// versionedGesture pairs a Gesture with the step that last touched it, the
// value type stored by PlanHistory.
type versionedGesture struct {
	Gesture Gesture
	Step    StepID
}

// PlanHistory is an append-only ordered sequence of steps plus the latest
// gesture for every id (spec §3). The invariant held at every public
// boundary: every gesture's Step appears in Steps, and "latest" means
// "versioned with the step nearest the end of Steps".
type PlanHistory struct {
	Steps    []StepID
	gestures map[GestureID]versionedGesture
}

// NewPlanHistory returns an empty history.
func NewPlanHistory() PlanHistory {
	return PlanHistory{gestures: map[GestureID]versionedGesture{}}
}

// Gesture returns the latest gesture for id, if any.
func (h PlanHistory) Gesture(id GestureID) (Gesture, bool) {
	v, ok := h.gestures[id]
	return v.Gesture, ok
}

// Gestures returns a snapshot map of every live gesture, latest version
// only. Callers must not mutate the returned map's values in place.
func (h PlanHistory) Gestures() map[GestureID]Gesture {
	out := make(map[GestureID]Gesture, len(h.gestures))
	for id, v := range h.gestures {
		out[id] = v.Gesture
	}
	return out
}

// stepIndex returns the position of step in h.Steps, or -1.
func (h PlanHistory) stepIndex(step StepID) int {
	for i, s := range h.Steps {
		if s == step {
			return i
		}
	}
	return -1
}

// AndThen folds each plan's gestures in, in order, appending one step per
// plan. A later plan's gesture for the same id shadows an earlier one,
// even within the same call (spec §4.1).
func (h PlanHistory) AndThen(plans ...Plan) PlanHistory {
	next := h.clone()
	for _, p := range plans {
		next.Steps = append(next.Steps, p.Step)
		for id, g := range p.Gestures {
			next.gestures[id] = versionedGesture{Gesture: g, Step: p.Step}
		}
	}
	return next
}

func (h PlanHistory) clone() PlanHistory {
	steps := make([]StepID, len(h.Steps))
	copy(steps, h.Steps)
	gestures := make(map[GestureID]versionedGesture, len(h.gestures))
	for k, v := range h.gestures {
		gestures[k] = v
	}
	return PlanHistory{Steps: steps, gestures: gestures}
}

// InOrder reports whether step a precedes step b; ok is false if either
// step is unknown (spec §4.1: "None if either is absent").
func (h PlanHistory) InOrder(a, b StepID) (before bool, ok bool) {
	ia, ib := h.stepIndex(a), h.stepIndex(b)
	if ia < 0 || ib < 0 {
		return false, false
	}
	return ia < ib, true
}

// NewerStep returns the later of two steps. Per spec §4.1/§7 this is a
// programmer error (panic) when either step is unknown -- callers are
// expected to only ever compare steps drawn from this same history.
func (h PlanHistory) NewerStep(a, b StepID) StepID {
	before, ok := h.InOrder(a, b)
	if !ok {
		panic("plan: NewerStep called with a step absent from the history")
	}
	if before {
		return b
	}
	return a
}

package plan

// KnownHistoryState is the steps list a remote observer last saw (spec
// §3).
type KnownHistoryState struct {
	Steps []StepID
}

// GestureVersion pairs a gesture with the step it was last changed in, the
// unit PlanHistoryUpdate ships gestures as.
type GestureVersion struct {
	Gesture Gesture
	Step    StepID
}

// PlanHistoryUpdate is the diff between what an observer knows and the
// current history: the step suffix to drop, the step suffix to add, and
// every gesture versioned with a step in the added suffix.
type PlanHistoryUpdate struct {
	Drop        []StepID
	Add         []StepID
	GesturesAdd map[GestureID]GestureVersion
}

// UpdateFor computes the longest common prefix between h.Steps and
// known.Steps; the update drops known's steps past the prefix, adds h's
// steps past the prefix, and carries every gesture versioned with an
// added step (spec §4.1). Total: defined for any KnownHistoryState,
// including one that shares no prefix at all.
func (h PlanHistory) UpdateFor(known KnownHistoryState) PlanHistoryUpdate {
	prefix := commonPrefixLen(h.Steps, known.Steps)

	drop := append([]StepID{}, known.Steps[prefix:]...)
	add := append([]StepID{}, h.Steps[prefix:]...)

	addedSteps := make(map[StepID]bool, len(add))
	for _, s := range add {
		addedSteps[s] = true
	}

	gesturesAdd := map[GestureID]GestureVersion{}
	for id, v := range h.gestures {
		if addedSteps[v.Step] {
			gesturesAdd[id] = GestureVersion{Gesture: v.Gesture, Step: v.Step}
		}
	}

	return PlanHistoryUpdate{Drop: drop, Add: add, GesturesAdd: gesturesAdd}
}

func commonPrefixLen(a, b []StepID) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// ApplyUpdate applies u to h in the three-pass order spec §4.1 requires:
// first remove every gesture whose step is being dropped, then drop those
// steps, then append the added steps, then overwrite with the added
// gestures. This ordering is what keeps the "every gesture's step is in
// Steps" invariant intact at every intermediate point -- in particular it
// is safe to call even when u.Drop and u.Add overlap in content (a step
// dropped and an equal-valued step re-added), because pass 1 only ever
// looks at *current* gesture-to-step bindings before any step list surgery
// happens.
func (h PlanHistory) ApplyUpdate(u PlanHistoryUpdate) PlanHistory {
	next := h.clone()

	dropped := make(map[StepID]bool, len(u.Drop))
	for _, s := range u.Drop {
		dropped[s] = true
	}

	// Pass 1: remove gestures whose step is being dropped.
	for id, v := range next.gestures {
		if dropped[v.Step] {
			delete(next.gestures, id)
		}
	}

	// Pass 2: drop the steps themselves (the tail of Steps named by u.Drop).
	if len(u.Drop) > 0 {
		next.Steps = next.Steps[:len(next.Steps)-len(u.Drop)]
	}

	// Pass 3: append the added steps that Steps does not already hold, so
	// replaying an update onto a history that already has them is a no-op.
	have := make(map[StepID]bool, len(next.Steps))
	for _, s := range next.Steps {
		have[s] = true
	}
	for _, s := range u.Add {
		if !have[s] {
			next.Steps = append(next.Steps, s)
			have[s] = true
		}
	}

	// Pass 4: overwrite/insert the added gestures, each against its own
	// recorded step.
	for id, gv := range u.GesturesAdd {
		next.gestures[id] = versionedGesture{Gesture: gv.Gesture, Step: gv.Step}
	}

	return next
}

// AsKnownState projects h down to the KnownHistoryState an observer who has
// just applied every update would now report (spec §8 round-trip
// property 4).
func (h PlanHistory) AsKnownState() KnownHistoryState {
	steps := make([]StepID, len(h.Steps))
	copy(steps, h.Steps)
	return KnownHistoryState{Steps: steps}
}

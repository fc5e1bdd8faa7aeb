// Package diff computes the three-way Construct/Morph/Destruct ActionGroups
// between two prototype.PlanResults (spec §4.3), grounded on the teacher's
// config.Diff shape (a value object computed by structural comparison of
// two snapshots, consumed by one apply-style function at the construction
// boundary) generalized from named-component diffing to the spatial-grid
// difference this domain actually requires.
package diff

import (
	"github.com/cityplan/simcore/prototype"
)

// ActionKind tags which of the three actions an Action performs.
type ActionKind int

const (
	// Construct builds a brand-new live entity from a prototype.
	Construct ActionKind = iota
	// Morph updates a live entity in place from OldID's prototype to NewID's.
	Morph
	// Destruct tears down a live entity with no replacement.
	Destruct
)

// Action is one of Construct(id), Morph(old_id, new_id), Destruct(id) (spec §3).
type Action struct {
	Kind  ActionKind
	ID    prototype.ID // valid for Construct and Destruct
	OldID prototype.ID // valid for Morph
	NewID prototype.ID // valid for Morph
}

// IndependentActions is an unordered set of Actions safe to execute
// concurrently (spec §3).
type IndependentActions []Action

// ActionGroups is the canonically ordered [destructs, morphs, constructs]
// result of a diff (spec §3).
type ActionGroups struct {
	Destructs IndependentActions
	Morphs    IndependentActions
	Constructs IndependentActions
}

// IsEmpty reports whether no action needs to run -- used by callers to
// skip notifying the construction driver entirely (spec invariant:
// actions_to(A, A) = ∅).
func (g ActionGroups) IsEmpty() bool {
	return len(g.Destructs) == 0 && len(g.Morphs) == 0 && len(g.Constructs) == 0
}

// ActionsTo computes the ActionGroups needed to bring a world built from
// self to match other, per spec §4.3's four-step algorithm:
//  1. diff the spatial grids to get unmatched ids on each side;
//  2. pair up morphable unmatched ids as Morphs;
//  3. the rest become Constructs (new side) and Destructs (old side);
//  4. package as one ActionGroups in canonical order.
func ActionsTo(self, other prototype.PlanResult) ActionGroups {
	unmatchedExisting, unmatchedNew := self.Grid.Difference(other.Grid)

	newRemaining := make(map[prototype.ID]bool, len(unmatchedNew))
	for _, id := range unmatchedNew {
		newRemaining[id] = true
	}

	var morphs IndependentActions
	var destructs IndependentActions

	for _, existingID := range unmatchedExisting {
		existing, ok := self.Prototypes[existingID]
		if !ok {
			continue
		}
		matched := false
		for _, newID := range unmatchedNew {
			if !newRemaining[newID] {
				continue
			}
			candidate, ok := other.Prototypes[newID]
			if !ok {
				continue
			}
			if candidate.MorphableFrom(existing) {
				morphs = append(morphs, Action{Kind: Morph, OldID: existingID, NewID: newID})
				delete(newRemaining, newID)
				matched = true
				break
			}
		}
		if !matched {
			destructs = append(destructs, Action{Kind: Destruct, ID: existingID})
		}
	}

	var constructs IndependentActions
	for _, id := range unmatchedNew {
		if newRemaining[id] {
			constructs = append(constructs, Action{Kind: Construct, ID: id})
		}
	}

	return ActionGroups{Destructs: destructs, Morphs: morphs, Constructs: constructs}
}

// Package construction is the driver named in spec §4.6: it consumes one
// diff.ActionGroups and applies it to a live lanegraph.Graph in the
// canonical [destruct, morph, construct] order, decomposing Intersection
// and SwitchLane prototypes into the individual lanegraph.Lane entities
// the live graph models directly. Grounded on the teacher's `rexec`
// process-supervisor idiom (apply a batch of start/stop/restart
// operations in a fixed order against a live registry), repurposed from
// OS processes to lane entities.
package construction

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/cityplan/simcore/diff"
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/prototype"
)

// Driver applies ActionGroups computed between two prototype.PlanResults
// to a live lanegraph.Graph.
type Driver struct {
	graph  *lanegraph.Graph
	logger logging.Logger
}

// NewDriver returns a Driver that applies action groups to graph.
func NewDriver(graph *lanegraph.Graph, logger logging.Logger) *Driver {
	return &Driver{graph: graph, logger: logger}
}

// Apply executes groups against the live graph: every Destruct first,
// then every Morph, then every Construct (spec §4.6's ordering, chosen so
// a lane never briefly exists twice under two different ids during a
// hand-off window). before/after are the PlanResults the ActionGroups was
// computed between -- Destruct/Morph/Construct actions only carry ids,
// so the driver needs the prototype bodies to act on them. Every
// unknown-prototype or pending-disconnect condition is still logged as it
// happens, but also combined into a single returned error so a caller that
// wants a non-nil result from a batch (e.g. a CLI exit code) can get one.
func (d *Driver) Apply(groups diff.ActionGroups, before, after prototype.PlanResult) error {
	var errs error
	for _, action := range groups.Destructs {
		errs = multierr.Append(errs, d.destruct(action.ID, before))
	}
	for _, action := range groups.Morphs {
		errs = multierr.Append(errs, d.morph(action.OldID, action.NewID, before, after))
	}
	for _, action := range groups.Constructs {
		errs = multierr.Append(errs, d.construct(action.ID, after))
	}
	return errs
}

func (d *Driver) destruct(id prototype.ID, result prototype.PlanResult) error {
	proto, ok := result.Prototypes[id]
	if !ok {
		d.logger.Warnw("destruct references unknown prototype, skipping", "id", id)
		return errors.Errorf("destruct references unknown prototype %d", id)
	}
	var errs error
	for _, laneID := range laneIDsOf(proto) {
		if !d.graph.Destruct(laneID) {
			d.logger.Warnw("lane destruct left pending disconnects", "lane", laneID)
			errs = multierr.Append(errs, errors.Errorf("lane %d left pending disconnects", laneID))
		}
	}
	return errs
}

func (d *Driver) construct(id prototype.ID, result prototype.PlanResult) error {
	proto, ok := result.Prototypes[id]
	if !ok {
		d.logger.Warnw("construct references unknown prototype, skipping", "id", id)
		return errors.Errorf("construct references unknown prototype %d", id)
	}
	d.buildLanes(proto)
	return nil
}

// morph re-verifies MorphableFrom even though diff.ActionsTo already
// guarantees it -- a defensive check against a stale or hand-built
// ActionGroups -- and falls back to destruct-then-construct if the two
// prototypes turn out structurally incompatible after all.
func (d *Driver) morph(oldID, newID prototype.ID, before, after prototype.PlanResult) error {
	oldProto, okOld := before.Prototypes[oldID]
	newProto, okNew := after.Prototypes[newID]
	if !okOld || !okNew || !newProto.MorphableFrom(oldProto) {
		d.logger.Warnw("morph pair not actually compatible, falling back to destruct+construct", "old", oldID, "new", newID)
		var errs error
		if okOld {
			errs = multierr.Append(errs, d.destruct(oldID, before))
		}
		if okNew {
			errs = multierr.Append(errs, d.construct(newID, after))
		}
		return errs
	}

	switch {
	case newProto.Kind.Lane != nil:
		if !d.graph.MorphInPlace(oldID, newID, newProto.Kind.Lane.Path, nil) {
			d.graph.Construct(newID, newProto.Kind.Lane.Path, nil)
		}
	case newProto.Kind.SwitchLane != nil:
		if !d.graph.MorphInPlace(oldID, newID, newProto.Kind.SwitchLane.Path, nil) {
			d.graph.Construct(newID, newProto.Kind.SwitchLane.Path, nil)
		}
	case newProto.Kind.Intersection != nil:
		// An intersection's connecting lanes are keyed off the parent id;
		// morphing it in place means re-deriving each connecting lane's id
		// under the new parent id and renaming the matching old one.
		oldKeys := connectorKeys(oldProto.Kind.Intersection)
		newKeys := connectorKeys(newProto.Kind.Intersection)
		n := len(oldKeys)
		if len(newKeys) < n {
			n = len(newKeys)
		}
		for i := 0; i < n; i++ {
			oldLaneID := connectingLaneID(oldID, oldKeys[i].key, oldKeys[i].idx)
			newLaneID := connectingLaneID(newID, newKeys[i].key, newKeys[i].idx)
			lp := newKeys[i].lane
			timings := timingsFor(newProto.Kind.Intersection, i)
			if !d.graph.MorphInPlace(oldLaneID, newLaneID, lp.Path, timings) {
				d.graph.Construct(newLaneID, lp.Path, timings)
			}
		}
		for i := n; i < len(oldKeys); i++ {
			d.graph.Destruct(connectingLaneID(oldID, oldKeys[i].key, oldKeys[i].idx))
		}
		for i := n; i < len(newKeys); i++ {
			timings := timingsFor(newProto.Kind.Intersection, i)
			d.graph.Construct(connectingLaneID(newID, newKeys[i].key, newKeys[i].idx), newKeys[i].lane.Path, timings)
		}
	case newProto.Kind.Lot != nil:
		// Lots have no lanegraph representation (spec §4.7 scope: the
		// market/economy subsystem, not microtraffic, owns lot occupancy).
	}
	return nil
}

// laneIDsOf returns every live lanegraph id a single prototype expands
// to: one for a plain Lane/SwitchLane, one per connecting lane for an
// Intersection, none for a Lot.
func laneIDsOf(p prototype.Prototype) []lanegraph.LaneID {
	switch {
	case p.Kind.Lane != nil, p.Kind.SwitchLane != nil:
		return []lanegraph.LaneID{p.ID}
	case p.Kind.Intersection != nil:
		keys := connectorKeys(p.Kind.Intersection)
		return lo.Map(keys, func(k keyedLane, _ int) lanegraph.LaneID {
			return connectingLaneID(p.ID, k.key, k.idx)
		})
	default:
		return nil
	}
}

func (d *Driver) buildLanes(p prototype.Prototype) {
	switch {
	case p.Kind.Lane != nil:
		d.graph.Construct(p.ID, p.Kind.Lane.Path, nil)
	case p.Kind.SwitchLane != nil:
		d.graph.Construct(p.ID, p.Kind.SwitchLane.Path, nil)
	case p.Kind.Intersection != nil:
		keys := connectorKeys(p.Kind.Intersection)
		for i, k := range keys {
			timings := timingsFor(p.Kind.Intersection, i)
			d.graph.Construct(connectingLaneID(p.ID, k.key, k.idx), k.lane.Path, timings)
		}
	case p.Kind.Lot != nil:
		// no-op, see morph's Lot case.
	}
}

type keyedLane struct {
	key prototype.ConnectorKey
	idx int
	lane prototype.LanePrototype
}

// connectorKeys flattens Intersection.ConnectingLanes into the same
// (In, Out, index-within-key) order prototype.Compile builds its bundles
// and Timings in: ascending In, then ascending Out, then slice order --
// see prototype.Intersection.Timings's doc comment.
func connectorKeys(in *prototype.Intersection) []keyedLane {
	if in == nil {
		return nil
	}
	keys := lo.Keys(in.ConnectingLanes)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].In != keys[j].In {
			return keys[i].In < keys[j].In
		}
		return keys[i].Out < keys[j].Out
	})
	var out []keyedLane
	for _, k := range keys {
		for idx, lane := range in.ConnectingLanes[k] {
			out = append(out, keyedLane{key: k, idx: idx, lane: lane})
		}
	}
	return out
}

func timingsFor(in *prototype.Intersection, bundleIdx int) []bool {
	if bundleIdx < 0 || bundleIdx >= len(in.Timings) {
		return nil
	}
	return in.Timings[bundleIdx]
}

// connectingLaneID synthesizes a stable lanegraph id for a connecting
// lane from its parent intersection's id plus its position in the
// flattened connector order. This is purely an internal live-graph key:
// it need not (and does not) match the content-addressing scheme
// prototype.ID uses, since connecting lanes are never compared directly
// across compiles -- only their parent Intersection prototype is.
func connectingLaneID(parent prototype.ID, key prototype.ConnectorKey, idx int) lanegraph.LaneID {
	f := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(parent))
	f.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(key.In)))
	f.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(key.Out)))
	f.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(idx))
	f.Write(buf[:])
	return lanegraph.LaneID(f.Sum64())
}

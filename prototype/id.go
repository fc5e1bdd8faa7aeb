package prototype

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/cityplan/simcore/geom"
)

// ID is a content-addressed 64-bit identifier: hashing the same structural
// inputs always produces the same ID, so recompiling an unchanged gesture
// yields the same prototype id across runs (spec §3, §9). This mirrors the
// teacher's resource.Name, which is also a deterministic value computed
// from a namespace/type/name triple rather than a randomly minted one.
type ID uint64

// influenceHasher accumulates structural inputs in a fixed, documented
// order (field order matters: the diff engine and every round-trip test
// depend on recomputation producing identical ids for identical inputs).
type influenceHasher struct {
	h   uint64
	buf [8]byte
}

func newInfluenceHasher(kind string) *influenceHasher {
	ih := &influenceHasher{}
	f := fnv.New64a()
	f.Write([]byte(kind))
	ih.h = f.Sum64()
	return ih
}

func (ih *influenceHasher) mix(bits uint64) {
	f := fnv.New64a()
	binary.LittleEndian.PutUint64(ih.buf[:], ih.h)
	f.Write(ih.buf[:])
	binary.LittleEndian.PutUint64(ih.buf[:], bits)
	f.Write(ih.buf[:])
	ih.h = f.Sum64()
}

func (ih *influenceHasher) float(v float64) {
	ih.mix(math.Float64bits(v))
}

func (ih *influenceHasher) point(p geom.Point) {
	ih.float(p.X)
	ih.float(p.Y)
}

func (ih *influenceHasher) points(ps []geom.Point) {
	ih.mix(uint64(len(ps)))
	for _, p := range ps {
		ih.point(p)
	}
}

func (ih *influenceHasher) str(s string) {
	f := fnv.New64a()
	binary.LittleEndian.PutUint64(ih.buf[:], ih.h)
	f.Write(ih.buf[:])
	f.Write([]byte(s))
	ih.h = f.Sum64()
}

func (ih *influenceHasher) uint(v uint64) {
	ih.mix(v)
}

func (ih *influenceHasher) id() ID {
	return ID(ih.h)
}

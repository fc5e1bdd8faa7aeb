package prototype

import (
	"math"
	"sort"

	"github.com/cityplan/simcore/geom"
)

// cellCoord is the (column, row) address of a grid cell.
type cellCoord struct {
	X, Y int64
}

type cell struct {
	members []ID
	hash    uint64
}

// SpatialGrid partitions 2-space into square cells of side `cellSize`
// (spec §3); each cell stores the sorted member-id list and a content-hash
// of that list, recomputed on every Add/Remove (spec §4.3).
type SpatialGrid struct {
	cellSize float64
	cells    map[cellCoord]*cell
	at       map[ID]cellCoord
}

// NewSpatialGrid returns an empty grid with the given cell side length.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{cellSize: cellSize, cells: map[cellCoord]*cell{}, at: map[ID]cellCoord{}}
}

func (g *SpatialGrid) coordOf(p geom.Point) cellCoord {
	return cellCoord{
		X: int64(math.Floor(p.X / g.cellSize)),
		Y: int64(math.Floor(p.Y / g.cellSize)),
	}
}

// Add inserts id's representative position into its cell at sorted
// position and recomputes that cell's content-hash.
func (g *SpatialGrid) Add(id ID, p geom.Point) {
	coord := g.coordOf(p)
	c, ok := g.cells[coord]
	if !ok {
		c = &cell{}
		g.cells[coord] = c
	}
	idx := sort.Search(len(c.members), func(i int) bool { return c.members[i] >= id })
	if idx < len(c.members) && c.members[idx] == id {
		return // already present
	}
	c.members = append(c.members, 0)
	copy(c.members[idx+1:], c.members[idx:])
	c.members[idx] = id
	g.at[id] = coord
	g.rehash(coord)
}

// Remove deletes id from the grid, locating its cell via the at-index and
// removing it by binary search within that cell.
func (g *SpatialGrid) Remove(id ID) {
	coord, ok := g.at[id]
	if !ok {
		return
	}
	c := g.cells[coord]
	idx := sort.Search(len(c.members), func(i int) bool { return c.members[i] >= id })
	if idx >= len(c.members) || c.members[idx] != id {
		return
	}
	c.members = append(c.members[:idx], c.members[idx+1:]...)
	delete(g.at, id)
	if len(c.members) == 0 {
		delete(g.cells, coord)
		return
	}
	g.rehash(coord)
}

func (g *SpatialGrid) rehash(coord cellCoord) {
	c, ok := g.cells[coord]
	if !ok {
		return
	}
	c.hash = hashMembers(c.members)
}

func hashMembers(members []ID) uint64 {
	h := uint64(14695981039346656037)
	for _, m := range members {
		h ^= uint64(m)
		h *= 1099511628211
	}
	return h
}

// cellHashAt returns the content-hash of the cell at coord and true, or 0
// and false when no cell exists there.
func (g *SpatialGrid) cellHashAt(coord cellCoord) (uint64, bool) {
	c, ok := g.cells[coord]
	if !ok {
		return 0, false
	}
	return c.hash, true
}

// MembersNear returns a copy of the sorted member list of the cell containing
// p, for tests and introspection.
func (g *SpatialGrid) MembersNear(p geom.Point) []ID {
	c, ok := g.cells[g.coordOf(p)]
	if !ok {
		return nil
	}
	out := make([]ID, len(c.members))
	copy(out, c.members)
	return out
}

// Difference visits every coordinate present in either grid and emits the
// prototype ids present on only one side, per spec §4.3: cells whose
// content-hash matches are skipped entirely; cells present on only one
// side emit all their members; cells present on both sides with differing
// hashes are merge-walked to find the exact mismatched ids.
func (g *SpatialGrid) Difference(other *SpatialGrid) (onlyInSelf, onlyInOther []ID) {
	coords := map[cellCoord]bool{}
	for c := range g.cells {
		coords[c] = true
	}
	for c := range other.cells {
		coords[c] = true
	}

	for coord := range coords {
		selfHash, selfOK := g.cellHashAt(coord)
		otherHash, otherOK := other.cellHashAt(coord)
		if selfOK && otherOK && selfHash == otherHash {
			continue
		}
		selfMembers := membersOf(g.cells[coord])
		otherMembers := membersOf(other.cells[coord])
		a, b := mergeDiff(selfMembers, otherMembers)
		onlyInSelf = append(onlyInSelf, a...)
		onlyInOther = append(onlyInOther, b...)
	}
	return onlyInSelf, onlyInOther
}

func membersOf(c *cell) []ID {
	if c == nil {
		return nil
	}
	return c.members
}

// mergeDiff walks two sorted id slices and returns elements unique to each.
func mergeDiff(a, b []ID) (onlyA, onlyB []ID) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return onlyA, onlyB
}

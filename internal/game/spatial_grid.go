package game

import "math"

// GridCellSize is the edge length of one spatial hash cell.
const GridCellSize = 100.0

type cellKey struct {
	cx, cy int
}

type entryKind uint8

const (
	entryFood entryKind = iota
	entryOrb
	entryCoin
	entryPickup
	entrySegment
)

// gridEntry references an item or a snake segment in a cell
type gridEntry struct {
	kind   entryKind
	id     string // item id, or snake id for segments
	segIdx int
	x, y   float64
}

// SpatialGrid is a hash grid for fast proximity queries. It is rebuilt from
// scratch every tick.
type SpatialGrid struct {
	cells    map[cellKey][]gridEntry
	cellSize float64
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cells:    make(map[cellKey][]gridEntry),
		cellSize: cellSize,
	}
}

// Clear resets all cells, keeping their backing arrays.
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

func (g *SpatialGrid) insert(e gridEntry) {
	k := g.keyFor(e.x, e.y)
	g.cells[k] = append(g.cells[k], e)
}

// InsertItem adds a collectible to the grid
func (g *SpatialGrid) InsertItem(kind entryKind, id string, x, y float64) {
	g.insert(gridEntry{kind: kind, id: id, x: x, y: y})
}

// InsertSnakeBody adds snake body segments (skipping head) to the grid
func (g *SpatialGrid) InsertSnakeBody(s *Snake) {
	for i := 1; i < len(s.Segments); i++ {
		seg := s.Segments[i]
		g.insert(gridEntry{kind: entrySegment, id: s.ID, segIdx: i, x: seg.X, y: seg.Y})
	}
}

// each calls fn for every entry of kind within radius of (x,y).
func (g *SpatialGrid) each(kind entryKind, x, y, radius float64, fn func(gridEntry)) {
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCY := int(math.Floor((y - radius) / g.cellSize))
	maxCY := int(math.Floor((y + radius) / g.cellSize))

	r2 := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.kind != kind {
					continue
				}
				if dist2(e.x, e.y, x, y) <= r2 {
					fn(e)
				}
			}
		}
	}
}

// NearbyItems returns ids of items of kind within radius of (x,y)
func (g *SpatialGrid) NearbyItems(kind entryKind, x, y, radius float64) []string {
	var out []string
	g.each(kind, x, y, radius, func(e gridEntry) {
		out = append(out, e.id)
	})
	return out
}

// NearbySnakeBody returns segment entries within radius of (x,y),
// excluding the snake identified by excludeID
func (g *SpatialGrid) NearbySnakeBody(x, y, radius float64, excludeID string) []gridEntry {
	var out []gridEntry
	g.each(entrySegment, x, y, radius, func(e gridEntry) {
		if e.id != excludeID {
			out = append(out, e)
		}
	})
	return out
}

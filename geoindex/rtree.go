package geoindex

import (
	"github.com/dhconnelly/rtreego"

	"quadtree-index/models"
	"quadtree-index/quadtree"
)

// pointTolerance pads point and query rectangles so that rtreego never sees
// a zero-length side; results are filtered exactly afterwards.
const pointTolerance = 1e-6

// spatialEntry wraps an entry position to satisfy the rtreego.Spatial interface
type spatialEntry struct {
	pos  int
	rect rtreego.Rect
}

func (e spatialEntry) Bounds() rtreego.Rect {
	return e.rect
}

// newRTreeSearch loads every entry up front; the tree is only read afterwards,
// so searches run without locking.
func newRTreeSearch(ps *models.PointSet) func(quadtree.Rect) []int {
	rtree := rtreego.NewTree(2, 25, 50)
	for i, e := range ps.Entries {
		p := rtreego.Point{e.X, e.Y}
		rtree.Insert(spatialEntry{pos: i, rect: p.ToRect(pointTolerance)})
	}

	return func(q quadtree.Rect) []int {
		bb, err := rtreego.NewRectFromPoints(
			rtreego.Point{q.Min.X - pointTolerance, q.Min.Y - pointTolerance},
			rtreego.Point{q.Max.X + pointTolerance, q.Max.Y + pointTolerance},
		)
		if err != nil {
			return nil
		}

		found := rtree.SearchIntersect(bb)

		var out []int
		for _, s := range found {
			pos := s.(spatialEntry).pos
			if q.Contains(ps.Entries[pos].Point()) {
				out = append(out, pos)
			}
		}
		return out
	}
}

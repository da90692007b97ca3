package geoindex

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"quadtree-index/models"
	"quadtree-index/quadtree"
)

// projection stretches the point set bounds over the whole lat/lng range so
// planar points can be bucketed by geohash.
type projection struct {
	bounds        quadtree.Rect
	width, height float64
}

func newProjection(bounds quadtree.Rect) projection {
	p := projection{bounds: bounds, width: bounds.Width(), height: bounds.Height()}
	if !(p.width > 0) {
		p.width = 1
	}
	if !(p.height > 0) {
		p.height = 1
	}
	return p
}

// maxLat and maxLng sit just inside the encodable range.
var (
	maxLat = math.Nextafter(90, 0)
	maxLng = math.Nextafter(180, 0)
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func (p projection) latLng(pt quadtree.Point) (lat, lng float64) {
	lat = -90 + 180*(pt.Y-p.bounds.Min.Y)/p.height
	lng = -180 + 360*(pt.X-p.bounds.Min.X)/p.width
	return clamp(lat, -90, maxLat), clamp(lng, -180, maxLng)
}

// Encode a planar point into a geohash of the given precision.
func (p projection) Encode(pt quadtree.Point, precision uint) string {
	lat, lng := p.latLng(pt)
	return geohash.EncodeWithPrecision(lat, lng, precision)
}

func newGeohashSearch(ps *models.PointSet, precision uint) func(quadtree.Rect) []int {
	proj := newProjection(ps.Bounds.Quad())
	buckets := make(map[string][]int)
	for i, e := range ps.Entries {
		hash := proj.Encode(e.Point(), precision)
		buckets[hash] = append(buckets[hash], i)
	}

	return func(q quadtree.Rect) []int {
		qMaxLat, qMaxLng := proj.latLng(q.Max)

		var out []int
		// walk the cells covering q row by row, south to north, west to east
		row := proj.Encode(q.Min, precision)
		for {
			cell := row
			for {
				for _, pos := range buckets[cell] {
					if q.Contains(ps.Entries[pos].Point()) {
						out = append(out, pos)
					}
				}
				box := geohash.BoundingBox(cell)
				if box.MaxLng > qMaxLng {
					break
				}
				cell = geohash.Neighbor(cell, geohash.East)
				if geohash.BoundingBox(cell).MinLng < box.MinLng {
					break // wrapped past 180
				}
			}
			box := geohash.BoundingBox(row)
			if box.MaxLat > qMaxLat {
				break
			}
			row = geohash.Neighbor(row, geohash.North)
			if geohash.BoundingBox(row).MinLat <= box.MinLat {
				break // no row above the pole
			}
		}
		return out
	}
}

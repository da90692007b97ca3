package models

import "quadtree-index/quadtree"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

type Entry struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// PointSet is a named collection of entries indexed together
type PointSet struct {
	Name        string  `json:"name"`
	Bounds      Rect    `json:"bounds"`
	MaxEntries  int     `json:"max_entries"`
	MinCellSize float64 `json:"min_cell_size"`
	Entries     []Entry `json:"entries"`
}

// PointSetStats describes an indexed point set without its entries
type PointSetStats struct {
	Name        string  `json:"name"`
	Bounds      Rect    `json:"bounds"`
	MaxEntries  int     `json:"max_entries"`
	MinCellSize float64 `json:"min_cell_size"`
	Entries     int     `json:"entries"`
	Height      int     `json:"height"`
	Size        int     `json:"size"`
}

func (p Point) Quad() quadtree.Point {
	return quadtree.Pt(p.X, p.Y)
}

func (r Rect) Quad() quadtree.Rect {
	return quadtree.Rect{Min: r.Min.Quad(), Max: r.Max.Quad()}
}

func (e Entry) Point() quadtree.Point {
	return quadtree.Pt(e.X, e.Y)
}

// IndexedEntries pairs each entry's position in Entries with its location.
func (ps *PointSet) IndexedEntries() []quadtree.Entry[int] {
	out := make([]quadtree.Entry[int], len(ps.Entries))
	for i, e := range ps.Entries {
		out[i] = quadtree.Entry[int]{ID: i, Point: e.Point()}
	}
	return out
}

// IDs maps entry positions back to entry IDs.
func (ps *PointSet) IDs(positions []int) []int64 {
	ids := make([]int64, len(positions))
	for i, pos := range positions {
		ids[i] = ps.Entries[pos].ID
	}
	return ids
}

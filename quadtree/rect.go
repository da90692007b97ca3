package quadtree

import (
	"math"
	"strconv"
)

// Point represents a point in 2D space
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return "[" + strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64) + "]"
}

// DistanceSq returns the squared euclidean distance between p and o
func (p Point) DistanceSq(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle given by its min and max corners
type Rect struct {
	Min, Max Point
}

// R builds a Rect from an origin and a size, like a canvas rectangle.
func R(x, y, width, height float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + width, y + height}}
}

// Around returns the square of side 2*radius centred on p.
func Around(p Point, radius float64) Rect {
	return Rect{
		Min: Point{p.X - radius, p.Y - radius},
		Max: Point{p.X + radius, p.Y + radius},
	}
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Midpoint is computed from the width and height so it stays finite for
// any rect with finite sides.
func (r Rect) Midpoint() Point {
	return Point{r.Min.X + r.Width()/2, r.Min.Y + r.Height()/2}
}

// Overlaps reports whether r and other share any point. Touching edges
// count as an overlap.
func (r Rect) Overlaps(other Rect) bool {
	return other.Min.X <= r.Max.X &&
		other.Max.X >= r.Min.X &&
		other.Min.Y <= r.Max.Y &&
		other.Max.Y >= r.Min.Y
}

// Contains reports whether p lies in r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Split cuts r at its midpoint into NW, NE, SW, SE, in that order. North is
// the half with the larger y.
func (r Rect) Split() [4]Rect {
	mid := r.Midpoint()
	return [4]Rect{
		{Min: Point{r.Min.X, mid.Y}, Max: Point{mid.X, r.Max.Y}},
		{Min: mid, Max: r.Max},
		{Min: r.Min, Max: mid},
		{Min: Point{mid.X, r.Min.Y}, Max: Point{r.Max.X, mid.Y}},
	}
}

// valid reports whether r has ordered corners and finite sides.
func (r Rect) valid() bool {
	return finite(r.Width()) && finite(r.Height()) &&
		r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// finite is false for NaN and both infinities. The side of a rect with an
// infinite or NaN corner is never finite.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (r Rect) String() string {
	return r.Min.String() + " _ " + r.Max.String()
}

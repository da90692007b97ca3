/*
Package quadtree implements an immutable point-region quadtree.

A tree is built in one pass from a bounding rectangle and a set of
identifier/point entries, and queried with rectangles. There is no insert or
delete; when the point set changes, build a new tree. A built tree is never
mutated, so query functions derived from it are safe for concurrent use.
*/
package quadtree

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMinCellSize is the smallest cell side that is still subdivided.
const DefaultMinCellSize = 1.0

// ErrInvalidArgument is returned for a non-positive node capacity or cell
// size, or a bounding rectangle that is inverted or not finite.
var ErrInvalidArgument = errors.New("quadtree: invalid argument")

// Entry pairs an application identifier with a location
type Entry[R any] struct {
	ID    R
	Point Point
}

// Node is either a *Tip or a *Branch.
type Node[R any] interface {
	Bounds() Rect
	sealed()
}

// Tip is a leaf holding the entries that stopped at its rectangle
type Tip[R any] struct {
	Rect    Rect
	Entries []Entry[R]
}

// Branch is an internal node with one child per quadrant of Rect.Split()
type Branch[R any] struct {
	Rect           Rect
	NW, NE, SW, SE Node[R]
}

func (t *Tip[R]) Bounds() Rect    { return t.Rect }
func (b *Branch[R]) Bounds() Rect { return b.Rect }
func (*Tip[R]) sealed()           {}
func (*Branch[R]) sealed()        {}

// Children returns the quadrants in NW, NE, SW, SE order.
func (b *Branch[R]) Children() [4]Node[R] {
	return [4]Node[R]{b.NW, b.NE, b.SW, b.SE}
}

type builder[R any] struct {
	maxEntries  int
	minCellSize float64
}

func newBuilder[R any](maxEntries int, minCellSize float64) (builder[R], error) {
	if maxEntries <= 0 {
		return builder[R]{}, fmt.Errorf("%w: max entries per node must be positive, got %d", ErrInvalidArgument, maxEntries)
	}
	if !(minCellSize > 0) || math.IsInf(minCellSize, 1) {
		return builder[R]{}, fmt.Errorf("%w: min cell size must be positive, got %v", ErrInvalidArgument, minCellSize)
	}
	return builder[R]{maxEntries: maxEntries, minCellSize: minCellSize}, nil
}

func checkBounds(bounds Rect) error {
	if !bounds.valid() {
		return fmt.Errorf("%w: bounding rect %v must be finite with min not above max", ErrInvalidArgument, bounds)
	}
	return nil
}

// Validate reports the error Build would return for these parameters,
// without building anything.
func Validate(maxEntries int, minCellSize float64, bounds Rect) error {
	if _, err := newBuilder[struct{}](maxEntries, minCellSize); err != nil {
		return err
	}
	return checkBounds(bounds)
}

// Build unfolds bounds and entries into a tree. A rectangle becomes a Tip
// once it holds at most maxEntries entries, or once its width or height
// drops below minCellSize; otherwise it is split at its midpoint and the
// entries are divided between the four quadrants.
//
// Entries are expected to lie inside bounds. Entries outside it are kept
// (Size counts them) but a query only finds them when the query overlaps
// the rectangle of the tip they ended up in.
func Build[R any](maxEntries int, minCellSize float64, bounds Rect, entries []Entry[R]) (Node[R], error) {
	b, err := newBuilder[R](maxEntries, minCellSize)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(bounds); err != nil {
		return nil, err
	}
	return b.build(seed[R]{rect: bounds, entries: entries}), nil
}

func (b builder[R]) build(s seed[R]) Node[R] {
	l := b.unfoldStep(s)
	if l.tip {
		return &Tip[R]{Rect: l.rect, Entries: l.entries}
	}
	return &Branch[R]{
		Rect: l.rect,
		NW:   b.build(l.children[0]),
		NE:   b.build(l.children[1]),
		SW:   b.build(l.children[2]),
		SE:   b.build(l.children[3]),
	}
}

// seed is the state unfolded into a node.
type seed[R any] struct {
	rect    Rect
	entries []Entry[R]
}

// layer is one level of a tree whose children have been replaced by A.
type layer[R, A any] struct {
	rect     Rect
	tip      bool
	entries  []Entry[R]
	children [4]A
}

func mapLayer[R, A, B any](l layer[R, A], f func(A) B) layer[R, B] {
	out := layer[R, B]{rect: l.rect, tip: l.tip, entries: l.entries}
	if !l.tip {
		for i, c := range l.children {
			out.children[i] = f(c)
		}
	}
	return out
}

func (b builder[R]) ready(s seed[R]) bool {
	return len(s.entries) <= b.maxEntries ||
		s.rect.Height() < b.minCellSize ||
		s.rect.Width() < b.minCellSize ||
		!splittable(s.rect)
}

// splittable is false once rounding puts the midpoint on a corner, where a
// quadrant would repeat its parent.
func splittable(r Rect) bool {
	mid := r.Midpoint()
	return mid.X != r.Min.X && mid.X != r.Max.X &&
		mid.Y != r.Min.Y && mid.Y != r.Max.Y
}

func (b builder[R]) unfoldStep(s seed[R]) layer[R, seed[R]] {
	if b.ready(s) {
		return layer[R, seed[R]]{rect: s.rect, tip: true, entries: s.entries}
	}
	quads := s.rect.Split()
	parts := partition(s.rect.Midpoint(), s.entries)
	l := layer[R, seed[R]]{rect: s.rect}
	for i := range quads {
		l.children[i] = seed[R]{rect: quads[i], entries: parts[i]}
	}
	return l
}

// partition divides entries into NW, NE, SW, SE around mid: first
// y >= mid.Y is north, then x < mid.X is west.
func partition[R any](mid Point, entries []Entry[R]) [4][]Entry[R] {
	var parts [4][]Entry[R]
	for _, e := range entries {
		i := 0
		if e.Point.Y < mid.Y {
			i = 2
		}
		if e.Point.X >= mid.X {
			i++
		}
		parts[i] = append(parts[i], e)
	}
	return parts
}

func project[R any](n Node[R]) layer[R, Node[R]] {
	switch n := n.(type) {
	case *Tip[R]:
		return layer[R, Node[R]]{rect: n.Rect, tip: true, entries: n.Entries}
	case *Branch[R]:
		return layer[R, Node[R]]{rect: n.Rect, children: n.Children()}
	}
	panic(fmt.Sprintf("quadtree: unknown node type %T", n))
}

// fold reduces a tree bottom-up with alg.
func fold[R, A any](n Node[R], alg func(layer[R, A]) A) A {
	return alg(mapLayer[R, Node[R], A](project[R](n), func(c Node[R]) A { return fold(c, alg) }))
}

func queryAlgebra[R any](l layer[R, func(Rect) []R]) func(Rect) []R {
	return func(q Rect) []R {
		if !l.rect.Overlaps(q) {
			return nil
		}
		if l.tip {
			return Filter(l.entries, q)
		}
		var ids []R
		for _, child := range l.children {
			ids = append(ids, child(q)...)
		}
		return ids
	}
}

// QueryBuilder folds a tree into a lookup function returning the IDs of
// every entry whose point lies in the query rectangle, edges included.
// Results come back in NW, NE, SW, SE order, which callers should not rely
// on.
func QueryBuilder[R any](n Node[R]) func(Rect) []R {
	return fold[R, func(Rect) []R](n, queryAlgebra[R])
}

// Query is QueryBuilder(n)(q) for one-off lookups.
func Query[R any](n Node[R], q Rect) []R {
	return QueryBuilder[R](n)(q)
}

// Filter is the linear scan equivalent of a query.
func Filter[R any](entries []Entry[R], q Rect) []R {
	var ids []R
	for _, e := range entries {
		if q.Contains(e.Point) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

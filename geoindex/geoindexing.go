// Package geoindex answers range and nearby lookups over a point set with one
// of several interchangeable spatial indexes.
package geoindex

import (
	"errors"
	"fmt"

	"quadtree-index/models"
	"quadtree-index/quadtree"
)

type GeoIndexingTechnique string

const (
	QuadtreeTechnique GeoIndexingTechnique = "quadtree"
	RTreeTechnique    GeoIndexingTechnique = "rtree"
	GeohashTechnique  GeoIndexingTechnique = "geohash"
)

const defaultGeohashPrecision = 2

var (
	ErrUnknownTechnique = errors.New("unsupported geo-indexing technique")
	ErrNoResults        = errors.New("no nearby points found after maximum retries")
)

// ParseTechnique maps a name to a technique; the empty name selects fallback.
func ParseTechnique(name string, fallback GeoIndexingTechnique) (GeoIndexingTechnique, error) {
	switch t := GeoIndexingTechnique(name); t {
	case "":
		return fallback, nil
	case QuadtreeTechnique, RTreeTechnique, GeohashTechnique:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTechnique, name)
}

// SpatialIndex is a read-only index over one point set. Lookups work on
// positions in Set.Entries and are translated to entry IDs on the way out.
type SpatialIndex struct {
	Set       *models.PointSet
	Technique GeoIndexingTechnique
	// Tree is only set for the quadtree technique.
	Tree   quadtree.Node[int]
	search func(quadtree.Rect) []int
}

// Options tunes techniques that take extra parameters.
type Options struct {
	GeohashPrecision uint
}

// New builds an index of the given technique over ps. The point set's own
// MaxEntries and MinCellSize drive the quadtree build, and are checked for
// every technique so that any set accepted here can later be rebuilt as a
// quadtree.
func New(technique GeoIndexingTechnique, ps *models.PointSet, opts Options) (*SpatialIndex, error) {
	if err := quadtree.Validate(ps.MaxEntries, ps.MinCellSize, ps.Bounds.Quad()); err != nil {
		return nil, err
	}
	idx := &SpatialIndex{Set: ps, Technique: technique}
	switch technique {
	case QuadtreeTechnique:
		tree, err := quadtree.Build(ps.MaxEntries, ps.MinCellSize, ps.Bounds.Quad(), ps.IndexedEntries())
		if err != nil {
			return nil, err
		}
		idx.Tree = tree
		idx.search = quadtree.QueryBuilder[int](tree)
	case RTreeTechnique:
		idx.search = newRTreeSearch(ps)
	case GeohashTechnique:
		precision := opts.GeohashPrecision
		if precision == 0 {
			precision = defaultGeohashPrecision
		}
		idx.search = newGeohashSearch(ps, precision)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTechnique, technique)
	}
	return idx, nil
}

// Query returns the IDs of entries inside q, edges included.
func (idx *SpatialIndex) Query(q quadtree.Rect) []int64 {
	return idx.Set.IDs(idx.search(q))
}

// Nearby returns the IDs of entries within radius of center.
func (idx *SpatialIndex) Nearby(center quadtree.Point, radius float64) []int64 {
	var positions []int
	for _, pos := range idx.search(quadtree.Around(center, radius)) {
		if idx.Set.Entries[pos].Point().DistanceSq(center) <= radius*radius {
			positions = append(positions, pos)
		}
	}
	return idx.Set.IDs(positions)
}

// Stats reports the tree shape for quadtree indexes; other techniques only
// fill in the entry counts.
func (idx *SpatialIndex) Stats() models.PointSetStats {
	st := models.PointSetStats{
		Name:        idx.Set.Name,
		Bounds:      idx.Set.Bounds,
		MaxEntries:  idx.Set.MaxEntries,
		MinCellSize: idx.Set.MinCellSize,
		Entries:     len(idx.Set.Entries),
		Size:        len(idx.Set.Entries),
	}
	if idx.Tree != nil {
		st.Height = quadtree.Height[int](idx.Tree)
		st.Size = quadtree.Size[int](idx.Tree)
	}
	return st
}

// SearchNearbyWithRetries doubles the search radius until something is
// found or maxRetries lookups came back empty.
func SearchNearbyWithRetries(idx *SpatialIndex, center quadtree.Point, radius float64, maxRetries int) ([]int64, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		if results := idx.Nearby(center, radius); len(results) > 0 {
			return results, nil
		}
		radius *= 2 // Increase the search radius for the next retry
	}
	return nil, ErrNoResults
}

package quadtree

// QueryFromList fuses Build and QueryBuilder. The returned function takes
// bounds and entries and gives back a lookup that never materialises a
// tree: every call unfolds only the quadrants that overlap the query and
// folds them straight into the result. Use it for one-shot lookups; for
// repeated queries over the same points, Build once and use QueryBuilder.
//
// Bounds are not checked per call: for bounds Validate rejects, the lookup
// finds nothing, where Build would have returned ErrInvalidArgument.
func QueryFromList[R any](maxEntries int, minCellSize float64) (func(Rect, []Entry[R]) func(Rect) []R, error) {
	b, err := newBuilder[R](maxEntries, minCellSize)
	if err != nil {
		return nil, err
	}
	return func(bounds Rect, entries []Entry[R]) func(Rect) []R {
		if !bounds.valid() {
			return func(Rect) []R { return nil }
		}
		return b.refold(seed[R]{rect: bounds, entries: entries})
	}, nil
}

// refold is foldStep . map(refold) . unfoldStep, deferred until a query
// arrives.
func (b builder[R]) refold(s seed[R]) func(Rect) []R {
	return func(q Rect) []R {
		if !s.rect.Overlaps(q) {
			return nil
		}
		return queryAlgebra(mapLayer(b.unfoldStep(s), b.refold))(q)
	}
}

package quadtree_test

import (
	"math/rand"
	"testing"

	. "quadtree-index/quadtree"
)

const benchVision = 20.0

func benchEntries(n int) (Rect, []Entry[int]) {
	bounds := R(0, 0, 500, 500)
	return bounds, randomEntries(rand.New(rand.NewSource(42)), n, bounds)
}

func BenchmarkBuild(b *testing.B) {
	bounds, entries := benchEntries(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(1, 1, bounds, entries); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkQueryTree(b *testing.B) {
	bounds, entries := benchEntries(1000)
	tree, err := Build(4, 1, bounds, entries)
	if err != nil {
		b.Fatal(err)
	}
	lookup := QueryBuilder[int](tree)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := entries[i%len(entries)]
		lookup(Around(e.Point, benchVision))
	}
}

// BenchmarkLookupAll rebuilds and looks up every entry once per iteration,
// which is what one simulation tick costs.
func BenchmarkLookupAll(b *testing.B) {
	bounds, entries := benchEntries(100)

	b.Run("tree", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tree, _ := Build(1, 1, bounds, entries)
			lookup := QueryBuilder[int](tree)
			for _, e := range entries {
				lookup(Around(e.Point, benchVision))
			}
		}
	})
	b.Run("refold", func(b *testing.B) {
		fused, _ := QueryFromList[int](1, 1)
		for i := 0; i < b.N; i++ {
			lookup := fused(bounds, entries)
			for _, e := range entries {
				lookup(Around(e.Point, benchVision))
			}
		}
	})
	b.Run("linear", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			for _, e := range entries {
				Filter(entries, Around(e.Point, benchVision))
			}
		}
	})
}

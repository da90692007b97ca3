package geoindex

import (
	"sort"
	"sync"

	"quadtree-index/models"
)

// Registry holds the indexed point sets of a running server. Indexes are
// built lazily per technique and replaced wholesale when a set is replaced,
// so readers never see a half-built index.
type Registry struct {
	mu      sync.RWMutex
	opts    Options
	entries map[string]*registryEntry
}

type registryEntry struct {
	set     *models.PointSet
	indexes map[GeoIndexingTechnique]*SpatialIndex
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, entries: make(map[string]*registryEntry)}
}

// Put indexes ps with the given technique and replaces any set of the same
// name. Nothing is replaced if indexing fails.
func (r *Registry) Put(ps *models.PointSet, technique GeoIndexingTechnique) (*SpatialIndex, error) {
	idx, err := New(technique, ps, r.opts)
	if err != nil {
		return nil, err
	}
	r.Add(idx)
	return idx, nil
}

// Add registers an already built index, replacing any set of the same name.
func (r *Registry) Add(idx *SpatialIndex) {
	r.mu.Lock()
	r.entries[idx.Set.Name] = &registryEntry{
		set:     idx.Set,
		indexes: map[GeoIndexingTechnique]*SpatialIndex{idx.Technique: idx},
	}
	r.mu.Unlock()
}

func (r *Registry) Options() Options {
	return r.opts
}

// Index returns the index of a registered set, building it for technique on
// first use. ok is false when no set of that name is registered.
func (r *Registry) Index(name string, technique GeoIndexingTechnique) (idx *SpatialIndex, ok bool, err error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	if ok {
		idx = e.indexes[technique]
	}
	r.mu.RUnlock()
	if !ok || idx != nil {
		return idx, ok, nil
	}

	idx, err = New(technique, e.set, r.opts)
	if err != nil {
		return nil, true, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, still := r.entries[name]; still && cur == e {
		if existing := e.indexes[technique]; existing != nil {
			return existing, true, nil
		}
		e.indexes[technique] = idx
	}
	return idx, true, nil
}

func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	return ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

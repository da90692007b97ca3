package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quadtree-index/cache"
	"quadtree-index/config"
	"quadtree-index/database"
	"quadtree-index/geoindex"
	"quadtree-index/models"
	"quadtree-index/quadtree"
)

// PointSetStore is the durable home of point sets.
type PointSetStore interface {
	Save(ctx context.Context, ps *models.PointSet) error
	Load(ctx context.Context, name string) (*models.PointSet, error)
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}

// PointSetCache sits in front of the store.
type PointSetCache interface {
	Get(ctx context.Context, name string) (*models.PointSet, error)
	Set(ctx context.Context, ps *models.PointSet) error
	Delete(ctx context.Context, name string) error
}

type Handler struct {
	Store    PointSetStore
	Cache    PointSetCache
	Registry *geoindex.Registry
	Index    config.IndexConfig
}

var errNotFound = errors.New("point set not found")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) defaultTechnique() geoindex.GeoIndexingTechnique {
	t, err := geoindex.ParseTechnique(h.Index.Technique, geoindex.QuadtreeTechnique)
	if err != nil {
		return geoindex.QuadtreeTechnique
	}
	return t
}

// resolve finds the index of a named set, falling back from the registry
// to the cache and then the database.
func (h *Handler) resolve(ctx context.Context, name string, technique geoindex.GeoIndexingTechnique) (*geoindex.SpatialIndex, error) {
	idx, ok, err := h.Registry.Index(name, technique)
	if ok || err != nil {
		return idx, err
	}

	ps, err := h.Cache.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("cache lookup of %s failed: %v", name, err)
		}
		ps, err = h.Store.Load(ctx, name)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, errNotFound
			}
			return nil, err
		}
		if err := h.Cache.Set(ctx, ps); err != nil {
			log.Printf("caching %s failed: %v", name, err)
		}
	}
	return h.Registry.Put(ps, technique)
}

func (h *Handler) techniqueParam(r *http.Request) (geoindex.GeoIndexingTechnique, error) {
	return geoindex.ParseTechnique(r.URL.Query().Get("technique"), h.defaultTechnique())
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "Point set not found", http.StatusNotFound)
	case errors.Is(err, quadtree.ErrInvalidArgument), errors.Is(err, geoindex.ErrUnknownTechnique):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("request failed: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// CreatePointSet indexes, persists and caches a point set, replacing any
// set with the same name
func (h *Handler) CreatePointSet(w http.ResponseWriter, r *http.Request) {
	var ps models.PointSet
	if err := json.NewDecoder(r.Body).Decode(&ps); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if ps.Name == "" {
		http.Error(w, "Point set name is required", http.StatusBadRequest)
		return
	}
	if ps.MaxEntries == 0 {
		ps.MaxEntries = h.Index.MaxEntries
	}
	if ps.MinCellSize == 0 {
		ps.MinCellSize = h.Index.MinCellSize
	}

	technique, err := h.techniqueParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	// building first rejects bad parameters before anything is stored
	idx, err := geoindex.New(technique, &ps, h.Registry.Options())
	if err != nil {
		h.fail(w, err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Save(ctx, &ps); err != nil {
		if errors.Is(err, database.ErrDuplicateEntry) {
			http.Error(w, "Duplicate entry id", http.StatusConflict)
			return
		}
		h.fail(w, err)
		return
	}
	if err := h.Cache.Set(ctx, &ps); err != nil {
		log.Printf("caching %s failed: %v", ps.Name, err)
	}
	h.Registry.Add(idx)

	writeJSON(w, http.StatusCreated, idx.Stats())
}

// ListPointSets returns the names of all stored point sets
func (h *Handler) ListPointSets(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.Names(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": names})
}

// GetPointSet describes a point set and the shape of its quadtree
func (h *Handler) GetPointSet(w http.ResponseWriter, r *http.Request) {
	idx, err := h.resolve(r.Context(), mux.Vars(r)["name"], geoindex.QuadtreeTechnique)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idx.Stats())
}

// QueryPointSet returns the ids of entries inside the posted rectangle
func (h *Handler) QueryPointSet(w http.ResponseWriter, r *http.Request) {
	var rect models.Rect
	if err := json.NewDecoder(r.Body).Decode(&rect); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	technique, err := h.techniqueParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	idx, err := h.resolve(r.Context(), mux.Vars(r)["name"], technique)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"technique": technique,
		"ids":       idx.Query(rect.Quad()),
	})
}

// NearbyHandler searches around a point, doubling the radius on misses
func (h *Handler) NearbyHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	var coords [3]float64
	for i, key := range []string{"x", "y", "radius"} {
		v, err := strconv.ParseFloat(params.Get(key), 64)
		if err != nil {
			http.Error(w, "Invalid "+key, http.StatusBadRequest)
			return
		}
		coords[i] = v
	}
	if !(coords[2] > 0) {
		http.Error(w, "Radius must be positive", http.StatusBadRequest)
		return
	}
	technique, err := h.techniqueParam(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	idx, err := h.resolve(r.Context(), mux.Vars(r)["name"], technique)
	if err != nil {
		h.fail(w, err)
		return
	}

	ids, err := geoindex.SearchNearbyWithRetries(idx, quadtree.Pt(coords[0], coords[1]), coords[2], h.Index.MaxRetries)
	if err != nil {
		if errors.Is(err, geoindex.ErrNoResults) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"technique": technique,
		"ids":       ids,
	})
}

// TreeHandler dumps the quadtree of a point set as text
func (h *Handler) TreeHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := h.resolve(r.Context(), mux.Vars(r)["name"], geoindex.QuadtreeTechnique)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(quadtree.Show[int](idx.Tree)))
}

// DeletePointSet removes a point set everywhere it is kept
func (h *Handler) DeletePointSet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ctx := r.Context()

	h.Registry.Delete(name)
	if err := h.Cache.Delete(ctx, name); err != nil {
		log.Printf("evicting %s failed: %v", name, err)
	}
	if err := h.Store.Delete(ctx, name); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Point set not found", http.StatusNotFound)
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Point set deleted"})
}

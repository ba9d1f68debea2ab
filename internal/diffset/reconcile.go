package diffset

import "sync"

// Reconciler accumulates per-file added and removed line sets across every
// commit of a pull request. It is safe for concurrent use: file analyses run
// in parallel and merge their extracted sets here.
type Reconciler struct {
	mu      sync.Mutex
	added   map[string]LineSet
	removed map[string]LineSet
}

// NewReconciler creates an empty Reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{
		added:   make(map[string]LineSet),
		removed: make(map[string]LineSet),
	}
}

// Record merges one (commit, file) pair's extracted sets into the running
// per-file unions. Merge order is irrelevant; the result is a set union.
func (r *Reconciler) Record(filename string, added, removed LineSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(added) > 0 {
		if r.added[filename] == nil {
			r.added[filename] = make(LineSet)
		}
		r.added[filename].Merge(added)
	}
	if len(removed) > 0 {
		if r.removed[filename] == nil {
			r.removed[filename] = make(LineSet)
		}
		r.removed[filename].Merge(removed)
	}
}

// Cancelled returns, per filename, the lines present in both the accumulated
// added and removed unions. Files with an empty intersection are omitted.
// A line appears at most once per file regardless of how many commits touched
// it, and regardless of whether the add or the remove came first.
func (r *Reconciler) Cancelled() map[string]LineSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]LineSet)
	for file, added := range r.added {
		removed, ok := r.removed[file]
		if !ok {
			continue
		}
		if both := added.Intersect(removed); len(both) > 0 {
			out[file] = both
		}
	}
	return out
}

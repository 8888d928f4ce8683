package workspace

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrResourceCap is returned when an Apply would exceed a configured
// limit; the file is marked degraded instead of being indexed.
var ErrResourceCap = errors.New("workspace resource cap exceeded")

// Caps bound the index size. Zero means unlimited.
type Caps struct {
	MaxFiles          int
	MaxSymbolsPerFile int
}

// Index is the cross-file symbol index. One RWMutex guards everything:
// queries are frequent and cheap, mutations are per-document splices.
type Index struct {
	mu       sync.RWMutex
	caps     Caps
	building int
	forward  map[string][]SymbolInfo   // uri -> declared symbols
	reverse  map[SymbolKey][]Location  // decl key -> ordered occurrences
	defs     map[SymbolKey]Location    // decl key -> declaration site
	byURI    map[string][]RefEntry     // uri -> occurrences, span-ordered
	contrib  map[string][]SymbolKey    // uri -> keys it touched
	degraded map[string]Reason
	versions map[string]int32
}

func NewIndex(caps Caps) *Index {
	return &Index{
		caps:     caps,
		forward:  make(map[string][]SymbolInfo),
		reverse:  make(map[SymbolKey][]Location),
		defs:     make(map[SymbolKey]Location),
		byURI:    make(map[string][]RefEntry),
		contrib:  make(map[string][]SymbolKey),
		degraded: make(map[string]Reason),
		versions: make(map[string]int32),
	}
}

// BeginBuild and FinishBuild bracket a workspace scan or a pipeline
// run; the index reports Building while any is in flight.
func (x *Index) BeginBuild() {
	x.mu.Lock()
	x.building++
	x.mu.Unlock()
}

func (x *Index) FinishBuild() {
	x.mu.Lock()
	if x.building > 0 {
		x.building--
	}
	x.mu.Unlock()
}

// State returns the global index state.
func (x *Index) State() State {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.building > 0 {
		return StateBuilding
	}
	return StateReady
}

// FileState returns the per-file state and degradation reason.
func (x *Index) FileState(uri string) (State, Reason) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if reason, ok := x.degraded[uri]; ok {
		return StateDegraded, reason
	}
	if _, ok := x.forward[uri]; ok {
		return StateReady, ""
	}
	return StateBuilding, ""
}

// Apply splices one document version into the index atomically: the
// previous contribution of the URI is removed and the new one inserted
// under a single lock. Cap violations mark the file degraded and leave
// nothing of it behind.
func (x *Index) Apply(uri string, version int32, c Contribution) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, known := x.forward[uri]; !known {
		if x.caps.MaxFiles > 0 && len(x.forward) >= x.caps.MaxFiles {
			x.removeLocked(uri)
			x.degraded[uri] = ReasonResourceCap
			return fmt.Errorf("%w: %d files", ErrResourceCap, x.caps.MaxFiles)
		}
	}
	if x.caps.MaxSymbolsPerFile > 0 && len(c.Symbols) > x.caps.MaxSymbolsPerFile {
		x.removeLocked(uri)
		x.degraded[uri] = ReasonResourceCap
		return fmt.Errorf("%w: %d symbols in %s", ErrResourceCap, len(c.Symbols), uri)
	}

	x.removeLocked(uri)
	delete(x.degraded, uri)
	x.versions[uri] = version

	x.forward[uri] = c.Symbols
	keys := make(map[SymbolKey]bool)
	for _, sym := range c.Symbols {
		x.defs[sym.Key] = sym.Location
		keys[sym.Key] = true
	}
	refs := make([]RefEntry, len(c.Refs))
	copy(refs, c.Refs)
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Location.Span.Start < refs[j].Location.Span.Start
	})
	x.byURI[uri] = refs
	for _, ref := range refs {
		x.reverse[ref.Key] = insertLocation(x.reverse[ref.Key], ref.Location)
		keys[ref.Key] = true
	}

	list := make([]SymbolKey, 0, len(keys))
	for k := range keys {
		list = append(list, k)
	}
	x.contrib[uri] = list
	return nil
}

// Remove purges every contribution of the URI, including its degraded
// marker. Used on document close and file deletion.
func (x *Index) Remove(uri string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removeLocked(uri)
	delete(x.degraded, uri)
	delete(x.versions, uri)
}

// MarkDegraded records a failure for the file and drops its index data.
func (x *Index) MarkDegraded(uri string, reason Reason) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removeLocked(uri)
	x.degraded[uri] = reason
}

func (x *Index) removeLocked(uri string) {
	for _, key := range x.contrib[uri] {
		locs := x.reverse[key][:0]
		for _, loc := range x.reverse[key] {
			if loc.URI != uri {
				locs = append(locs, loc)
			}
		}
		if len(locs) == 0 {
			delete(x.reverse, key)
		} else {
			x.reverse[key] = locs
		}
		if def, ok := x.defs[key]; ok && def.URI == uri {
			delete(x.defs, key)
		}
	}
	delete(x.contrib, uri)
	delete(x.forward, uri)
	delete(x.byURI, uri)
}

// FindReferences returns every indexed occurrence of the key in stable
// order. partial is true while the index is still building or any file
// is degraded; callers surface it instead of pretending completeness.
func (x *Index) FindReferences(key SymbolKey) ([]Location, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	locs := x.reverse[key]
	out := make([]Location, len(locs))
	copy(out, locs)
	return out, x.partialLocked()
}

// FindDefinition resolves the occurrence at loc to its declaration.
func (x *Index) FindDefinition(loc Location) (Location, SymbolKey, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, ref := range x.byURI[loc.URI] {
		if ref.Location.Span.Start <= loc.Span.Start && loc.Span.Start < ref.Location.Span.End {
			if def, ok := x.defs[ref.Key]; ok {
				return def, ref.Key, true
			}
		}
	}
	return Location{}, SymbolKey{}, false
}

// KeyAt returns the declaration key of the occurrence at loc.
func (x *Index) KeyAt(loc Location) (SymbolKey, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, ref := range x.byURI[loc.URI] {
		if ref.Location.Span.Start <= loc.Span.Start && loc.Span.Start < ref.Location.Span.End {
			return ref.Key, true
		}
	}
	return SymbolKey{}, false
}

// WorkspaceSymbols returns declared symbols whose name contains the
// query, case-insensitively, excluding degraded files. Output is sorted
// by URI then span for deterministic pagination.
func (x *Index) WorkspaceSymbols(query string) []SymbolInfo {
	x.mu.RLock()
	defer x.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []SymbolInfo
	for uri, syms := range x.forward {
		if _, bad := x.degraded[uri]; bad {
			continue
		}
		for _, sym := range syms {
			if needle == "" || strings.Contains(strings.ToLower(sym.Name), needle) {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location.URI != out[j].Location.URI {
			return out[i].Location.URI < out[j].Location.URI
		}
		return out[i].Location.Span.Start < out[j].Location.Span.Start
	})
	return out
}

// Files returns the number of indexed files.
func (x *Index) Files() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.forward)
}

// Partial reports whether query results may be incomplete.
func (x *Index) Partial() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.partialLocked()
}

func (x *Index) partialLocked() bool {
	return x.building > 0 || len(x.degraded) > 0
}

// Version returns the last applied version for the URI.
func (x *Index) Version(uri string) (int32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	v, ok := x.versions[uri]
	return v, ok
}

func insertLocation(locs []Location, loc Location) []Location {
	at := sort.Search(len(locs), func(i int) bool {
		if locs[i].URI != loc.URI {
			return locs[i].URI > loc.URI
		}
		return locs[i].Span.Start >= loc.Span.Start
	})
	locs = append(locs, Location{})
	copy(locs[at+1:], locs[at:])
	locs[at] = loc
	return locs
}

package window

import (
	"iter"
	"maps"
	"slices"
)

// Arena owns every managed window and hands out stable IDs.
type Arena struct {
	windows   map[ID]*Window
	bySurface map[Surface]ID
	next      ID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		windows:   make(map[ID]*Window),
		bySurface: make(map[Surface]ID),
		next:      1,
	}
}

// Insert registers a surface and returns its window. A surface that is
// already registered keeps its existing window and ID.
func (a *Arena) Insert(s Surface) *Window {
	if id, ok := a.bySurface[s]; ok {
		return a.windows[id]
	}
	w := &Window{ID: a.next, Surface: s}
	a.next++
	a.windows[w.ID] = w
	a.bySurface[s] = w.ID
	return w
}

// Get returns the window with the given ID.
func (a *Arena) Get(id ID) (*Window, bool) {
	w, ok := a.windows[id]
	return w, ok
}

// Lookup finds the window wrapping s.
func (a *Arena) Lookup(s Surface) (*Window, bool) {
	id, ok := a.bySurface[s]
	if !ok {
		return nil, false
	}
	return a.windows[id], true
}

// Delete destroys a window. It reports whether the ID was known.
func (a *Arena) Delete(id ID) bool {
	w, ok := a.windows[id]
	if !ok {
		return false
	}
	delete(a.windows, id)
	delete(a.bySurface, w.Surface)
	return true
}

// Len returns the number of live windows.
func (a *Arena) Len() int {
	return len(a.windows)
}

// All yields live windows in ID order.
func (a *Arena) All() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for _, id := range slices.Sorted(maps.Keys(a.windows)) {
			if !yield(a.windows[id]) {
				return
			}
		}
	}
}

package trace

import (
	"cmp"
	"slices"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// Index is an in-memory Graph built from fetched fiber records
type Index struct {
	cores        map[int64]*domain.CableCore
	cables       map[int64]*domain.Cable
	terminations map[int64]*domain.PortTermination
	from         map[int64][]domain.FiberSplice
	into         map[int64][]domain.FiberSplice
}

// NewIndex indexes the given records. Splices are ordered by id so the walk is
// deterministic; when a core has several terminations the lowest id wins.
func NewIndex(cores []domain.CableCore, cables []domain.Cable, splices []domain.FiberSplice, terminations []domain.PortTermination) *Index {
	idx := &Index{
		cores:        make(map[int64]*domain.CableCore, len(cores)),
		cables:       make(map[int64]*domain.Cable, len(cables)),
		terminations: make(map[int64]*domain.PortTermination, len(terminations)),
		from:         make(map[int64][]domain.FiberSplice),
		into:         make(map[int64][]domain.FiberSplice),
	}

	for i := range cores {
		idx.cores[cores[i].ID] = &cores[i]
	}
	for i := range cables {
		idx.cables[cables[i].ID] = &cables[i]
	}
	for i := range terminations {
		t := &terminations[i]
		if prev, ok := idx.terminations[t.CoreID]; ok && prev.ID < t.ID {
			continue
		}
		idx.terminations[t.CoreID] = t
	}

	sorted := slices.SortedFunc(slices.Values(splices), func(a, b domain.FiberSplice) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for _, s := range sorted {
		idx.from[s.IncomingCoreID] = append(idx.from[s.IncomingCoreID], s)
		idx.into[s.OutgoingCoreID] = append(idx.into[s.OutgoingCoreID], s)
	}

	return idx
}

// Core looks up a core by id
func (idx *Index) Core(id int64) (*domain.CableCore, bool) {
	c, ok := idx.cores[id]
	return c, ok
}

// Cable looks up a cable by id
func (idx *Index) Cable(id int64) (*domain.Cable, bool) {
	c, ok := idx.cables[id]
	return c, ok
}

// Termination returns the termination of a core, if any
func (idx *Index) Termination(coreID int64) (*domain.PortTermination, bool) {
	t, ok := idx.terminations[coreID]
	return t, ok
}

// SplicesFrom returns the splices where the core is the incoming side
func (idx *Index) SplicesFrom(coreID int64) []domain.FiberSplice {
	return idx.from[coreID]
}

// SplicesInto returns the splices where the core is the outgoing side
func (idx *Index) SplicesInto(coreID int64) []domain.FiberSplice {
	return idx.into[coreID]
}

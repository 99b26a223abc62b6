// Package trace reconstructs the physical path of an optical signal through
// cable cores, splices and port terminations.
//
// The walk is iterative and cycle guarded. Every call owns its visited set.
package trace

import (
	"iter"
	"slices"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// SegmentType tags a path segment
type SegmentType string

const (
	SegmentCore        SegmentType = "core"
	SegmentSplice      SegmentType = "splice"
	SegmentTermination SegmentType = "termination"
)

// Segment is one step of a signal path.
//
// Core segments carry CoreID, Label and CableName. Splice segments carry the
// splice and enclosure. Termination segments carry the port reference.
type Segment struct {
	Type SegmentType `json:"type"`

	CoreID    int64  `json:"core_id,omitempty"`
	Label     string `json:"label,omitempty"`
	CableName string `json:"cable_name,omitempty"`

	SpliceID      int64                `json:"splice_id,omitempty"`
	EnclosureKind domain.EnclosureKind `json:"enclosure_kind,omitempty"`
	EnclosureID   int64                `json:"enclosure_id,omitempty"`
	LossDB        *float64             `json:"loss_db,omitempty"`

	PortKind domain.PortKind `json:"port_kind,omitempty"`
	PortID   int64           `json:"port_id,omitempty"`
}

// Graph is the read view of the fiber plant a trace walks
type Graph interface {
	Core(id int64) (*domain.CableCore, bool)
	Cable(id int64) (*domain.Cable, bool)
	Termination(coreID int64) (*domain.PortTermination, bool)
	// SplicesFrom returns splices where the core is the incoming side
	SplicesFrom(coreID int64) []domain.FiberSplice
	// SplicesInto returns splices where the core is the outgoing side
	SplicesInto(coreID int64) []domain.FiberSplice
}

// Trace returns the full signal path starting at the given core
func Trace(g Graph, start int64) ([]Segment, error) {
	seq, err := Segments(g, start)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Segments returns a lazy sequence of the signal path starting at the given
// core. It fails with domain.ErrNotFound if the start core does not exist.
//
// At each core a termination ends the path. Otherwise the walk follows a
// splice where the core is the incoming side, then one where it is the
// outgoing side. A splice already traversed, or one leading back to a core
// already on the path, is never followed. A splice whose far core does not
// resolve is skipped.
func Segments(g Graph, start int64) (iter.Seq[Segment], error) {
	if _, ok := g.Core(start); !ok {
		return nil, errors.Wrap(domain.ErrNotFound, "core not found", j.KV("core_id", start))
	}

	return func(yield func(Segment) bool) {
		visited := make(map[int64]bool)
		traversed := make(map[int64]bool)

		cur := start
		for {
			core, ok := g.Core(cur)
			if !ok || visited[cur] {
				return
			}
			visited[cur] = true

			if !yield(coreSegment(g, core)) {
				return
			}

			if t, ok := g.Termination(cur); ok {
				yield(Segment{
					Type:     SegmentTermination,
					PortKind: t.PortKind,
					PortID:   t.PortID,
				})
				return
			}

			s, ok := nextSplice(g, cur, visited, traversed)
			if !ok {
				return
			}
			traversed[s.ID] = true

			if !yield(spliceSegment(s)) {
				return
			}
			cur = s.OtherCore(cur)
		}
	}, nil
}

func nextSplice(g Graph, cur int64, visited, traversed map[int64]bool) (domain.FiberSplice, bool) {
	candidates := slices.Concat(g.SplicesFrom(cur), g.SplicesInto(cur))
	for _, s := range candidates {
		if traversed[s.ID] {
			continue
		}
		far := s.OtherCore(cur)
		if far == cur || visited[far] {
			continue
		}
		if _, ok := g.Core(far); !ok {
			continue
		}
		return s, true
	}
	return domain.FiberSplice{}, false
}

func coreSegment(g Graph, c *domain.CableCore) Segment {
	seg := Segment{
		Type:   SegmentCore,
		CoreID: c.ID,
		Label:  c.Label(),
	}
	if cable, ok := g.Cable(c.CableID); ok {
		seg.CableName = cable.Name
	}
	return seg
}

func spliceSegment(s domain.FiberSplice) Segment {
	loss := s.LossDB
	return Segment{
		Type:          SegmentSplice,
		SpliceID:      s.ID,
		EnclosureKind: s.Enclosure.Kind,
		EnclosureID:   s.Enclosure.ID,
		LossDB:        &loss,
	}
}

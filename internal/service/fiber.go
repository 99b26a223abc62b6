package service

import (
	"context"
	"math"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/repository"
	"github.com/stefanfredik/openaccess-sub000/internal/trace"
)

// FiberService splices cores and traces signal paths
type FiberService struct {
	store repository.FiberStore
	deps  Deps
}

// NewFiberService creates a new fiber service
func NewFiberService(store repository.FiberStore, deps Deps) *FiberService {
	return &FiberService{
		store: store,
		deps:  deps,
	}
}

// SpliceRequest asks for two cores to be joined inside an enclosure
type SpliceRequest struct {
	IncomingCoreID int64   `json:"incoming_core_id" validate:"required,gt=0"`
	OutgoingCoreID int64   `json:"outgoing_core_id" validate:"required,gt=0,nefield=IncomingCoreID"`
	EnclosureKind  string  `json:"enclosure_kind" validate:"required"`
	EnclosureID    int64   `json:"enclosure_id" validate:"required,gt=0"`
	LossDB         float64 `json:"loss_db" validate:"gte=0"`
}

// TraceResult is the signal path starting at a core
type TraceResult struct {
	CoreID   int64           `json:"core_id"`
	Segments []trace.Segment `json:"segments"`
}

// SpliceCores creates a splice between two cores
func (s *FiberService) SpliceCores(ctx context.Context, tenantID int64, req SpliceRequest) (splice *domain.FiberSplice, err error) {
	ctx, span := startSpan(ctx, "FiberService.SpliceCores", tenantID)
	defer func() { endSpan(span, err) }()

	kind, ok := domain.ParseEnclosureKind(req.EnclosureKind)
	if !ok {
		return nil, errors.Wrap(domain.ErrBadRequest, "unknown enclosure type", j.KV("enclosure_kind", req.EnclosureKind))
	}
	if req.IncomingCoreID == req.OutgoingCoreID {
		return nil, errors.Wrap(domain.ErrBadRequest, "a core cannot be spliced to itself", j.KV("core_id", req.IncomingCoreID))
	}
	if math.IsNaN(req.LossDB) || math.IsInf(req.LossDB, 0) || req.LossDB < 0 {
		return nil, errors.Wrap(domain.ErrBadRequest, "loss must be a non-negative number")
	}

	splice = &domain.FiberSplice{
		IncomingCoreID: req.IncomingCoreID,
		OutgoingCoreID: req.OutgoingCoreID,
		Enclosure:      domain.EnclosureRef{Kind: kind, ID: req.EnclosureID},
		LossDB:         req.LossDB,
	}

	if err := s.store.CreateSplice(ctx, tenantID, splice); err != nil {
		return nil, err
	}

	log.Info(ctx, "cores spliced",
		j.KV("tenant_id", tenantID),
		j.KV("splice_id", splice.ID),
		j.KV("enclosure", splice.Enclosure.String()))

	s.deps.invalidate(ctx, tenantID)
	s.deps.Events.Publish(Event{
		Type:     EventSpliceCreated,
		TenantID: tenantID,
		Payload:  splice,
	})

	return splice, nil
}

// TraceSignal returns the signal path starting at coreID
func (s *FiberService) TraceSignal(ctx context.Context, tenantID, coreID int64) (result *TraceResult, err error) {
	ctx, span := startSpan(ctx, "FiberService.TraceSignal", tenantID)
	defer func() { endSpan(span, err) }()

	start, err := s.store.GetCore(ctx, tenantID, coreID)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, errors.Wrap(domain.ErrNotFound, "core not found", j.KV("core_id", coreID))
	}

	plant, err := s.store.LoadFiberPlant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	idx := trace.NewIndex(plant.Cores, plant.Cables, plant.Splices, plant.Terminations)
	segments, err := trace.Trace(idx, coreID)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.ObserveTrace(len(segments))

	return &TraceResult{CoreID: coreID, Segments: segments}, nil
}

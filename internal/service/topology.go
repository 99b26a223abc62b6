package service

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/stefanfredik/openaccess-sub000/internal/cache"
	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/repository"
	"github.com/stefanfredik/openaccess-sub000/internal/topology"
)

// TopologyStore is the part of the connectivity store the topology reads
type TopologyStore interface {
	repository.DeviceStore
	repository.ConnectionStore
	repository.PositionStore
}

// TopologyService assembles device topologies and manages saved positions
type TopologyService struct {
	store    TopologyStore
	deps     Deps
	maxNodes int
}

// NewTopologyService creates a new topology service. maxNodes caps expanded
// nodes per build; 0 means unlimited.
func NewTopologyService(store TopologyStore, deps Deps, maxNodes int) *TopologyService {
	return &TopologyService{
		store:    store,
		deps:     deps,
		maxNodes: maxNodes,
	}
}

// Point is a layout coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeDetails is the flattened view of one device
type NodeDetails struct {
	ID          int64              `json:"id"`
	Kind        domain.DeviceKind  `json:"kind_tag"`
	UID         string             `json:"uid"`
	Name        string             `json:"name"`
	Code        string             `json:"code"`
	Status      string             `json:"status"`
	IPAddress   string             `json:"ip_address"`
	Connections []ConnectionDetail `json:"connections"`
}

// Direction of a connection relative to the inspected device
type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// ConnectionDetail is one connection as seen from the inspected device
type ConnectionDetail struct {
	ID             int64                 `json:"id"`
	Direction      Direction             `json:"direction"`
	ConnectionKind domain.ConnectionKind `json:"connection_kind"`
	LocalPort      string                `json:"local_port_label"`
	RemotePort     string                `json:"remote_port_label"`
	RemoteUID      string                `json:"remote_uid"`
	RemoteName     string                `json:"remote_name"`
}

// GetTopology assembles the tenant's topology forest
func (s *TopologyService) GetTopology(ctx context.Context, tenantID int64) (forest []*topology.Node, err error) {
	ctx, span := startSpan(ctx, "TopologyService.GetTopology", tenantID)
	defer func() { endSpan(span, err) }()

	snap, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	forest, stats := topology.Build(topology.Input{
		Devices:     snap.Devices,
		Connections: snap.Connections,
		Positions:   snap.PositionMap(),
	}, topology.Options{MaxNodes: s.maxNodes})
	s.deps.Metrics.ObserveBuild(time.Since(start), stats.Nodes, stats.Duplicates, stats.Dangling)

	if stats.Truncated {
		log.Info(ctx, "topology truncated", j.KV("tenant_id", tenantID), j.KV("max_nodes", s.maxNodes))
	}

	return forest, nil
}

// snapshot returns the tenant's devices, connections and positions, from the
// cache when possible
func (s *TopologyService) snapshot(ctx context.Context, tenantID int64) (*cache.Snapshot, error) {
	// The generation is read before the store so a write landing in between
	// keeps this snapshot out of the cache.
	var (
		gen       uint64
		cacheable bool
	)
	if s.deps.Cache != nil {
		snap, ok, err := s.deps.Cache.Get(ctx, tenantID)
		if err != nil {
			log.Error(ctx, errors.Wrap(err, "failed to read topology cache", j.KV("tenant_id", tenantID)))
		} else if ok {
			s.deps.Metrics.CacheResult(true)
			return snap, nil
		}
		s.deps.Metrics.CacheResult(false)

		gen, err = s.deps.Cache.Generation(ctx, tenantID)
		if err != nil {
			log.Error(ctx, errors.Wrap(err, "failed to read cache generation", j.KV("tenant_id", tenantID)))
		} else {
			cacheable = true
		}
	}

	devices, err := s.store.ListDevices(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	conns, err := s.store.ListConnections(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	positions, err := s.store.ListPositions(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	snap := &cache.Snapshot{Devices: devices, Connections: conns, Positions: positions}

	if cacheable {
		if err := s.deps.Cache.Set(ctx, tenantID, gen, snap); err != nil {
			log.Error(ctx, errors.Wrap(err, "failed to write topology cache", j.KV("tenant_id", tenantID)))
		}
	}

	return snap, nil
}

// GetNodeDetails returns one device with its outgoing and incoming
// connections. Connections whose far end no longer resolves are left out.
func (s *TopologyService) GetNodeDetails(ctx context.Context, tenantID int64, uid string) (details *NodeDetails, err error) {
	ctx, span := startSpan(ctx, "TopologyService.GetNodeDetails", tenantID)
	defer func() { endSpan(span, err) }()

	if uid == "" {
		return nil, errors.Wrap(domain.ErrBadRequest, "uid is required")
	}

	// A uid that cannot name a device is reported like an unknown device.
	ref, err := domain.ParseDeviceRef(uid)
	if errors.Is(err, domain.ErrBadRequest) {
		return nil, errors.Wrap(domain.ErrNotFound, "device not found", j.KV("uid", uid))
	} else if err != nil {
		return nil, err
	}

	device, err := s.store.GetDevice(ctx, tenantID, ref)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errors.Wrap(domain.ErrNotFound, "device not found", j.KV("uid", uid))
	}

	out, in, err := s.store.ConnectionsFor(ctx, tenantID, ref)
	if err != nil {
		return nil, err
	}

	details = &NodeDetails{
		ID:          device.ID,
		Kind:        device.Kind,
		UID:         device.UID(),
		Name:        device.Name,
		Code:        device.Code,
		Status:      device.DisplayStatus(),
		IPAddress:   device.IPAddress,
		Connections: make([]ConnectionDetail, 0, len(out)+len(in)),
	}

	remotes := make(map[domain.DeviceRef]*domain.Device)
	resolve := func(r domain.DeviceRef) (*domain.Device, error) {
		if d, ok := remotes[r]; ok {
			return d, nil
		}
		d, err := s.store.GetDevice(ctx, tenantID, r)
		if err != nil {
			return nil, err
		}
		remotes[r] = d
		return d, nil
	}

	for _, c := range out {
		remote, err := resolve(c.Destination)
		if err != nil {
			return nil, err
		}
		if remote == nil {
			continue
		}
		details.Connections = append(details.Connections, ConnectionDetail{
			ID:             c.ID,
			Direction:      DirectionOut,
			ConnectionKind: c.Kind,
			LocalPort:      c.SourcePortLabel(),
			RemotePort:     c.DestinationPortLabel(),
			RemoteUID:      remote.UID(),
			RemoteName:     remote.Name,
		})
	}

	for _, c := range in {
		remote, err := resolve(c.Source)
		if err != nil {
			return nil, err
		}
		if remote == nil {
			continue
		}
		details.Connections = append(details.Connections, ConnectionDetail{
			ID:             c.ID,
			Direction:      DirectionIn,
			ConnectionKind: c.Kind,
			LocalPort:      c.DestinationPortLabel(),
			RemotePort:     c.SourcePortLabel(),
			RemoteUID:      remote.UID(),
			RemoteName:     remote.Name,
		})
	}

	return details, nil
}

// UpdatePositions upserts a saved position per uid
func (s *TopologyService) UpdatePositions(ctx context.Context, tenantID int64, points map[string]Point) (err error) {
	ctx, span := startSpan(ctx, "TopologyService.UpdatePositions", tenantID)
	defer func() { endSpan(span, err) }()

	// Keys are stored under the canonical uid topology nodes carry, so a
	// namespaced kind tag lands on the same node.
	canonical := make(map[string]Point, len(points))
	for key, p := range points {
		ref, err := domain.ParseDeviceRef(key)
		if errors.Is(err, domain.ErrNotFound) {
			return errors.Wrap(domain.ErrBadRequest, "unknown device type", j.KV("uid", key))
		} else if err != nil {
			return err
		}
		if !finite(p.X) || !finite(p.Y) {
			return errors.Wrap(domain.ErrBadRequest, "position must be finite", j.KV("uid", key))
		}

		uid := ref.UID()
		if _, ok := canonical[uid]; ok {
			return errors.Wrap(domain.ErrBadRequest, "uid given more than once", j.KV("uid", uid))
		}
		canonical[uid] = p
	}

	uids := make([]string, 0, len(canonical))
	for uid := range canonical {
		uids = append(uids, uid)
	}
	slices.Sort(uids)

	positions := make([]domain.NodePosition, 0, len(uids))
	for _, uid := range uids {
		positions = append(positions, *domain.NewNodePosition(uid, canonical[uid].X, canonical[uid].Y))
	}

	if err := s.store.UpsertPositions(ctx, tenantID, positions); err != nil {
		return err
	}

	s.deps.invalidate(ctx, tenantID)
	s.deps.Events.Publish(Event{
		Type:     EventPositionsUpdated,
		TenantID: tenantID,
		Payload:  map[string]any{"uids": uids},
	})

	return nil
}

// GetPositions returns the tenant's saved positions
func (s *TopologyService) GetPositions(ctx context.Context, tenantID int64) ([]domain.NodePosition, error) {
	return s.store.ListPositions(ctx, tenantID)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

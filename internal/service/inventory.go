package service

import (
	"context"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/loader"
	"github.com/stefanfredik/openaccess-sub000/internal/repository"
)

// InventoryService replaces tenant inventories from YAML documents
type InventoryService struct {
	store repository.InventoryStore
	deps  Deps
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store repository.InventoryStore, deps Deps) *InventoryService {
	return &InventoryService{
		store: store,
		deps:  deps,
	}
}

// ImportFile loads and imports an inventory file
func (s *InventoryService) ImportFile(ctx context.Context, tenantID int64, path string) (map[string]int, error) {
	inv, err := loader.LoadYAML(path)
	if err != nil {
		s.deps.Metrics.ImportResult(err)
		return nil, err
	}
	return s.Import(ctx, tenantID, inv)
}

// ImportYAML parses and imports an inventory document
func (s *InventoryService) ImportYAML(ctx context.Context, tenantID int64, data []byte) (map[string]int, error) {
	inv, err := loader.ParseYAML(data)
	if err != nil {
		s.deps.Metrics.ImportResult(err)
		return nil, err
	}
	return s.Import(ctx, tenantID, inv)
}

// Import replaces the tenant's inventory with inv. Saved positions are kept.
func (s *InventoryService) Import(ctx context.Context, tenantID int64, inv *domain.Inventory) (counts map[string]int, err error) {
	ctx, span := startSpan(ctx, "InventoryService.Import", tenantID)
	defer func() {
		s.deps.Metrics.ImportResult(err)
		endSpan(span, err)
	}()

	if err := validateInventory(inv); err != nil {
		return nil, err
	}

	if err := s.store.ImportInventory(ctx, tenantID, inv); err != nil {
		return nil, err
	}

	counts = inv.Counts()
	log.Info(ctx, "inventory imported",
		j.KV("tenant_id", tenantID),
		j.KV("devices", counts["devices"]),
		j.KV("connections", counts["connections"]),
		j.KV("cores", counts["cores"]))

	s.deps.invalidate(ctx, tenantID)
	s.deps.Events.Publish(Event{
		Type:     EventInventoryReloaded,
		TenantID: tenantID,
		Payload:  counts,
	})

	return counts, nil
}

// validateInventory rejects documents the store would only catch as
// constraint failures
func validateInventory(inv *domain.Inventory) error {
	devices := make(map[domain.DeviceRef]bool, len(inv.Devices))
	for _, d := range inv.Devices {
		if d.ID <= 0 {
			return errors.Wrap(domain.ErrBadRequest, "device id must be positive", j.KV("uid", d.UID()))
		}
		if devices[d.Ref()] {
			return errors.Wrap(domain.ErrBadRequest, "duplicate device", j.KV("uid", d.UID()))
		}
		devices[d.Ref()] = true
	}

	ports := make(map[int64]bool, len(inv.Ports))
	for _, p := range inv.Ports {
		if ports[p.ID] {
			return errors.Wrap(domain.ErrBadRequest, "duplicate port", j.KV("port_id", p.ID))
		}
		ports[p.ID] = true
	}

	// A port is the end of at most one connection, whichever side it is on.
	conns := make(map[int64]bool, len(inv.Connections))
	usedPorts := make(map[int64]int64)
	for _, c := range inv.Connections {
		if conns[c.ID] {
			return errors.Wrap(domain.ErrBadRequest, "duplicate connection", j.KV("connection_id", c.ID))
		}
		conns[c.ID] = true

		for _, port := range []*int64{c.SourcePortID, c.DestinationPortID} {
			if port == nil {
				continue
			}
			if other, ok := usedPorts[*port]; ok {
				return errors.Wrap(domain.ErrBadRequest, "port already connected",
					j.KV("port_id", *port), j.KV("connection_id", other))
			}
			usedPorts[*port] = c.ID
		}
	}

	splices := make(map[int64]bool, len(inv.Splices))
	for _, sp := range inv.Splices {
		if splices[sp.ID] {
			return errors.Wrap(domain.ErrBadRequest, "duplicate splice", j.KV("splice_id", sp.ID))
		}
		if sp.IncomingCoreID == sp.OutgoingCoreID {
			return errors.Wrap(domain.ErrBadRequest, "a core cannot be spliced to itself", j.KV("splice_id", sp.ID))
		}
		splices[sp.ID] = true
	}

	return nil
}

package repository

import (
	"context"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// FiberPlant is every fiber record of a tenant a trace may walk
type FiberPlant struct {
	Cores        []domain.CableCore
	Cables       []domain.Cable
	Splices      []domain.FiberSplice
	Terminations []domain.PortTermination
}

// DeviceStore reads devices. Missing devices are returned as (nil, nil).
type DeviceStore interface {
	ListDevices(ctx context.Context, tenantID int64) ([]domain.Device, error)
	GetDevice(ctx context.Context, tenantID int64, ref domain.DeviceRef) (*domain.Device, error)
}

// ConnectionStore reads device-to-device connections
type ConnectionStore interface {
	ListConnections(ctx context.Context, tenantID int64) ([]domain.Connection, error)
	// ConnectionsFor returns the connections leaving and entering a device
	ConnectionsFor(ctx context.Context, tenantID int64, ref domain.DeviceRef) (out, in []domain.Connection, err error)
}

// PositionStore persists topology layout coordinates
type PositionStore interface {
	ListPositions(ctx context.Context, tenantID int64) ([]domain.NodePosition, error)
	UpsertPositions(ctx context.Context, tenantID int64, positions []domain.NodePosition) error
}

// FiberStore reads the fiber plant and records splices
type FiberStore interface {
	// GetCore returns nil when the core does not exist
	GetCore(ctx context.Context, tenantID, id int64) (*domain.CableCore, error)
	LoadFiberPlant(ctx context.Context, tenantID int64) (*FiberPlant, error)

	// CreateSplice validates and stores a splice, assigning its id and
	// marking both cores as used
	CreateSplice(ctx context.Context, tenantID int64, splice *domain.FiberSplice) error
}

// InventoryStore replaces a tenant's inventory in bulk
type InventoryStore interface {
	ImportInventory(ctx context.Context, tenantID int64, inv *domain.Inventory) error
}

// Repository is the complete connectivity store
type Repository interface {
	DeviceStore
	ConnectionStore
	PositionStore
	FiberStore
	InventoryStore

	// Ping checks the store is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}

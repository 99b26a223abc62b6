package sqlite

import (
	"context"
	"reflect"
	"testing"

	"github.com/luno/jettison/jtest"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func ptr[T any](v T) *T {
	return &v
}

const tenant = int64(1)

// fixture builds a small plant: router -> switch -> olt, and three cores on
// one cable with a splice 1->2 and a termination on core 3
func fixture() *domain.Inventory {
	inv := domain.NewInventory()

	inv.Devices = []domain.Device{
		{Kind: domain.KindRouter, ID: 1, Name: "Core Router", Code: "RTR-01", IsActive: ptr(true), Password: "secret"},
		{Kind: domain.KindSwitch, ID: 1, Name: "Agg Switch", Status: "Maintenance"},
		{Kind: domain.KindOLT, ID: 1, Name: "OLT North", IPAddress: "10.0.0.5"},
	}
	inv.Ports = []domain.Port{
		{ID: 10, Device: domain.DeviceRef{Kind: domain.KindRouter, ID: 1}, Name: "ether1"},
	}
	inv.Connections = []domain.Connection{
		{
			ID:           1,
			Source:       domain.DeviceRef{Kind: domain.KindRouter, ID: 1},
			Destination:  domain.DeviceRef{Kind: domain.KindSwitch, ID: 1},
			Kind:         domain.ConnKindDownlink,
			SourcePort:   "raw",
			SourcePortID: ptr(int64(10)),
		},
		{
			ID:          2,
			Source:      domain.DeviceRef{Kind: domain.KindSwitch, ID: 1},
			Destination: domain.DeviceRef{Kind: domain.KindOLT, ID: 1},
			Kind:        domain.ConnKindFiber,
		},
	}
	inv.Enclosures = []domain.Enclosure{
		{Kind: domain.EnclosureJointBox, ID: 1, Name: "JB-1"},
		{Kind: domain.EnclosureODP, ID: 1, Name: "ODP-1"},
	}
	inv.Cables = []domain.Cable{{ID: 1, Name: "FO-12", CoreCount: 12}}
	inv.Tubes = []domain.Tube{{ID: 1, CableID: 1, Number: 1, Color: "Blue"}}
	inv.Cores = []domain.CableCore{
		{ID: 1, CableID: 1, TubeID: ptr(int64(1)), Number: 1, Color: "Blue"},
		{ID: 2, CableID: 1, Number: 2, Color: "Orange"},
		{ID: 3, CableID: 1, Number: 3, Color: "Green"},
		{ID: 4, CableID: 1, Number: 4, Color: "Brown"},
	}
	inv.Splices = []domain.FiberSplice{
		{ID: 1, IncomingCoreID: 1, OutgoingCoreID: 2, Enclosure: domain.EnclosureRef{Kind: domain.EnclosureJointBox, ID: 1}, LossDB: 0.1},
	}
	inv.Terminations = []domain.PortTermination{
		{ID: 1, CoreID: 3, PortKind: domain.PortKindODP, PortID: 4},
	}
	return inv
}

func importFixture(t *testing.T, repo *Repository) {
	t.Helper()
	jtest.RequireNil(t, repo.ImportInventory(context.Background(), tenant, fixture()))
}

// ============================================================================
// Device Tests
// ============================================================================

func TestDevices(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	importFixture(t, repo)

	t.Run("list is grouped by kind", func(t *testing.T) {
		devices, err := repo.ListDevices(ctx, tenant)
		jtest.RequireNil(t, err)

		var uids []string
		for _, d := range devices {
			uids = append(uids, d.UID())
		}
		assertEqual(t, []string{"Router-1", "Switch-1", "OLT-1"}, uids)
	})

	t.Run("get maps nullable columns", func(t *testing.T) {
		d, err := repo.GetDevice(ctx, tenant, domain.DeviceRef{Kind: domain.KindRouter, ID: 1})
		jtest.RequireNil(t, err)
		if d == nil {
			t.Fatal("expected router")
		}
		assertEqual(t, "RTR-01", d.Code)
		assertEqual(t, true, *d.IsActive)
		assertEqual(t, "secret", d.Password)
		assertEqual(t, domain.StatusActive, d.DisplayStatus())

		sw, err := repo.GetDevice(ctx, tenant, domain.DeviceRef{Kind: domain.KindSwitch, ID: 1})
		jtest.RequireNil(t, err)
		assertEqual(t, (*bool)(nil), sw.IsActive)
		assertEqual(t, "Maintenance", sw.DisplayStatus())
	})

	t.Run("missing device is nil", func(t *testing.T) {
		d, err := repo.GetDevice(ctx, tenant, domain.DeviceRef{Kind: domain.KindCPE, ID: 1})
		jtest.RequireNil(t, err)
		if d != nil {
			t.Fatalf("expected nil, got %+v", d)
		}
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		devices, err := repo.ListDevices(ctx, 2)
		jtest.RequireNil(t, err)
		assertEqual(t, 0, len(devices))
	})
}

// ============================================================================
// Connection Tests
// ============================================================================

func TestConnections(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	importFixture(t, repo)

	conns, err := repo.ListConnections(ctx, tenant)
	jtest.RequireNil(t, err)
	assertEqual(t, 2, len(conns))

	first := conns[0]
	assertEqual(t, "ether1", first.SourcePortName)
	assertEqual(t, "ether1", first.SourcePortLabel())
	assertEqual(t, "", first.DestinationPortLabel())
	assertEqual(t, domain.ConnKindDownlink, first.Kind)

	out, in, err := repo.ConnectionsFor(ctx, tenant, domain.DeviceRef{Kind: domain.KindSwitch, ID: 1})
	jtest.RequireNil(t, err)
	assertEqual(t, 1, len(out))
	assertEqual(t, 1, len(in))
	assertEqual(t, int64(2), out[0].ID)
	assertEqual(t, int64(1), in[0].ID)
}

// ============================================================================
// Position Tests
// ============================================================================

func TestPositions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.UpsertPositions(ctx, tenant, []domain.NodePosition{
		{NodeUID: "Router-1", X: 10, Y: 20},
		{NodeUID: "Switch-1", X: 1, Y: 2},
	})
	jtest.RequireNil(t, err)

	err = repo.UpsertPositions(ctx, tenant, []domain.NodePosition{{NodeUID: "Router-1", X: 30, Y: 40}})
	jtest.RequireNil(t, err)

	positions, err := repo.ListPositions(ctx, tenant)
	jtest.RequireNil(t, err)
	assertEqual(t, []domain.NodePosition{
		{NodeUID: "Router-1", X: 30, Y: 40},
		{NodeUID: "Switch-1", X: 1, Y: 2},
	}, positions)

	// Import never drops saved positions
	importFixture(t, repo)
	positions, err = repo.ListPositions(ctx, tenant)
	jtest.RequireNil(t, err)
	assertEqual(t, 2, len(positions))
}

// ============================================================================
// Fiber Tests
// ============================================================================

func TestLoadFiberPlant(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	importFixture(t, repo)

	plant, err := repo.LoadFiberPlant(ctx, tenant)
	jtest.RequireNil(t, err)
	assertEqual(t, 4, len(plant.Cores))
	assertEqual(t, 1, len(plant.Cables))
	assertEqual(t, 1, len(plant.Splices))
	assertEqual(t, 1, len(plant.Terminations))

	assertEqual(t, int64(1), *plant.Cores[0].TubeID)
	assertEqual(t, domain.CoreAvailable, plant.Cores[0].Status)
	assertEqual(t, domain.EnclosureJointBox, plant.Splices[0].Enclosure.Kind)
	assertEqual(t, domain.PortKindODP, plant.Terminations[0].PortKind)
}

func TestCreateSplice(t *testing.T) {
	ctx := context.Background()
	jb := domain.EnclosureRef{Kind: domain.EnclosureJointBox, ID: 1}

	t.Run("creates splice and marks cores used", func(t *testing.T) {
		repo := newTestRepo(t)
		importFixture(t, repo)

		s := &domain.FiberSplice{IncomingCoreID: 2, OutgoingCoreID: 3, Enclosure: jb, LossDB: 0.2}
		jtest.RequireNil(t, repo.CreateSplice(ctx, tenant, s))
		assertEqual(t, int64(2), s.ID)

		for _, id := range []int64{2, 3} {
			core, err := repo.GetCore(ctx, tenant, id)
			jtest.RequireNil(t, err)
			assertEqual(t, domain.CoreUsed, core.Status)
		}

		plant, err := repo.LoadFiberPlant(ctx, tenant)
		jtest.RequireNil(t, err)
		assertEqual(t, 2, len(plant.Splices))
	})

	tests := []struct {
		name   string
		splice domain.FiberSplice
		want   error
	}{
		{
			name:   "same core",
			splice: domain.FiberSplice{IncomingCoreID: 4, OutgoingCoreID: 4, Enclosure: jb},
			want:   domain.ErrBadRequest,
		},
		{
			name:   "missing core",
			splice: domain.FiberSplice{IncomingCoreID: 4, OutgoingCoreID: 99, Enclosure: jb},
			want:   domain.ErrNotFound,
		},
		{
			name:   "missing enclosure",
			splice: domain.FiberSplice{IncomingCoreID: 4, OutgoingCoreID: 3, Enclosure: domain.EnclosureRef{Kind: domain.EnclosureODF, ID: 1}},
			want:   domain.ErrNotFound,
		},
		{
			name:   "unknown enclosure kind",
			splice: domain.FiberSplice{IncomingCoreID: 4, OutgoingCoreID: 3, Enclosure: domain.EnclosureRef{Kind: "Manhole", ID: 1}},
			want:   domain.ErrBadRequest,
		},
		{
			name:   "incoming core already spliced",
			splice: domain.FiberSplice{IncomingCoreID: 1, OutgoingCoreID: 4, Enclosure: jb},
			want:   domain.ErrConflict,
		},
		{
			name:   "outgoing core already spliced",
			splice: domain.FiberSplice{IncomingCoreID: 4, OutgoingCoreID: 2, Enclosure: jb},
			want:   domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			importFixture(t, repo)

			s := tt.splice
			err := repo.CreateSplice(ctx, tenant, &s)
			jtest.Require(t, tt.want, err)

			plant, err := repo.LoadFiberPlant(ctx, tenant)
			jtest.RequireNil(t, err)
			assertEqual(t, 1, len(plant.Splices))
		})
	}
}

// ============================================================================
// Import Tests
// ============================================================================

func TestImportInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces previous inventory", func(t *testing.T) {
		repo := newTestRepo(t)
		importFixture(t, repo)

		inv := domain.NewInventory()
		inv.Devices = []domain.Device{{Kind: domain.KindCPE, ID: 7, Name: "Home CPE"}}
		jtest.RequireNil(t, repo.ImportInventory(ctx, tenant, inv))

		devices, err := repo.ListDevices(ctx, tenant)
		jtest.RequireNil(t, err)
		assertEqual(t, 1, len(devices))
		assertEqual(t, "CPE-7", devices[0].UID())

		conns, err := repo.ListConnections(ctx, tenant)
		jtest.RequireNil(t, err)
		assertEqual(t, 0, len(conns))
	})

	t.Run("unknown device kind rolls back", func(t *testing.T) {
		repo := newTestRepo(t)
		importFixture(t, repo)

		inv := domain.NewInventory()
		inv.Devices = []domain.Device{{Kind: "Toaster", ID: 1, Name: "x"}}
		err := repo.ImportInventory(ctx, tenant, inv)
		jtest.Require(t, domain.ErrBadRequest, err)

		devices, err := repo.ListDevices(ctx, tenant)
		jtest.RequireNil(t, err)
		assertEqual(t, 3, len(devices))
	})

	t.Run("large batches", func(t *testing.T) {
		repo := newTestRepo(t)

		inv := domain.NewInventory()
		inv.Cables = []domain.Cable{{ID: 1, Name: "FO-288", CoreCount: 500}}
		for i := int64(1); i <= 500; i++ {
			inv.Cores = append(inv.Cores, domain.CableCore{ID: i, CableID: 1, Number: int(i)})
		}
		jtest.RequireNil(t, repo.ImportInventory(ctx, tenant, inv))

		plant, err := repo.LoadFiberPlant(ctx, tenant)
		jtest.RequireNil(t, err)
		assertEqual(t, 500, len(plant.Cores))
	})
}

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

const sampleInventory = `
version: "1"
devices:
  - uid: Router-1
    name: Core Router
    code: RTR-01
    active: true
    ip: 10.0.0.1
    password: secret
    ports:
      - id: 10
        name: ether1
  - uid: 'App\Models\Switch-2'
    name: Agg Switch
connections:
  - source: Router-1
    destination: Switch-2
    kind: downlink
    source_port_id: 10
  - id: 9
    source: Switch-2
    destination: OLT-1
enclosures:
  - kind: JointBox
    id: 1
    name: JB-1
cables:
  - id: 1
    name: FO-12
    tubes:
      - id: 1
        number: 1
        color: Blue
        cores:
          - {id: 1, number: 1, color: Blue}
          - {id: 2, number: 2, color: Orange, status: used}
    cores:
      - {id: 3, number: 3}
splices:
  - incoming: 1
    outgoing: 2
    enclosure: JointBox-1
    loss_db: 0.05
terminations:
  - core: 3
    port_kind: ODPPort
    port_id: 4
`

func TestParseYAML(t *testing.T) {
	inv, err := ParseYAML([]byte(sampleInventory))
	jtest.RequireNil(t, err)

	assert.Equal(t, map[string]int{
		"devices": 2, "ports": 1, "connections": 2, "enclosures": 1, "cables": 1,
		"tubes": 1, "cores": 3, "splices": 1, "terminations": 1,
	}, inv.Counts())

	t.Run("devices", func(t *testing.T) {
		r := inv.Devices[0]
		assert.Equal(t, domain.DeviceRef{Kind: domain.KindRouter, ID: 1}, r.Ref())
		assert.Equal(t, "secret", r.Password)
		require.NotNil(t, r.IsActive)
		assert.True(t, *r.IsActive)
		assert.Equal(t, domain.DeviceRef{Kind: domain.KindSwitch, ID: 2}, inv.Devices[1].Ref())
		assert.Equal(t, r.Ref(), inv.Ports[0].Device)
	})

	t.Run("connections", func(t *testing.T) {
		c := inv.Connections[0]
		assert.Equal(t, int64(1), c.ID)
		assert.Equal(t, domain.ConnKindDownlink, c.Kind)
		require.NotNil(t, c.SourcePortID)
		assert.Equal(t, int64(10), *c.SourcePortID)
		assert.Equal(t, int64(9), inv.Connections[1].ID)
	})

	t.Run("fiber", func(t *testing.T) {
		assert.Equal(t, 3, inv.Cables[0].CoreCount)
		require.NotNil(t, inv.Cores[0].TubeID)
		assert.Equal(t, int64(1), *inv.Cores[0].TubeID)
		assert.Nil(t, inv.Cores[2].TubeID)
		assert.Equal(t, domain.CoreAvailable, inv.Cores[0].Status)
		assert.Equal(t, domain.CoreUsed, inv.Cores[1].Status)

		s := inv.Splices[0]
		assert.Equal(t, int64(1), s.ID)
		assert.Equal(t, domain.EnclosureRef{Kind: domain.EnclosureJointBox, ID: 1}, s.Enclosure)
		assert.Equal(t, domain.PortKindODP, inv.Terminations[0].PortKind)
	})
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown field", yaml: "devices: []\nhosts: {}\n"},
		{name: "unknown device kind", yaml: "devices:\n  - uid: Toaster-1\n    name: x\n"},
		{name: "malformed uid", yaml: "devices:\n  - uid: Router\n    name: x\n"},
		{name: "unknown enclosure", yaml: "enclosures:\n  - kind: Manhole\n    id: 1\n    name: x\n"},
		{name: "bad splice enclosure", yaml: "splices:\n  - incoming: 1\n    outgoing: 2\n    enclosure: Pole-1\n"},
		{name: "unknown port kind", yaml: "terminations:\n  - core: 1\n    port_kind: Splitter\n    port_id: 1\n"},
		{name: "unknown core status", yaml: "cables:\n  - id: 1\n    name: x\n    cores:\n      - {id: 1, number: 1, status: melted}\n"},
		{name: "not yaml", yaml: "devices: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			jtest.Require(t, domain.ErrBadRequest, err)
		})
	}
}

func TestParseYAML_Empty(t *testing.T) {
	inv, err := ParseYAML(nil)
	jtest.RequireNil(t, err)
	assert.Empty(t, inv.Devices)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleInventory), 0o644))

	inv, err := LoadYAML(path)
	jtest.RequireNil(t, err)
	assert.Len(t, inv.Devices, 2)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

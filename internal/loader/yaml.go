package loader

import (
	"bytes"
	"io"
	"os"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"gopkg.in/yaml.v3"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// InventoryYAML represents the YAML file structure
type InventoryYAML struct {
	Version      string            `yaml:"version"`
	Devices      []DeviceYAML      `yaml:"devices"`
	Connections  []ConnectionYAML  `yaml:"connections,omitempty"`
	Enclosures   []EnclosureYAML   `yaml:"enclosures,omitempty"`
	Cables       []CableYAML       `yaml:"cables,omitempty"`
	Splices      []SpliceYAML      `yaml:"splices,omitempty"`
	Terminations []TerminationYAML `yaml:"terminations,omitempty"`
}

// DeviceYAML represents a device; uid is "<kind>-<id>"
type DeviceYAML struct {
	UID           string     `yaml:"uid"`
	Name          string     `yaml:"name"`
	Code          string     `yaml:"code,omitempty"`
	Status        string     `yaml:"status,omitempty"`
	Active        *bool      `yaml:"active,omitempty"`
	IP            string     `yaml:"ip,omitempty"`
	Username      string     `yaml:"username,omitempty"`
	Password      string     `yaml:"password,omitempty"`
	SNMPCommunity string     `yaml:"snmp_community,omitempty"`
	Ports         []PortYAML `yaml:"ports,omitempty"`
}

// PortYAML represents a named device port
type PortYAML struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// ConnectionYAML represents a directed device-to-device connection
type ConnectionYAML struct {
	ID                int64  `yaml:"id,omitempty"`
	Source            string `yaml:"source"`
	Destination       string `yaml:"destination"`
	Kind              string `yaml:"kind,omitempty"`
	SourcePort        string `yaml:"source_port,omitempty"`
	SourcePortID      *int64 `yaml:"source_port_id,omitempty"`
	DestinationPort   string `yaml:"destination_port,omitempty"`
	DestinationPortID *int64 `yaml:"destination_port_id,omitempty"`
	Metadata          string `yaml:"metadata,omitempty"`
}

// EnclosureYAML represents a joint box, ODP or ODF
type EnclosureYAML struct {
	Kind string `yaml:"kind"`
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	Code string `yaml:"code,omitempty"`
}

// CableYAML represents a cable with its tubes and loose cores
type CableYAML struct {
	ID        int64      `yaml:"id"`
	Name      string     `yaml:"name"`
	CoreCount int        `yaml:"core_count,omitempty"`
	Tubes     []TubeYAML `yaml:"tubes,omitempty"`
	Cores     []CoreYAML `yaml:"cores,omitempty"`
}

// TubeYAML represents a tube inside a cable
type TubeYAML struct {
	ID     int64      `yaml:"id"`
	Number int        `yaml:"number"`
	Color  string     `yaml:"color,omitempty"`
	Cores  []CoreYAML `yaml:"cores,omitempty"`
}

// CoreYAML represents a single core
type CoreYAML struct {
	ID     int64  `yaml:"id"`
	Number int    `yaml:"number"`
	Color  string `yaml:"color,omitempty"`
	Status string `yaml:"status,omitempty"`
}

// SpliceYAML represents a splice; enclosure is "<kind>-<id>"
type SpliceYAML struct {
	ID        int64   `yaml:"id,omitempty"`
	Incoming  int64   `yaml:"incoming"`
	Outgoing  int64   `yaml:"outgoing"`
	Enclosure string  `yaml:"enclosure"`
	LossDB    float64 `yaml:"loss_db,omitempty"`
}

// TerminationYAML represents a core ending in a port
type TerminationYAML struct {
	ID       int64  `yaml:"id,omitempty"`
	Core     int64  `yaml:"core"`
	PortKind string `yaml:"port_kind"`
	PortID   int64  `yaml:"port_id"`
}

// LoadYAML loads an inventory from a YAML file
func LoadYAML(path string) (*domain.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file", j.KV("path", path))
	}

	return ParseYAML(data)
}

// ParseYAML parses an inventory from YAML bytes. Unknown fields, unknown
// kinds and malformed references are rejected as bad requests.
func ParseYAML(data []byte) (*domain.Inventory, error) {
	var y InventoryYAML

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&y); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(domain.ErrBadRequest, "failed to parse YAML", j.KV("cause", err.Error()))
	}

	return convertYAMLToInventory(&y)
}

func convertYAMLToInventory(y *InventoryYAML) (*domain.Inventory, error) {
	inv := domain.NewInventory()

	// Convert devices and their ports
	for _, d := range y.Devices {
		ref, err := parseDeviceRef(d.UID)
		if err != nil {
			return nil, err
		}
		inv.Devices = append(inv.Devices, domain.Device{
			Kind:          ref.Kind,
			ID:            ref.ID,
			Name:          d.Name,
			Code:          d.Code,
			Status:        d.Status,
			IsActive:      d.Active,
			IPAddress:     d.IP,
			Username:      d.Username,
			Password:      d.Password,
			SNMPCommunity: d.SNMPCommunity,
		})
		for _, p := range d.Ports {
			inv.Ports = append(inv.Ports, domain.Port{ID: p.ID, Device: ref, Name: p.Name})
		}
	}

	// Convert connections; ids default to their position in the file
	for i, c := range y.Connections {
		src, err := parseDeviceRef(c.Source)
		if err != nil {
			return nil, err
		}
		dst, err := parseDeviceRef(c.Destination)
		if err != nil {
			return nil, err
		}

		id := c.ID
		if id == 0 {
			id = int64(i + 1)
		}

		inv.Connections = append(inv.Connections, domain.Connection{
			ID:                id,
			Source:            src,
			Destination:       dst,
			Kind:              domain.ConnectionKind(c.Kind),
			SourcePort:        c.SourcePort,
			SourcePortID:      c.SourcePortID,
			DestinationPort:   c.DestinationPort,
			DestinationPortID: c.DestinationPortID,
			Metadata:          c.Metadata,
		})
	}

	// Convert enclosures
	for _, e := range y.Enclosures {
		kind, ok := domain.ParseEnclosureKind(e.Kind)
		if !ok {
			return nil, errors.Wrap(domain.ErrBadRequest, "unknown enclosure type", j.KV("kind", e.Kind))
		}
		inv.Enclosures = append(inv.Enclosures, domain.Enclosure{Kind: kind, ID: e.ID, Name: e.Name, Code: e.Code})
	}

	// Convert cables, tubes and cores
	for _, c := range y.Cables {
		count := c.CoreCount
		for _, t := range c.Tubes {
			tubeID := t.ID
			inv.Tubes = append(inv.Tubes, domain.Tube{ID: t.ID, CableID: c.ID, Number: t.Number, Color: t.Color})
			for _, core := range t.Cores {
				converted, err := convertCore(core, c.ID, &tubeID)
				if err != nil {
					return nil, err
				}
				inv.Cores = append(inv.Cores, converted)
			}
			if c.CoreCount == 0 {
				count += len(t.Cores)
			}
		}
		for _, core := range c.Cores {
			converted, err := convertCore(core, c.ID, nil)
			if err != nil {
				return nil, err
			}
			inv.Cores = append(inv.Cores, converted)
		}
		if c.CoreCount == 0 {
			count += len(c.Cores)
		}
		inv.Cables = append(inv.Cables, domain.Cable{ID: c.ID, Name: c.Name, CoreCount: count})
	}

	// Convert splices
	for i, s := range y.Splices {
		enc, err := parseEnclosureRef(s.Enclosure)
		if err != nil {
			return nil, err
		}
		id := s.ID
		if id == 0 {
			id = int64(i + 1)
		}
		inv.Splices = append(inv.Splices, domain.FiberSplice{
			ID:             id,
			IncomingCoreID: s.Incoming,
			OutgoingCoreID: s.Outgoing,
			Enclosure:      enc,
			LossDB:         s.LossDB,
		})
	}

	// Convert terminations
	for i, t := range y.Terminations {
		kind, ok := domain.ParsePortKind(t.PortKind)
		if !ok {
			return nil, errors.Wrap(domain.ErrBadRequest, "unknown port type", j.KV("kind", t.PortKind))
		}
		id := t.ID
		if id == 0 {
			id = int64(i + 1)
		}
		inv.Terminations = append(inv.Terminations, domain.PortTermination{ID: id, CoreID: t.Core, PortKind: kind, PortID: t.PortID})
	}

	return inv, nil
}

func convertCore(c CoreYAML, cableID int64, tubeID *int64) (domain.CableCore, error) {
	status := domain.CoreAvailable
	if c.Status != "" {
		status = domain.CoreStatus(c.Status)
		if !status.Valid() {
			return domain.CableCore{}, errors.Wrap(domain.ErrBadRequest, "unknown core status", j.KV("status", c.Status))
		}
	}
	return domain.CableCore{
		ID:      c.ID,
		CableID: cableID,
		TubeID:  tubeID,
		Number:  c.Number,
		Color:   c.Color,
		Status:  status,
	}, nil
}

// parseDeviceRef resolves a device uid, reporting every failure as a bad request
func parseDeviceRef(uid string) (domain.DeviceRef, error) {
	ref, err := domain.ParseDeviceRef(uid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DeviceRef{}, errors.Wrap(domain.ErrBadRequest, "unknown device type", j.KV("uid", uid))
	}
	return ref, err
}

func parseEnclosureRef(ref string) (domain.EnclosureRef, error) {
	tag, id, err := domain.ParseUID(ref)
	if err != nil {
		return domain.EnclosureRef{}, err
	}
	kind, ok := domain.ParseEnclosureKind(tag)
	if !ok {
		return domain.EnclosureRef{}, errors.Wrap(domain.ErrBadRequest, "unknown enclosure type", j.KV("enclosure", ref))
	}
	return domain.EnclosureRef{Kind: kind, ID: id}, nil
}

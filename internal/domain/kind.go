package domain

import (
	"slices"
	"strings"
)

// DeviceKind identifies which concrete device collection a device belongs to
type DeviceKind string

const (
	KindRouter      DeviceKind = "Router"
	KindSwitch      DeviceKind = "Switch"
	KindOLT         DeviceKind = "OLT"
	KindONT         DeviceKind = "ONT"
	KindAccessPoint DeviceKind = "AccessPoint"
	KindCPE         DeviceKind = "CPE"
)

var deviceKinds = []DeviceKind{
	KindRouter,
	KindSwitch,
	KindOLT,
	KindONT,
	KindAccessPoint,
	KindCPE,
}

// DeviceKinds returns every known device kind in display order
func DeviceKinds() []DeviceKind {
	kinds := make([]DeviceKind, len(deviceKinds))
	copy(kinds, deviceKinds)
	return kinds
}

// Valid reports whether k is exactly one of the known device kinds
func (k DeviceKind) Valid() bool {
	return slices.Contains(deviceKinds, k)
}

// ParseDeviceKind resolves a kind tag to a DeviceKind.
//
// The tag may be the short kind name ("Router") or a namespaced type name
// ("App\Models\Router"); only the segment after the last backslash is matched,
// case-insensitively.
func ParseDeviceKind(tag string) (DeviceKind, bool) {
	return matchKind(tag, deviceKinds)
}

// EnclosureKind identifies the housing a fiber splice lives in
type EnclosureKind string

const (
	EnclosureJointBox EnclosureKind = "JointBox"
	EnclosureODP      EnclosureKind = "ODP"
	EnclosureODF      EnclosureKind = "ODF"
)

var enclosureKinds = []EnclosureKind{
	EnclosureJointBox,
	EnclosureODP,
	EnclosureODF,
}

// EnclosureKinds returns every known enclosure kind
func EnclosureKinds() []EnclosureKind {
	kinds := make([]EnclosureKind, len(enclosureKinds))
	copy(kinds, enclosureKinds)
	return kinds
}

// ParseEnclosureKind resolves an enclosure tag the same way ParseDeviceKind does
func ParseEnclosureKind(tag string) (EnclosureKind, bool) {
	return matchKind(tag, enclosureKinds)
}

// PortKind identifies the owner of a port a core can be terminated into
type PortKind string

const (
	PortKindDevice PortKind = "DevicePort"
	PortKindODP    PortKind = "ODPPort"
	PortKindODF    PortKind = "ODFPort"
)

var portKinds = []PortKind{
	PortKindDevice,
	PortKindODP,
	PortKindODF,
}

// ParsePortKind resolves a port kind tag the same way ParseDeviceKind does
func ParsePortKind(tag string) (PortKind, bool) {
	return matchKind(tag, portKinds)
}

func matchKind[K ~string](tag string, kinds []K) (K, bool) {
	name := strings.TrimSpace(tag)
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	for _, k := range kinds {
		if strings.EqualFold(name, string(k)) {
			return k, true
		}
	}
	var zero K
	return zero, false
}

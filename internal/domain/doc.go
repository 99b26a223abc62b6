// Package domain defines the core domain types for the openaccess ISP inventory.
//
// This package contains the entities and value objects the topology and fiber
// subsystems work with. All of them are read from the connectivity store and
// addressed by a (kind, id) pair.
//
// # Devices
//
// Device is one of a closed set of kinds (Router, Switch, OLT, ONT, AccessPoint,
// CPE). DeviceRef pairs a kind with a numeric id and renders the stable uid string
// ("Router-42") used to key topology nodes and saved layout positions.
//
// Connection is a directed edge between two devices, optionally naming the ports
// on either side.
//
// NodePosition is the saved 2D layout coordinate of a device node, keyed by uid.
//
// # Fiber
//
// CableCore is one glass strand inside a Cable (optionally inside a Tube).
// FiberSplice joins an incoming core to an outgoing core inside an enclosure
// (JointBox, ODP, ODF). PortTermination ends a core in a device port.
//
// # Errors
//
// ErrNotFound, ErrBadRequest and ErrConflict are the sentinels services wrap
// and handlers map to HTTP status codes.
//
// # Design Principles
//
// - Closed enumerations instead of free-form type names
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain

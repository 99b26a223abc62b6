package domain

import (
	"fmt"
	"strconv"
)

// CoreStatus is informational; it never gates a trace
type CoreStatus string

const (
	CoreAvailable CoreStatus = "available"
	CoreUsed      CoreStatus = "used"
	CoreReserved  CoreStatus = "reserved"
	CoreBroken    CoreStatus = "broken"
)

// Valid reports whether s is a known core status
func (s CoreStatus) Valid() bool {
	switch s {
	case CoreAvailable, CoreUsed, CoreReserved, CoreBroken:
		return true
	}
	return false
}

// Cable is a fiber optic cable
type Cable struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CoreCount int    `json:"core_count"`
}

// Tube is a physical sub-bundle of cores within a cable
type Tube struct {
	ID      int64  `json:"id"`
	CableID int64  `json:"cable_id"`
	Number  int    `json:"number"`
	Color   string `json:"color"`
}

// CableCore is one strand within a cable
type CableCore struct {
	ID      int64      `json:"id"`
	CableID int64      `json:"cable_id"`
	TubeID  *int64     `json:"tube_id,omitempty"`
	Number  int        `json:"number"`
	Color   string     `json:"color"`
	Status  CoreStatus `json:"status"`
}

// Label returns the human label of the core, e.g. "Core 3 (Blue)"
func (c *CableCore) Label() string {
	if c.Color == "" {
		return fmt.Sprintf("Core %d", c.Number)
	}
	return fmt.Sprintf("Core %d (%s)", c.Number, c.Color)
}

// EnclosureRef addresses an enclosure by kind and id
type EnclosureRef struct {
	Kind EnclosureKind `json:"kind"`
	ID   int64         `json:"id"`
}

// String renders the reference as "<kind>-<id>"
func (r EnclosureRef) String() string {
	return string(r.Kind) + UIDSeparator + strconv.FormatInt(r.ID, 10)
}

// Enclosure is a physical housing in which splices occur
type Enclosure struct {
	Kind EnclosureKind `json:"kind"`
	ID   int64         `json:"id"`
	Name string        `json:"name"`
	Code string        `json:"code,omitempty"`
}

// Ref returns the enclosure's kind/id reference
func (e *Enclosure) Ref() EnclosureRef {
	return EnclosureRef{Kind: e.Kind, ID: e.ID}
}

// FiberSplice joins an incoming core to an outgoing core inside an enclosure
type FiberSplice struct {
	ID             int64        `json:"id"`
	IncomingCoreID int64        `json:"incoming_core_id"`
	OutgoingCoreID int64        `json:"outgoing_core_id"`
	Enclosure      EnclosureRef `json:"enclosure"`
	LossDB         float64      `json:"loss_db"`
}

// OtherCore returns the core on the far side of the splice from coreID
func (s *FiberSplice) OtherCore(coreID int64) int64 {
	if s.IncomingCoreID == coreID {
		return s.OutgoingCoreID
	}
	return s.IncomingCoreID
}

// PortTermination ends a core in a port
type PortTermination struct {
	ID       int64    `json:"id"`
	CoreID   int64    `json:"core_id"`
	PortKind PortKind `json:"port_kind"`
	PortID   int64    `json:"port_id"`
}

package domain

// ConnectionKind labels the role of a device-to-device link
type ConnectionKind string

const (
	ConnKindUplink   ConnectionKind = "uplink"
	ConnKindDownlink ConnectionKind = "downlink"
	ConnKindFiber    ConnectionKind = "fiber"
	ConnKindEthernet ConnectionKind = "ethernet"
	ConnKindWireless ConnectionKind = "wireless"
)

// Connection is a directed link from a source device to a destination device
type Connection struct {
	ID          int64          `json:"id"`
	Source      DeviceRef      `json:"source"`
	Destination DeviceRef      `json:"destination"`
	Kind        ConnectionKind `json:"kind"`

	// Raw port strings as entered
	SourcePort      string `json:"source_port,omitempty"`
	DestinationPort string `json:"destination_port,omitempty"`

	// Named port references, resolved to the port name when present
	SourcePortID        *int64 `json:"source_port_id,omitempty"`
	SourcePortName      string `json:"source_port_name,omitempty"`
	DestinationPortID   *int64 `json:"destination_port_id,omitempty"`
	DestinationPortName string `json:"destination_port_name,omitempty"`

	Metadata string `json:"metadata,omitempty"`
}

// SourcePortLabel returns the named source port, falling back to the raw string
func (c *Connection) SourcePortLabel() string {
	if c.SourcePortName != "" {
		return c.SourcePortName
	}
	return c.SourcePort
}

// DestinationPortLabel returns the named destination port, falling back to the raw string
func (c *Connection) DestinationPortLabel() string {
	if c.DestinationPortName != "" {
		return c.DestinationPortName
	}
	return c.DestinationPort
}

// Involves checks if this connection touches the given device
func (c *Connection) Involves(ref DeviceRef) bool {
	return c.Source == ref || c.Destination == ref
}

// OtherEnd returns the device on the other end of this connection
func (c *Connection) OtherEnd(ref DeviceRef) DeviceRef {
	if c.Source == ref {
		return c.Destination
	}
	return c.Source
}

// Package topology assembles a forest of device nodes from a flat set of
// directed device-to-device connections.
//
// Build is pure: it performs no I/O and owns all of its traversal state, so
// concurrent builds never share a visited set.
package topology

import (
	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// Node is one device in the assembled topology forest
type Node struct {
	ID        int64             `json:"id"`
	Kind      domain.DeviceKind `json:"kind_tag"`
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	Code      string            `json:"code"`
	Status    string            `json:"status"`
	IPAddress string            `json:"ip_address"`

	// Only set when the node was reached through a connection
	ConnectionKind domain.ConnectionKind `json:"connection_kind,omitempty"`
	LocalPort      string                `json:"local_port_label,omitempty"`
	RemotePort     string                `json:"remote_port_label,omitempty"`

	IsDuplicate bool `json:"is_duplicate"`
	Truncated   bool `json:"truncated,omitempty"`

	X *float64 `json:"x"`
	Y *float64 `json:"y"`

	Children []*Node `json:"children"`
}

// Input is the in-memory snapshot a build works on
type Input struct {
	Devices     []domain.Device
	Connections []domain.Connection
	Positions   map[string]domain.NodePosition
}

// Options tunes a build
type Options struct {
	// MaxNodes caps the number of expanded nodes; 0 means unlimited
	MaxNodes int
}

// Stats describes what a build did
type Stats struct {
	Roots      int
	Nodes      int
	Duplicates int
	Dangling   int
	Truncated  bool
}

type builder struct {
	opts      Options
	devices   map[domain.DeviceRef]*domain.Device
	outgoing  map[domain.DeviceRef][]*domain.Connection
	positions map[string]domain.NodePosition
	visited   map[string]bool
	stats     Stats
}

// Build assembles the topology forest.
//
// Roots are the devices that never appear as a connection destination, in
// input order. If there are none, every Router becomes a root. The first visit
// of a uid is expanded; later visits are flagged as duplicates and get no
// children. Connections whose destination does not resolve are skipped.
func Build(in Input, opts Options) ([]*Node, Stats) {
	b := &builder{
		opts:      opts,
		devices:   make(map[domain.DeviceRef]*domain.Device, len(in.Devices)),
		outgoing:  make(map[domain.DeviceRef][]*domain.Connection),
		positions: in.Positions,
		visited:   make(map[string]bool),
	}

	for i := range in.Devices {
		d := &in.Devices[i]
		b.devices[d.Ref()] = d
	}

	destinations := make(map[domain.DeviceRef]bool, len(in.Connections))
	for i := range in.Connections {
		c := &in.Connections[i]
		destinations[c.Destination] = true
		b.outgoing[c.Source] = append(b.outgoing[c.Source], c)
	}

	roots := Roots(in.Devices, destinations)
	b.stats.Roots = len(roots)

	forest := make([]*Node, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, b.build(root, nil))
	}

	return forest, b.stats
}

// Roots returns the devices that are not in the destination set, falling back
// to every Router when that leaves nothing.
func Roots(devices []domain.Device, destinations map[domain.DeviceRef]bool) []*domain.Device {
	var roots []*domain.Device
	for i := range devices {
		if !destinations[devices[i].Ref()] {
			roots = append(roots, &devices[i])
		}
	}
	if len(roots) > 0 {
		return roots
	}

	for i := range devices {
		if devices[i].Kind == domain.KindRouter {
			roots = append(roots, &devices[i])
		}
	}
	return roots
}

func (b *builder) build(d *domain.Device, via *domain.Connection) *Node {
	n := b.newNode(d, via)

	if b.visited[n.UID] {
		n.IsDuplicate = true
		b.stats.Duplicates++
		return n
	}
	b.visited[n.UID] = true

	if b.opts.MaxNodes > 0 && b.stats.Nodes >= b.opts.MaxNodes {
		n.Truncated = true
		b.stats.Truncated = true
		return n
	}
	b.stats.Nodes++

	for _, c := range b.outgoing[d.Ref()] {
		dst, ok := b.devices[c.Destination]
		if !ok {
			b.stats.Dangling++
			continue
		}
		n.Children = append(n.Children, b.build(dst, c))
	}

	return n
}

func (b *builder) newNode(d *domain.Device, via *domain.Connection) *Node {
	n := &Node{
		ID:        d.ID,
		Kind:      d.Kind,
		UID:       d.UID(),
		Name:      d.Name,
		Code:      d.Code,
		Status:    d.DisplayStatus(),
		IPAddress: d.IPAddress,
		Children:  make([]*Node, 0),
	}

	if via != nil {
		n.ConnectionKind = via.Kind
		n.LocalPort = via.SourcePortLabel()
		n.RemotePort = via.DestinationPortLabel()
	}

	if pos, ok := b.positions[n.UID]; ok {
		x, y := pos.X, pos.Y
		n.X, n.Y = &x, &y
	}

	return n
}

// Walk visits every node of the forest depth-first, stopping early if fn
// returns false.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int) bool
	walk = func(nodes []*Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(forest, 0)
}

package domain

// NodePosition is the saved layout coordinate of a topology node
type NodePosition struct {
	NodeUID string  `json:"node_uid"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// NewNodePosition creates a new node position
func NewNodePosition(nodeUID string, x, y float64) *NodePosition {
	return &NodePosition{
		NodeUID: nodeUID,
		X:       x,
		Y:       y,
	}
}

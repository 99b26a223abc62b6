package domain

// Inventory is a complete tenant inventory used for bulk import
type Inventory struct {
	Devices      []Device          `json:"devices"`
	Ports        []Port            `json:"ports"`
	Connections  []Connection      `json:"connections"`
	Enclosures   []Enclosure       `json:"enclosures"`
	Cables       []Cable           `json:"cables"`
	Tubes        []Tube            `json:"tubes"`
	Cores        []CableCore       `json:"cores"`
	Splices      []FiberSplice     `json:"splices"`
	Terminations []PortTermination `json:"terminations"`
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		Devices:      make([]Device, 0),
		Ports:        make([]Port, 0),
		Connections:  make([]Connection, 0),
		Enclosures:   make([]Enclosure, 0),
		Cables:       make([]Cable, 0),
		Tubes:        make([]Tube, 0),
		Cores:        make([]CableCore, 0),
		Splices:      make([]FiberSplice, 0),
		Terminations: make([]PortTermination, 0),
	}
}

// Counts summarises the size of the inventory
func (inv *Inventory) Counts() map[string]int {
	return map[string]int{
		"devices":      len(inv.Devices),
		"ports":        len(inv.Ports),
		"connections":  len(inv.Connections),
		"enclosures":   len(inv.Enclosures),
		"cables":       len(inv.Cables),
		"tubes":        len(inv.Tubes),
		"cores":        len(inv.Cores),
		"splices":      len(inv.Splices),
		"terminations": len(inv.Terminations),
	}
}

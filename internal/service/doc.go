// Package service implements the inventory operations behind the HTTP API
// and the command line.
//
// # Services
//
// TopologyService assembles the device topology forest of a tenant, serves
// node details and manages saved layout positions.
//
// FiberService splices cable cores inside enclosures and traces signal
// paths through the fiber plant.
//
// InventoryService replaces a tenant's inventory from a YAML document.
//
// # Events
//
// Writes publish events via EventBus so connected clients can refresh. Every
// write also drops the tenant's cached topology snapshot.
package service

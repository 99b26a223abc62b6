// Package repository defines the connectivity store the topology and fiber
// services read from.
//
// Every call takes an explicit tenant id; nothing is scoped by ambient state.
// The actual implementation is in the sqlite subpackage.
//
// # Interfaces
//
// The store is split by concern so services can depend on the narrow view
// they need:
//
//   - DeviceStore: devices of every kind, looked up by kind and id
//   - ConnectionStore: directed device-to-device connections
//   - PositionStore: saved topology layout coordinates
//   - FiberStore: cores, splices and terminations, plus splice creation
//   - InventoryStore: transactional bulk import
//
// # Missing Rows
//
// Single-entity lookups return (nil, nil) when the row does not exist. The
// caller decides whether that is a NotFound error or a pruned branch.
package repository

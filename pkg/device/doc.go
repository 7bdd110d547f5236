// Package device owns the process-wide device-state aggregate for a
// LoMesh node.
//
// Service ties the data model together: it holds the DeviceState
// singleton and the bounded node registry, runs the boot sequence
// (load snapshot or install defaults, allocate a node number, apply
// the channel configuration), feeds inbound packet observations
// through the update pipeline, and saves the snapshot on the periodic
// and shutdown paths.
//
// All mutating methods must be called from one goroutine; Find is the
// only accessor safe for a preempting context (see package nodedb).
// External collaborators (cipher, clock, random source, power-state
// machine, plugin dispatcher) are injected as interfaces at
// construction.
package device

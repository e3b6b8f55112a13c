// Package domain defines the core identifiers and state snapshots for
// campaign progression tracking.
//
// The model is centered around a few concepts:
//
// # Missions and Locations
//
// A mission is one playable map inside a campaign. Every mission exposes up
// to one hundred unlock points called locations: objective 0 is the
// mission's victory objective, higher indexes are bonus objectives. A
// mission counts as completed once its victory location has been checked.
//
// # Received items
//
// The multiworld server delivers an append-only, order-preserving stream of
// ReceivedItem records. The stream may be replayed in full after a
// reconnect, so all state derived from it must fold idempotently.
//
// # Snapshots
//
// A Snapshot is one consistent read of the two monotonic sources (completed
// missions and received-item counts). Evaluators and accumulators only ever
// see snapshots; they never observe partially applied updates.
package domain

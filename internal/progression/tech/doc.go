// Package tech folds the received-item stream into per-faction technology
// state.
//
// Every item definition targets one slot of a faction's state vector and
// declares how received copies take effect: a Flag sets a single bit, a
// Counter advances a tier field, a Sum adds to a running total, and a
// Bundle expands into several underlying counter tiers at accumulation
// time.
//
// Sessions generated under older schema versions are reconciled through a
// small ordered table of compatibility shims: implied items are injected
// before the real stream is folded, and deprecated items are substituted by
// their modern equivalents afterwards. Accumulation is deterministic and,
// apart from the explicitly version-gated plating reversal, insensitive to
// arrival order, so replaying the full stream after a reconnect yields
// identical state.
package tech

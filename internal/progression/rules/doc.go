// Package rules models the accessibility rules gating campaigns, layouts,
// and missions, and evaluates them against a progression snapshot.
//
// Rule nodes live in a Graph arena keyed by integer ids rather than as a
// pointer structure, so the hierarchy owns every node and rule graphs may
// safely contain back-references. Evaluation tracks the active recursion
// path and treats a re-entered rule as not accessible, which breaks cycles
// deterministically: a self-referential rule can only unlock through its
// non-cyclic children.
//
// Malformed graphs (duplicate or dangling rule ids) are rejected when the
// hierarchy is built. Evaluation itself never fails.
package rules

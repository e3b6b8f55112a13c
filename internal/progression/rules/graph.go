package rules

import (
	"errors"
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// RuleID identifies one rule node within a graph.
type RuleID int

var (
	// ErrDuplicateRule indicates a rule id registered twice.
	ErrDuplicateRule = errors.New("duplicate rule id")
	// ErrInvalidRuleGraph indicates a dangling rule reference.
	ErrInvalidRuleGraph = errors.New("invalid rule graph")
)

type nodeKind int

const (
	kindSub nodeKind = iota
	kindMissionCount
	kindItemCount
)

type node struct {
	kind     nodeKind
	children []RuleID
	missions []domain.MissionID
	items    []domain.ItemID
	amount   int
	label    string
}

// Graph is an arena of rule nodes keyed by rule id.
type Graph struct {
	nodes map[RuleID]node
}

// NewGraph returns an empty rule graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[RuleID]node)}
}

func (g *Graph) add(id RuleID, n node) error {
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("rule %d: %w", id, ErrDuplicateRule)
	}
	g.nodes[id] = n
	return nil
}

// AddSubRule registers a rule satisfied when at least amount of its child
// rules are satisfied. An amount equal to the child count behaves as a
// logical AND, an amount of one as a logical OR, and an amount of zero is
// always satisfied.
func (g *Graph) AddSubRule(id RuleID, children []RuleID, amount int) error {
	return g.add(id, node{
		kind:     kindSub,
		children: append([]RuleID(nil), children...),
		amount:   amount,
	})
}

// AddMissionCountRule registers a rule satisfied when at least amount of
// the target missions are completed.
func (g *Graph) AddMissionCountRule(id RuleID, missions []domain.MissionID, amount int, label string) error {
	return g.add(id, node{
		kind:     kindMissionCount,
		missions: append([]domain.MissionID(nil), missions...),
		amount:   amount,
		label:    label,
	})
}

// AddItemCountRule registers a rule satisfied when the received copies of
// the target items sum to at least amount.
func (g *Graph) AddItemCountRule(id RuleID, items []domain.ItemID, amount int, label string) error {
	return g.add(id, node{
		kind:   kindItemCount,
		items:  append([]domain.ItemID(nil), items...),
		amount: amount,
		label:  label,
	})
}

// Label returns the display label of a count rule, or the empty string.
func (g *Graph) Label(id RuleID) string {
	return g.nodes[id].label
}

// Contains reports whether the graph holds a node for id.
func (g *Graph) Contains(id RuleID) bool {
	_, ok := g.nodes[id]
	return ok
}

// validate checks that every child reference resolves to a registered node.
func (g *Graph) validate() error {
	for id, n := range g.nodes {
		for _, child := range n.children {
			if _, ok := g.nodes[child]; !ok {
				return fmt.Errorf("rule %d references unknown rule %d: %w", id, child, ErrInvalidRuleGraph)
			}
		}
	}
	return nil
}

// IsAccessible evaluates a rule against one progression snapshot. It never
// fails and always terminates, even for self-referential rule graphs.
func (g *Graph) IsAccessible(id RuleID, snap domain.Snapshot) bool {
	return g.eval(id, snap, make(map[RuleID]bool), make(map[RuleID]bool))
}

// eval walks the rule graph bottom-up. satisfied memoizes rules already
// proven accessible within one walk; inProgress holds the active recursion
// path so that cyclic references evaluate to false instead of recursing.
func (g *Graph) eval(id RuleID, snap domain.Snapshot, satisfied, inProgress map[RuleID]bool) bool {
	if satisfied[id] {
		return true
	}
	if inProgress[id] {
		return false
	}
	n, ok := g.nodes[id]
	if !ok {
		// Unreachable after hierarchy validation.
		return false
	}

	inProgress[id] = true
	defer delete(inProgress, id)

	result := false
	switch n.kind {
	case kindMissionCount:
		count := 0
		for _, mission := range n.missions {
			if snap.Completed[mission] {
				count++
				if count >= n.amount {
					break
				}
			}
		}
		result = count >= n.amount
	case kindItemCount:
		count := 0
		for _, item := range n.items {
			count += snap.ReceivedCounts[item]
			if count >= n.amount {
				break
			}
		}
		result = count >= n.amount
	case kindSub:
		count := 0
		for _, child := range n.children {
			if g.eval(child, snap, satisfied, inProgress) {
				count++
				if count >= n.amount {
					break
				}
			}
		}
		result = count >= n.amount
	}

	if result {
		satisfied[id] = true
	}
	return result
}

package rules

import (
	"errors"
	"testing"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// scenarioHierarchy builds one always-accessible campaign and layout with a
// single column holding missions 10 and 11, where mission 11 requires
// mission 10 completed.
func scenarioHierarchy(t *testing.T) *Hierarchy {
	t.Helper()

	graph := NewGraph()
	if err := graph.AddSubRule(1, nil, 0); err != nil {
		t.Fatalf("add campaign rule: %v", err)
	}
	if err := graph.AddSubRule(2, nil, 0); err != nil {
		t.Fatalf("add layout rule: %v", err)
	}
	if err := graph.AddSubRule(3, nil, 0); err != nil {
		t.Fatalf("add first mission rule: %v", err)
	}
	if err := graph.AddMissionCountRule(4, []domain.MissionID{10}, 1, "Beat mission 10"); err != nil {
		t.Fatalf("add second mission rule: %v", err)
	}

	hierarchy, err := NewHierarchy([]Campaign{{
		Name:  "Liberation",
		Entry: 1,
		Layouts: []Layout{{
			Name:  "Opening Push",
			Entry: 2,
			Columns: [][]MissionSlot{{
				{Mission: 10, Entry: 3},
				{Mission: 11, Entry: 4},
			}},
		}},
	}}, graph)
	if err != nil {
		t.Fatalf("build hierarchy: %v", err)
	}
	return hierarchy
}

func TestScenarioMissionUnlocksAfterPredecessor(t *testing.T) {
	hierarchy := scenarioHierarchy(t)

	if hierarchy.IsMissionAccessible(11, domain.NewSnapshot()) {
		t.Fatal("mission 11 must be locked before mission 10 completes")
	}
	if !hierarchy.IsMissionAccessible(10, domain.NewSnapshot()) {
		t.Fatal("mission 10 must be open from the start")
	}
	if !hierarchy.IsMissionAccessible(11, snapshotWithMissions(10)) {
		t.Fatal("mission 11 must unlock once mission 10 completes")
	}
}

func TestAccessibleNodesStructuralAnd(t *testing.T) {
	// The layout's own rule always passes, but its campaign is locked, so
	// nothing below the campaign may be reported accessible.
	graph := NewGraph()
	if err := graph.AddMissionCountRule(1, []domain.MissionID{99}, 1, ""); err != nil {
		t.Fatalf("add campaign rule: %v", err)
	}
	if err := graph.AddSubRule(2, nil, 0); err != nil {
		t.Fatalf("add layout rule: %v", err)
	}
	if err := graph.AddSubRule(3, nil, 0); err != nil {
		t.Fatalf("add mission rule: %v", err)
	}

	hierarchy, err := NewHierarchy([]Campaign{{
		Name:  "Locked",
		Entry: 1,
		Layouts: []Layout{{
			Name:    "Inner",
			Entry:   2,
			Columns: [][]MissionSlot{{{Mission: 5, Entry: 3}}},
		}},
	}}, graph)
	if err != nil {
		t.Fatalf("build hierarchy: %v", err)
	}

	missions, layouts, campaigns := hierarchy.AccessibleNodes(domain.NewSnapshot())
	if len(missions) != 0 || len(campaigns) != 0 {
		t.Fatalf("expected nothing accessible, got missions %v campaigns %v", missions, campaigns)
	}
	if len(layouts[0]) != 0 {
		t.Fatalf("expected no accessible layouts under locked campaign, got %v", layouts[0])
	}

	missions, layouts, campaigns = hierarchy.AccessibleNodes(snapshotWithMissions(99))
	if len(missions) != 1 || missions[0] != 5 {
		t.Fatalf("expected mission 5 accessible, got %v", missions)
	}
	if len(layouts[0]) != 1 || layouts[0][0] != 0 {
		t.Fatalf("expected layout 0 accessible, got %v", layouts[0])
	}
	if len(campaigns) != 1 || campaigns[0] != 0 {
		t.Fatalf("expected campaign 0 accessible, got %v", campaigns)
	}
}

func TestEmptySlotsAreSkipped(t *testing.T) {
	graph := NewGraph()
	if err := graph.AddSubRule(1, nil, 0); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	hierarchy, err := NewHierarchy([]Campaign{{
		Name:  "Sparse",
		Entry: 1,
		Layouts: []Layout{{
			Name:  "Grid",
			Entry: 1,
			Columns: [][]MissionSlot{
				{{Mission: domain.NoMission}, {Mission: 3, Entry: 1}},
				{{Mission: domain.NoMission}},
			},
		}},
	}}, graph)
	if err != nil {
		t.Fatalf("build hierarchy: %v", err)
	}

	if got := hierarchy.MissionCount(); got != 1 {
		t.Fatalf("expected one occupied slot, got %d", got)
	}
	missions, _, _ := hierarchy.AccessibleNodes(domain.NewSnapshot())
	if len(missions) != 1 || missions[0] != 3 {
		t.Fatalf("expected only mission 3, got %v", missions)
	}
}

func TestNewHierarchyRejectsDanglingReferences(t *testing.T) {
	t.Run("dangling sub rule child", func(t *testing.T) {
		graph := NewGraph()
		if err := graph.AddSubRule(1, []RuleID{99}, 1); err != nil {
			t.Fatalf("add rule: %v", err)
		}
		_, err := NewHierarchy(nil, graph)
		if !errors.Is(err, ErrInvalidRuleGraph) {
			t.Fatalf("expected ErrInvalidRuleGraph, got %v", err)
		}
	})

	t.Run("dangling campaign entry", func(t *testing.T) {
		_, err := NewHierarchy([]Campaign{{Name: "Broken", Entry: 7}}, NewGraph())
		if !errors.Is(err, ErrInvalidRuleGraph) {
			t.Fatalf("expected ErrInvalidRuleGraph, got %v", err)
		}
	})

	t.Run("dangling mission entry", func(t *testing.T) {
		graph := NewGraph()
		if err := graph.AddSubRule(1, nil, 0); err != nil {
			t.Fatalf("add rule: %v", err)
		}
		_, err := NewHierarchy([]Campaign{{
			Name:  "Broken",
			Entry: 1,
			Layouts: []Layout{{
				Name:    "Inner",
				Entry:   1,
				Columns: [][]MissionSlot{{{Mission: 4, Entry: 42}}},
			}},
		}}, graph)
		if !errors.Is(err, ErrInvalidRuleGraph) {
			t.Fatalf("expected ErrInvalidRuleGraph, got %v", err)
		}
	})

	t.Run("mission in two slots", func(t *testing.T) {
		graph := NewGraph()
		if err := graph.AddSubRule(1, nil, 0); err != nil {
			t.Fatalf("add rule: %v", err)
		}
		_, err := NewHierarchy([]Campaign{{
			Name:  "Duplicated",
			Entry: 1,
			Layouts: []Layout{{
				Name:  "Inner",
				Entry: 1,
				Columns: [][]MissionSlot{{
					{Mission: 4, Entry: 1},
					{Mission: 4, Entry: 1},
				}},
			}},
		}}, graph)
		if !errors.Is(err, ErrInvalidRuleGraph) {
			t.Fatalf("expected ErrInvalidRuleGraph, got %v", err)
		}
	})
}

func TestMissionRules(t *testing.T) {
	hierarchy := scenarioHierarchy(t)

	entry, ok := hierarchy.MissionRules(11)
	if !ok {
		t.Fatal("expected rules for mission 11")
	}
	if entry.Mission != 4 || entry.Layout != 2 || entry.Campaign != 1 {
		t.Fatalf("unexpected rule triple %+v", entry)
	}
	if _, ok := hierarchy.MissionRules(99); ok {
		t.Fatal("expected no rules for unknown mission")
	}
}

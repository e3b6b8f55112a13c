package engine

import (
	"testing"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
	"github.com/louisbranch/shattered.front/internal/progression/location"
	"github.com/louisbranch/shattered.front/internal/progression/rules"
	"github.com/louisbranch/shattered.front/internal/progression/tech"
)

// testEngine builds an engine over one campaign holding missions 10 and 11,
// where mission 11 requires mission 10 completed. Mission 10 has a victory
// and two bonus objectives; mission 11 has a victory objective only.
func testEngine(t *testing.T, diagnostics DiagnosticSink) *Engine {
	t.Helper()

	graph := rules.NewGraph()
	if err := graph.AddSubRule(1, nil, 0); err != nil {
		t.Fatalf("add open rule: %v", err)
	}
	if err := graph.AddMissionCountRule(2, []domain.MissionID{10}, 1, "Beat mission 10"); err != nil {
		t.Fatalf("add gate rule: %v", err)
	}
	hierarchy, err := rules.NewHierarchy([]rules.Campaign{{
		Name:  "Liberation",
		Entry: 1,
		Layouts: []rules.Layout{{
			Name:  "Opening Push",
			Entry: 1,
			Columns: [][]rules.MissionSlot{{
				{Mission: 10, Entry: 1},
				{Mission: 11, Entry: 2},
			}},
		}},
	}}, graph)
	if err != nil {
		t.Fatalf("build hierarchy: %v", err)
	}

	codec := location.DefaultCodec()
	locs := make([]domain.LocationID, 0, 4)
	for _, objective := range []domain.ObjectiveIndex{0, 1, 2} {
		id, err := codec.Encode(10, objective)
		if err != nil {
			t.Fatalf("encode mission 10 objective %d: %v", objective, err)
		}
		locs = append(locs, id)
	}
	locs = append(locs, codec.VictoryLocation(11))

	eng, err := New(Config{
		Hierarchy:     hierarchy,
		Catalog:       tech.DefaultCatalog(),
		Codec:         codec,
		Options:       tech.DefaultOptions(),
		SchemaVersion: tech.CurrentSchemaVersion,
		Locations:     locs,
		Diagnostics:   diagnostics,
	})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return eng
}

func TestMissionUnlocksAfterVictoryChecked(t *testing.T) {
	eng := testEngine(t, nil)

	if !eng.IsMissionAccessible(10) {
		t.Fatal("mission 10 must be open from the start")
	}
	if eng.IsMissionAccessible(11) {
		t.Fatal("mission 11 must be locked initially")
	}
	if eng.IsMissionCompleted(10) {
		t.Fatal("mission 10 must not be completed initially")
	}

	// A bonus objective alone does not complete the mission.
	bonus, err := eng.Codec().Encode(10, 1)
	if err != nil {
		t.Fatalf("encode bonus: %v", err)
	}
	eng.MarkLocations(bonus)
	if eng.IsMissionCompleted(10) || eng.IsMissionAccessible(11) {
		t.Fatal("bonus objectives must not count as mission completion")
	}

	eng.MarkLocations(eng.Codec().VictoryLocation(10))
	if !eng.IsMissionCompleted(10) {
		t.Fatal("mission 10 must complete once its victory location checks")
	}
	if !eng.IsMissionAccessible(11) {
		t.Fatal("mission 11 must unlock after mission 10 completes")
	}
	if got := eng.MissionsCompleted(); got != 1 {
		t.Fatalf("expected 1 completed mission, got %d", got)
	}
}

func TestMarkLocationsIsIdempotent(t *testing.T) {
	eng := testEngine(t, nil)
	victory := eng.Codec().VictoryLocation(10)

	eng.MarkLocations(victory)
	eng.MarkLocations(victory, victory)
	if got := eng.MissionsCompleted(); got != 1 {
		t.Fatalf("expected 1 completed mission after re-marking, got %d", got)
	}
}

func TestUncollectedObjectives(t *testing.T) {
	eng := testEngine(t, nil)

	got := eng.UncollectedObjectives(10)
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("expected objectives [0 1 2], got %v", got)
	}

	bonus, err := eng.Codec().Encode(10, 1)
	if err != nil {
		t.Fatalf("encode bonus: %v", err)
	}
	eng.MarkLocations(bonus)

	got = eng.UncollectedObjectives(10)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("expected objectives [0 2], got %v", got)
	}
}

func TestUnfinishedMissions(t *testing.T) {
	eng := testEngine(t, nil)

	unfinished := eng.UnfinishedMissions()
	if len(unfinished) != 1 || unfinished[0] != 10 {
		t.Fatalf("expected only mission 10 unfinished, got %v", unfinished)
	}

	// Completing mission 10 entirely removes it and unlocks mission 11.
	for _, objective := range []domain.ObjectiveIndex{0, 1, 2} {
		id, err := eng.Codec().Encode(10, objective)
		if err != nil {
			t.Fatalf("encode objective %d: %v", objective, err)
		}
		eng.MarkLocations(id)
	}

	unfinished = eng.UnfinishedMissions()
	if len(unfinished) != 1 || unfinished[0] != 11 {
		t.Fatalf("expected only mission 11 unfinished, got %v", unfinished)
	}
}

func TestTechStateAndLevelQueries(t *testing.T) {
	eng := testEngine(t, nil)

	eng.ApplyItems(
		domain.ReceivedItem{Item: tech.ItemPrimalForm},
		domain.ReceivedItem{Item: tech.ItemCommanderLevel},
		domain.ReceivedItem{Item: tech.ItemCommanderLevel},
	)

	state := eng.TechState()
	if !state.HasFlag(domain.FactionSwarm, tech.SlotSwarmMutations, 0) {
		t.Fatal("expected primal form flag set")
	}
	if got := eng.BlendedLevel(); got != 2 {
		t.Fatalf("expected level 2 from items alone, got %d", got)
	}
	if got := eng.ReceivedCount(tech.ItemCommanderLevel); got != 2 {
		t.Fatalf("expected 2 level items, got %d", got)
	}
	if got := eng.ItemCount(); got != 3 {
		t.Fatalf("expected 3 received items, got %d", got)
	}
}

func TestDiagnosticsForwardedToSink(t *testing.T) {
	var codes []string
	eng := testEngine(t, func(code, _ string) {
		codes = append(codes, code)
	})

	eng.ApplyItems(
		domain.ReceivedItem{Item: tech.ItemProgressiveCommandUplink},
		domain.ReceivedItem{Item: tech.ItemUplinkScanPulse},
	)
	eng.TechState()

	if len(codes) != 1 || codes[0] != tech.DiagnosticIncompatibleShim {
		t.Fatalf("expected one incompatible-shim diagnostic, got %v", codes)
	}
}

func TestQueriesSeeConsistentSnapshot(t *testing.T) {
	eng := testEngine(t, nil)

	eng.MarkLocations(eng.Codec().VictoryLocation(10))
	snap := eng.Snapshot()
	if !snap.Completed[10] {
		t.Fatal("snapshot must include the completed mission")
	}

	// Growing state after the snapshot must not mutate it.
	eng.MarkLocations(eng.Codec().VictoryLocation(11))
	if snap.Completed[11] {
		t.Fatal("snapshot must be isolated from later growth")
	}
}

package rules

import (
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// MissionSlot is one grid position inside a layout column. A slot either
// holds a mission and its entry rule or is empty (Mission == NoMission).
type MissionSlot struct {
	Mission domain.MissionID
	Entry   RuleID
}

// Empty reports whether no mission occupies the slot.
func (s MissionSlot) Empty() bool {
	return s.Mission == domain.NoMission
}

// Layout is an ordered grid of mission slots inside a campaign.
type Layout struct {
	Name string
	// Entry gates access to the layout's missions.
	Entry RuleID
	// ExitMissions must be completed to leave the layout. Presentation
	// only; they do not affect accessibility.
	ExitMissions []domain.MissionID
	// Columns holds the mission slots, outer slice per column.
	Columns [][]MissionSlot
}

// Campaign is an ordered list of layouts with its own entry rule.
type Campaign struct {
	Name         string
	Entry        RuleID
	ExitMissions []domain.MissionID
	Layouts      []Layout
}

// EntryRules is the rule triple gating one mission: its own rule plus the
// rules of the layout and campaign that contain it.
type EntryRules struct {
	Mission  RuleID
	Layout   RuleID
	Campaign RuleID
}

// Hierarchy is the immutable campaign structure built once at session
// start. It owns the rule graph; evaluation borrows nodes by id.
type Hierarchy struct {
	campaigns    []Campaign
	graph        *Graph
	missionRules map[domain.MissionID]EntryRules
	missions     []domain.MissionID
}

// NewHierarchy validates the campaign structure against the rule graph and
// builds the mission index. It fails with ErrInvalidRuleGraph when any
// entry rule or child reference dangles, so steady-state evaluation never
// has to.
func NewHierarchy(campaigns []Campaign, graph *Graph) (*Hierarchy, error) {
	if graph == nil {
		graph = NewGraph()
	}
	if err := graph.validate(); err != nil {
		return nil, err
	}

	h := &Hierarchy{
		campaigns:    campaigns,
		graph:        graph,
		missionRules: make(map[domain.MissionID]EntryRules),
	}
	for _, campaign := range campaigns {
		if !graph.Contains(campaign.Entry) {
			return nil, fmt.Errorf("campaign %q entry rule %d: %w", campaign.Name, campaign.Entry, ErrInvalidRuleGraph)
		}
		for _, layout := range campaign.Layouts {
			if !graph.Contains(layout.Entry) {
				return nil, fmt.Errorf("layout %q entry rule %d: %w", layout.Name, layout.Entry, ErrInvalidRuleGraph)
			}
			for _, column := range layout.Columns {
				for _, slot := range column {
					if slot.Empty() {
						continue
					}
					if !graph.Contains(slot.Entry) {
						return nil, fmt.Errorf("mission %d entry rule %d: %w", slot.Mission, slot.Entry, ErrInvalidRuleGraph)
					}
					if _, exists := h.missionRules[slot.Mission]; exists {
						return nil, fmt.Errorf("mission %d occupies two slots: %w", slot.Mission, ErrInvalidRuleGraph)
					}
					h.missionRules[slot.Mission] = EntryRules{
						Mission:  slot.Entry,
						Layout:   layout.Entry,
						Campaign: campaign.Entry,
					}
					h.missions = append(h.missions, slot.Mission)
				}
			}
		}
	}
	return h, nil
}

// Campaigns returns the campaign structure in order.
func (h *Hierarchy) Campaigns() []Campaign {
	return h.campaigns
}

// Graph returns the rule graph owned by the hierarchy.
func (h *Hierarchy) Graph() *Graph {
	return h.graph
}

// Missions returns every occupied mission slot in walk order.
func (h *Hierarchy) Missions() []domain.MissionID {
	return h.missions
}

// MissionCount returns the number of occupied mission slots.
func (h *Hierarchy) MissionCount() int {
	return len(h.missions)
}

// MissionRules returns the entry-rule triple for a mission.
func (h *Hierarchy) MissionRules(mission domain.MissionID) (EntryRules, bool) {
	entry, ok := h.missionRules[mission]
	return entry, ok
}

// AccessibleNodes walks the hierarchy against one snapshot and returns the
// accessible mission ids, the accessible layout indexes per campaign
// index, and the accessible campaign indexes. A layout is only entered
// when its campaign is accessible and a slot only when its layout is,
// independent of each level's own rule.
func (h *Hierarchy) AccessibleNodes(snap domain.Snapshot) ([]domain.MissionID, map[int][]int, []int) {
	var missions []domain.MissionID
	layouts := make(map[int][]int)
	var campaigns []int

	// One satisfied-memo per walk: every level evaluates against the same
	// snapshot, so a rule proven accessible stays accessible for the rest
	// of the walk.
	satisfied := make(map[RuleID]bool)
	eval := func(id RuleID) bool {
		return h.graph.eval(id, snap, satisfied, make(map[RuleID]bool))
	}

	for campaignIdx, campaign := range h.campaigns {
		layouts[campaignIdx] = []int{}
		if !eval(campaign.Entry) {
			continue
		}
		campaigns = append(campaigns, campaignIdx)
		for layoutIdx, layout := range campaign.Layouts {
			if !eval(layout.Entry) {
				continue
			}
			layouts[campaignIdx] = append(layouts[campaignIdx], layoutIdx)
			for _, column := range layout.Columns {
				for _, slot := range column {
					if slot.Empty() {
						continue
					}
					if eval(slot.Entry) {
						missions = append(missions, slot.Mission)
					}
				}
			}
		}
	}
	return missions, layouts, campaigns
}

// IsMissionAccessible reports whether one mission is reachable under the
// snapshot. It walks the full hierarchy so the structural AND between
// levels is honored.
func (h *Hierarchy) IsMissionAccessible(mission domain.MissionID, snap domain.Snapshot) bool {
	missions, _, _ := h.AccessibleNodes(snap)
	for _, id := range missions {
		if id == mission {
			return true
		}
	}
	return false
}

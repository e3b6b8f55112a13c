// Package session parses the setup payload a session host hands the
// tracker at connect time and turns it into the immutable structures the
// progression engine evaluates: the campaign hierarchy, the location list,
// and the accumulation options.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/shattered.front/internal/platform/errors"
	"github.com/louisbranch/shattered.front/internal/progression/domain"
	"github.com/louisbranch/shattered.front/internal/progression/rules"
	"github.com/louisbranch/shattered.front/internal/progression/tech"
)

// Rule kinds accepted in the setup payload.
const (
	RuleKindSub      = "sub"
	RuleKindMissions = "missions"
	RuleKindItems    = "items"
)

// Setup is the parsed session payload. It is immutable after Parse.
type Setup struct {
	// SchemaVersion selects which compatibility shims apply when folding
	// received items.
	SchemaVersion int `json:"schema_version"`

	Resources ResourceRates `json:"resources"`
	Levels    LevelRates    `json:"levels"`

	// UpgradesFromMissionsPercent grants global upgrade tiers from
	// mission completion alone. Zero disables.
	UpgradesFromMissionsPercent int `json:"upgrades_from_missions_percent"`

	// Locations lists every location id the session can award.
	Locations []int64 `json:"locations"`

	// Rules is the flat rule arena; campaign slots reference entries by id.
	Rules []RuleSpec `json:"rules"`

	Campaigns []CampaignSpec `json:"campaigns"`
}

// ResourceRates overrides the per-copy starting-resource amounts. Nil
// fields keep the defaults.
type ResourceRates struct {
	MineralsPerItem *int `json:"minerals_per_item"`
	GasPerItem      *int `json:"gas_per_item"`
	SupplyPerItem   *int `json:"supply_per_item"`
}

// LevelRates configures the blended commander level. Nil caps keep the
// default of uncapped.
type LevelRates struct {
	PerMission    int  `json:"per_mission"`
	PerMissionCap *int `json:"per_mission_cap"`
	TotalCap      *int `json:"total_cap"`
}

// RuleSpec is one entry of the flat rule arena.
type RuleSpec struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`
	// Children applies to sub rules; Missions and Items to their kinds.
	Children []int   `json:"children,omitempty"`
	Missions []int   `json:"missions,omitempty"`
	Items    []int64 `json:"items,omitempty"`
	Amount   int     `json:"amount"`
	Label    string  `json:"label,omitempty"`
}

// SlotSpec is one grid position. Mission -1 marks an empty slot.
type SlotSpec struct {
	Mission int `json:"mission"`
	Entry   int `json:"entry"`
}

// LayoutSpec is one mission grid inside a campaign.
type LayoutSpec struct {
	Name         string       `json:"name"`
	Entry        int          `json:"entry"`
	ExitMissions []int        `json:"exit_missions,omitempty"`
	Columns      [][]SlotSpec `json:"columns"`
}

// CampaignSpec is one campaign with its ordered layouts.
type CampaignSpec struct {
	Name         string       `json:"name"`
	Entry        int          `json:"entry"`
	ExitMissions []int        `json:"exit_missions,omitempty"`
	Layouts      []LayoutSpec `json:"layouts"`
}

// Parse decodes and validates a setup payload. Malformed JSON or an
// unknown rule kind yields CodeSetupMalformed; a schema version outside
// the supported window yields CodeSetupSchemaUnsupported.
func Parse(data []byte) (*Setup, error) {
	var setup Setup
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, errors.Wrap(errors.CodeSetupMalformed, "decode setup payload", err)
	}
	if setup.SchemaVersion < tech.OldestSchemaVersion || setup.SchemaVersion > tech.CurrentSchemaVersion {
		return nil, errors.WithMetadata(errors.CodeSetupSchemaUnsupported,
			fmt.Sprintf("schema version %d outside supported range %d..%d",
				setup.SchemaVersion, tech.OldestSchemaVersion, tech.CurrentSchemaVersion),
			map[string]string{"schema_version": fmt.Sprintf("%d", setup.SchemaVersion)})
	}
	for _, rule := range setup.Rules {
		switch rule.Kind {
		case RuleKindSub, RuleKindMissions, RuleKindItems:
		default:
			return nil, errors.WithMetadata(errors.CodeSetupMalformed,
				fmt.Sprintf("rule %d has unknown kind %q", rule.ID, rule.Kind),
				map[string]string{"rule_kind": rule.Kind})
		}
	}
	if len(setup.Campaigns) == 0 {
		return nil, errors.New(errors.CodeSetupMalformed, "setup payload has no campaigns")
	}
	return &setup, nil
}

// BuildHierarchy assembles the rule graph and campaign hierarchy the
// payload describes. Dangling references surface as CodeSetupMalformed
// wrapping rules.ErrInvalidRuleGraph.
func (s *Setup) BuildHierarchy() (*rules.Hierarchy, error) {
	graph := rules.NewGraph()
	for _, spec := range s.Rules {
		var err error
		switch spec.Kind {
		case RuleKindSub:
			children := make([]rules.RuleID, len(spec.Children))
			for i, child := range spec.Children {
				children[i] = rules.RuleID(child)
			}
			err = graph.AddSubRule(rules.RuleID(spec.ID), children, spec.Amount)
		case RuleKindMissions:
			missions := make([]domain.MissionID, len(spec.Missions))
			for i, mission := range spec.Missions {
				missions[i] = domain.MissionID(mission)
			}
			err = graph.AddMissionCountRule(rules.RuleID(spec.ID), missions, spec.Amount, spec.Label)
		case RuleKindItems:
			items := make([]domain.ItemID, len(spec.Items))
			for i, item := range spec.Items {
				items[i] = domain.ItemID(item)
			}
			err = graph.AddItemCountRule(rules.RuleID(spec.ID), items, spec.Amount, spec.Label)
		default:
			err = fmt.Errorf("rule %d has unknown kind %q", spec.ID, spec.Kind)
		}
		if err != nil {
			return nil, errors.Wrap(errors.CodeSetupMalformed, "build rule graph", err)
		}
	}

	campaigns := make([]rules.Campaign, len(s.Campaigns))
	for i, campaignSpec := range s.Campaigns {
		campaign := rules.Campaign{
			Name:         campaignSpec.Name,
			Entry:        rules.RuleID(campaignSpec.Entry),
			ExitMissions: missionIDs(campaignSpec.ExitMissions),
			Layouts:      make([]rules.Layout, len(campaignSpec.Layouts)),
		}
		for j, layoutSpec := range campaignSpec.Layouts {
			layout := rules.Layout{
				Name:         layoutSpec.Name,
				Entry:        rules.RuleID(layoutSpec.Entry),
				ExitMissions: missionIDs(layoutSpec.ExitMissions),
				Columns:      make([][]rules.MissionSlot, len(layoutSpec.Columns)),
			}
			for k, columnSpec := range layoutSpec.Columns {
				column := make([]rules.MissionSlot, len(columnSpec))
				for l, slotSpec := range columnSpec {
					column[l] = rules.MissionSlot{
						Mission: domain.MissionID(slotSpec.Mission),
						Entry:   rules.RuleID(slotSpec.Entry),
					}
				}
				layout.Columns[k] = column
			}
			campaign.Layouts[j] = layout
		}
		campaigns[i] = campaign
	}

	hierarchy, err := rules.NewHierarchy(campaigns, graph)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSetupMalformed, "build campaign hierarchy", err)
	}
	return hierarchy, nil
}

// Options returns the accumulation constants with payload overrides
// applied over the defaults.
func (s *Setup) Options() tech.Options {
	opts := tech.DefaultOptions()
	if s.Resources.MineralsPerItem != nil {
		opts.MineralsPerItem = *s.Resources.MineralsPerItem
	}
	if s.Resources.GasPerItem != nil {
		opts.GasPerItem = *s.Resources.GasPerItem
	}
	if s.Resources.SupplyPerItem != nil {
		opts.SupplyPerItem = *s.Resources.SupplyPerItem
	}
	opts.LevelsPerMission = s.Levels.PerMission
	if s.Levels.PerMissionCap != nil {
		opts.LevelsPerMissionCap = *s.Levels.PerMissionCap
	}
	if s.Levels.TotalCap != nil {
		opts.TotalLevelCap = *s.Levels.TotalCap
	}
	opts.UpgradesFromMissionsPercent = s.UpgradesFromMissionsPercent
	return opts
}

// LocationIDs returns the session's location list as typed ids.
func (s *Setup) LocationIDs() []domain.LocationID {
	ids := make([]domain.LocationID, len(s.Locations))
	for i, id := range s.Locations {
		ids[i] = domain.LocationID(id)
	}
	return ids
}

func missionIDs(values []int) []domain.MissionID {
	if len(values) == 0 {
		return nil
	}
	ids := make([]domain.MissionID, len(values))
	for i, value := range values {
		ids[i] = domain.MissionID(value)
	}
	return ids
}

package tech

import (
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// Options carries the session-configurable accumulation constants.
type Options struct {
	// Per-copy amounts for the three starting-resource items.
	MineralsPerItem int
	GasPerItem      int
	SupplyPerItem   int

	// LevelsPerMission is the blended-level rate earned per completed
	// mission. The caps disable at -1.
	LevelsPerMission    int
	LevelsPerMissionCap int
	TotalLevelCap       int

	// UpgradesFromMissionsPercent grants one global weapon/armor tier per
	// completed share of the mission total. Zero disables.
	UpgradesFromMissionsPercent int
}

// DefaultOptions returns the constants sessions used before they became
// configurable.
func DefaultOptions() Options {
	return Options{
		MineralsPerItem:     15,
		GasPerItem:          15,
		SupplyPerItem:       2,
		LevelsPerMissionCap: -1,
		TotalLevelCap:       -1,
	}
}

// Diagnostic is a recoverable accumulation finding surfaced to the caller.
type Diagnostic struct {
	Code    string
	Message string
}

// DiagnosticIncompatibleShim reports legacy and modern item forms present
// at once; the substitution shim is skipped rather than double-applied.
const DiagnosticIncompatibleShim = "PROGRESSION_INCOMPATIBLE_SHIM"

// Accumulate folds a received-item stream into per-faction state. The fold
// is pure: replaying the same stream produces identical state. schemaVersion
// selects which compatibility shims apply; completedMissions and
// totalMissions feed the mission-derived upgrade option.
func (c *Catalog) Accumulate(received []domain.ReceivedItem, schemaVersion int,
	completedMissions, totalMissions int, opts Options) (State, []Diagnostic) {

	state := newState(c)
	var diagnostics []Diagnostic

	// Shim-implied items fold first so the real stream lands on top.
	stream := impliedItems(schemaVersion)
	stream = append(stream, received...)

	deprecatedUplinks := 0
	shieldsFromGround := 0
	shieldsFromAir := 0

	for _, event := range stream {
		def, ok := c.byID[event.Item]
		if !ok {
			continue
		}
		switch def.Kind {
		case EffectFlag:
			state[def.Faction][def.Slot] |= 1 << def.Bit
		case EffectCounter:
			c.advanceTier(state, def, 1)
			if schemaVersion < platingNerfReversalBelow &&
				def.ID == ItemProgressiveRegenerativePlating &&
				state.Tier(def.Faction, def.Slot, def.Bit) == 2 {
				// Pre-rebalance sessions had no tier 2; promote to tier 3.
				c.advanceTier(state, def, 1)
			}
		case EffectBundle:
			switch def.ID {
			case ItemProgressiveGroundUpgrade:
				shieldsFromGround++
			case ItemProgressiveAirUpgrade:
				shieldsFromAir++
			}
			for _, member := range c.bundleMembers(def) {
				c.advanceTier(state, member, 1)
			}
		case EffectSum:
			switch def.ID {
			case ItemProgressiveCommandUplink:
				deprecatedUplinks++
			case ItemStartingMinerals:
				state[def.Faction][def.Slot] += opts.MineralsPerItem
			case ItemStartingGas:
				state[def.Faction][def.Slot] += opts.GasPerItem
			case ItemStartingSupply:
				state[def.Faction][def.Slot] += opts.SupplyPerItem
			default:
				state[def.Faction][def.Slot] += def.Value
			}
		}
	}

	// Ground and air upgrade paths converge on the shared shield stat:
	// their contributions reconcile by max, never by sum.
	if tier := max(shieldsFromGround, shieldsFromAir); tier > 0 {
		shields := c.byID[ItemConclaveShields]
		c.advanceTier(state, shields, tier)
	}

	if deprecatedUplinks > 0 {
		diagnostics = append(diagnostics, c.substituteCommandUplink(state, stream, deprecatedUplinks)...)
	}

	if opts.UpgradesFromMissionsPercent > 0 && totalMissions > 0 {
		c.applyMissionUpgrades(state, completedMissions, totalMissions, opts.UpgradesFromMissionsPercent)
	}

	return state, diagnostics
}

// bundleMembers resolves a bundle's member counters, excluding shields:
// shield contributions go through the max reducer instead.
func (c *Catalog) bundleMembers(def ItemDef) []ItemDef {
	members := make([]ItemDef, 0, len(def.Members))
	for _, id := range def.Members {
		if id == ItemConclaveShields &&
			(def.ID == ItemProgressiveGroundUpgrade || def.ID == ItemProgressiveAirUpgrade) {
			continue
		}
		members = append(members, c.byID[id])
	}
	return members
}

// advanceTier raises a counter by tiers, honoring the item's ceiling.
func (c *Catalog) advanceTier(state State, def ItemDef, tiers int) {
	for i := 0; i < tiers; i++ {
		if def.MaxTier > 0 && state.Tier(def.Faction, def.Slot, def.Bit) >= def.MaxTier {
			return
		}
		state[def.Faction][def.Slot] += 1 << def.Bit
	}
}

// substituteCommandUplink translates the deprecated aggregate uplink item
// into its modern replacements. When any replacement is present in the
// stream the shim is skipped entirely and a warning diagnostic emitted, so
// the effects are never double-applied.
func (c *Catalog) substituteCommandUplink(state State, stream []domain.ReceivedItem, copies int) []Diagnostic {
	replacements := make(map[domain.ItemID]bool, len(commandUplinkReplacements))
	for _, id := range commandUplinkReplacements {
		replacements[id] = true
	}
	for _, event := range stream {
		if replacements[event.Item] {
			return []Diagnostic{{
				Code: DiagnosticIncompatibleShim,
				Message: fmt.Sprintf(
					"both %s and its replacements are present; skipping compatibility handling",
					c.Name(ItemProgressiveCommandUplink)),
			}}
		}
	}

	scanPulse := c.byID[ItemUplinkScanPulse]
	state[scanPulse.Faction][scanPulse.Slot] |= 1 << scanPulse.Bit
	cargoDrone := c.byID[ItemUplinkCargoDrone]
	state[cargoDrone.Faction][cargoDrone.Slot] |= 1 << cargoDrone.Bit
	if copies >= 2 {
		bastion := c.byID[ItemBastionUplinkModule]
		state[bastion.Faction][bastion.Slot] |= 1 << bastion.Bit
	}
	return nil
}

// applyMissionUpgrades grants global weapon/armor tiers for completed
// missions: one tier per configured share of the mission total, capped at
// the upgrade ceiling.
func (c *Catalog) applyMissionUpgrades(state State, completedMissions, totalMissions, percent int) {
	missionsPerTier := totalMissions * percent / 100
	tiers := maxUpgradeTier
	if missionsPerTier > 0 {
		tiers = min(completedMissions/missionsPerTier, maxUpgradeTier)
	}
	if tiers <= 0 {
		return
	}
	for _, def := range c.byID {
		if def.Kind == EffectCounter && def.GenericUpgrade {
			c.advanceTier(state, def, tiers)
		}
	}
}

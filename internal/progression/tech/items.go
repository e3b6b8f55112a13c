package tech

import (
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// EffectKind selects how received copies of an item change its slot.
type EffectKind int

const (
	// EffectFlag sets a single bit; repeats are idempotent.
	EffectFlag EffectKind = iota
	// EffectCounter advances a tier field by one per copy.
	EffectCounter
	// EffectSum adds a numeric value per copy.
	EffectSum
	// EffectBundle expands one copy into a tier for each member counter.
	EffectBundle
)

// ItemDef describes one catalog item and its effect on faction state.
type ItemDef struct {
	ID      domain.ItemID
	Name    string
	Faction domain.Faction
	// Slot indexes the faction's state vector.
	Slot int
	// Bit is the bit position (flags) or tier-field offset (counters).
	Bit  int
	Kind EffectKind
	// Value is the fixed amount added per copy for Sum items. The three
	// starting-resource items ignore it in favor of session options.
	Value int
	// MaxTier caps counter advancement; zero means unlimited.
	MaxTier int
	// Members lists the counter items a bundle expands into.
	Members []domain.ItemID
	// GenericUpgrade marks counters advanced by mission-derived upgrades.
	GenericUpgrade bool
}

// Well-known item ids. The id space is shared with the multiworld server.
const (
	// Conclave upgrade counters, two-bit tier fields in the upgrades slot.
	ItemConclaveGroundWeapons domain.ItemID = 77101
	ItemConclaveGroundArmor   domain.ItemID = 77102
	ItemConclaveAirWeapons    domain.ItemID = 77103
	ItemConclaveAirArmor      domain.ItemID = 77104
	ItemConclaveShields       domain.ItemID = 77105

	// Bundled upgrade paths. Their shield contributions reconcile by max,
	// not by sum, since ground and air converge on the same shield stat.
	ItemProgressiveGroundUpgrade domain.ItemID = 77110
	ItemProgressiveAirUpgrade    domain.ItemID = 77111

	// Vanguard uplink systems.
	ItemUplinkScanPulse     domain.ItemID = 77201
	ItemUplinkCargoDrone    domain.ItemID = 77202
	ItemUplinkExtraSupplies domain.ItemID = 77203
	ItemBastionUplinkModule domain.ItemID = 77204

	// ItemProgressiveCommandUplink is deprecated: old schemas shipped it as
	// an aggregate of the uplink systems above. See the substitution shim.
	ItemProgressiveCommandUplink domain.ItemID = 77210

	// Starting resources. Amounts come from session options, not the item.
	ItemStartingMinerals domain.ItemID = 77220
	ItemStartingGas      domain.ItemID = 77221
	ItemStartingSupply   domain.ItemID = 77222

	// ItemSalvageCache adds a fixed mineral bonus per copy.
	ItemSalvageCache domain.ItemID = 77223

	// Vanguard weapon and armor counters.
	ItemVanguardWeapons domain.ItemID = 77230
	ItemVanguardArmor   domain.ItemID = 77231

	// Swarm evolutions and levels.
	ItemProgressiveRegenerativePlating domain.ItemID = 77301
	ItemPrimalForm                     domain.ItemID = 77302
	ItemSwarmWeapons                   domain.ItemID = 77303
	ItemSwarmCarapace                  domain.ItemID = 77304
	ItemCommanderLevel                 domain.ItemID = 77310

	// Items implied by schema compatibility shims.
	ItemGuardianProtocol  domain.ItemID = 77401
	ItemWarCouncilMandate domain.ItemID = 77402
)

// Faction state vector slots.
const (
	SlotVanguardSystems  = 0
	SlotVanguardMinerals = 1
	SlotVanguardGas      = 2
	SlotVanguardSupply   = 3
	SlotVanguardUpgrades = 4

	SlotSwarmMutations = 0
	SlotSwarmEvolution = 1
	SlotSwarmLevels    = 2

	SlotConclaveProtocols = 0
	SlotConclaveUpgrades  = 1
)

// maxUpgradeTier is the ceiling for weapon, armor, and shield tiers.
const maxUpgradeTier = 3

// Catalog holds the item definitions for one session.
type Catalog struct {
	byID      map[domain.ItemID]ItemDef
	slotCount map[domain.Faction]int
}

// NewCatalog validates item definitions and builds the lookup tables.
func NewCatalog(defs []ItemDef) (*Catalog, error) {
	catalog := &Catalog{
		byID:      make(map[domain.ItemID]ItemDef, len(defs)),
		slotCount: make(map[domain.Faction]int),
	}
	for _, def := range defs {
		if _, exists := catalog.byID[def.ID]; exists {
			return nil, fmt.Errorf("item %d (%s) defined twice", def.ID, def.Name)
		}
		if def.Slot < 0 || def.Bit < 0 {
			return nil, fmt.Errorf("item %d (%s) has negative slot or bit", def.ID, def.Name)
		}
		catalog.byID[def.ID] = def
		if def.Slot+1 > catalog.slotCount[def.Faction] {
			catalog.slotCount[def.Faction] = def.Slot + 1
		}
	}
	for _, def := range defs {
		for _, member := range def.Members {
			memberDef, ok := catalog.byID[member]
			if !ok {
				return nil, fmt.Errorf("item %d (%s) bundles unknown item %d", def.ID, def.Name, member)
			}
			if memberDef.Kind != EffectCounter {
				return nil, fmt.Errorf("item %d (%s) bundles non-counter item %d", def.ID, def.Name, member)
			}
		}
	}
	return catalog, nil
}

// Lookup returns the definition for an item id.
func (c *Catalog) Lookup(id domain.ItemID) (ItemDef, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Name returns the display name for an item id, or the empty string.
func (c *Catalog) Name(id domain.ItemID) string {
	return c.byID[id].Name
}

// DefaultCatalog returns the catalog for the shipped campaign content.
func DefaultCatalog() *Catalog {
	defs := []ItemDef{
		{ID: ItemConclaveGroundWeapons, Name: "Conclave Ground Weapons", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Bit: 0, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemConclaveGroundArmor, Name: "Conclave Ground Armor", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Bit: 2, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemConclaveAirWeapons, Name: "Conclave Air Weapons", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Bit: 4, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemConclaveAirArmor, Name: "Conclave Air Armor", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Bit: 6, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemConclaveShields, Name: "Conclave Shields", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Bit: 8, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},

		{ID: ItemProgressiveGroundUpgrade, Name: "Progressive Ground Upgrade", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Kind: EffectBundle,
			Members: []domain.ItemID{ItemConclaveGroundWeapons, ItemConclaveGroundArmor, ItemConclaveShields}},
		{ID: ItemProgressiveAirUpgrade, Name: "Progressive Air Upgrade", Faction: domain.FactionConclave,
			Slot: SlotConclaveUpgrades, Kind: EffectBundle,
			Members: []domain.ItemID{ItemConclaveAirWeapons, ItemConclaveAirArmor, ItemConclaveShields}},

		{ID: ItemUplinkScanPulse, Name: "Uplink Scan Pulse", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSystems, Bit: 0, Kind: EffectFlag},
		{ID: ItemUplinkCargoDrone, Name: "Uplink Cargo Drone", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSystems, Bit: 1, Kind: EffectFlag},
		{ID: ItemUplinkExtraSupplies, Name: "Uplink Extra Supplies", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSystems, Bit: 2, Kind: EffectFlag},
		{ID: ItemBastionUplinkModule, Name: "Bastion Uplink Module", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSystems, Bit: 3, Kind: EffectFlag},
		{ID: ItemProgressiveCommandUplink, Name: "Progressive Command Uplink", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSystems, Kind: EffectSum},

		{ID: ItemStartingMinerals, Name: "Starting Minerals", Faction: domain.FactionVanguard,
			Slot: SlotVanguardMinerals, Kind: EffectSum},
		{ID: ItemStartingGas, Name: "Starting Gas", Faction: domain.FactionVanguard,
			Slot: SlotVanguardGas, Kind: EffectSum},
		{ID: ItemStartingSupply, Name: "Starting Supply", Faction: domain.FactionVanguard,
			Slot: SlotVanguardSupply, Kind: EffectSum},
		{ID: ItemSalvageCache, Name: "Salvage Cache", Faction: domain.FactionVanguard,
			Slot: SlotVanguardMinerals, Kind: EffectSum, Value: 15},

		{ID: ItemVanguardWeapons, Name: "Vanguard Weapons", Faction: domain.FactionVanguard,
			Slot: SlotVanguardUpgrades, Bit: 0, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemVanguardArmor, Name: "Vanguard Armor", Faction: domain.FactionVanguard,
			Slot: SlotVanguardUpgrades, Bit: 2, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},

		{ID: ItemProgressiveRegenerativePlating, Name: "Progressive Regenerative Plating", Faction: domain.FactionSwarm,
			Slot: SlotSwarmEvolution, Bit: 0, Kind: EffectCounter, MaxTier: maxUpgradeTier},
		{ID: ItemPrimalForm, Name: "Primal Form", Faction: domain.FactionSwarm,
			Slot: SlotSwarmMutations, Bit: 0, Kind: EffectFlag},
		{ID: ItemSwarmWeapons, Name: "Swarm Weapons", Faction: domain.FactionSwarm,
			Slot: SlotSwarmEvolution, Bit: 2, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemSwarmCarapace, Name: "Swarm Carapace", Faction: domain.FactionSwarm,
			Slot: SlotSwarmEvolution, Bit: 4, Kind: EffectCounter, MaxTier: maxUpgradeTier, GenericUpgrade: true},
		{ID: ItemCommanderLevel, Name: "Commander Level", Faction: domain.FactionSwarm,
			Slot: SlotSwarmLevels, Kind: EffectSum, Value: 1},

		{ID: ItemGuardianProtocol, Name: "Guardian Protocol", Faction: domain.FactionConclave,
			Slot: SlotConclaveProtocols, Bit: 0, Kind: EffectFlag},
		{ID: ItemWarCouncilMandate, Name: "War Council Mandate", Faction: domain.FactionConclave,
			Slot: SlotConclaveProtocols, Bit: 1, Kind: EffectFlag},
	}
	catalog, err := NewCatalog(defs)
	if err != nil {
		// The shipped definitions are internally consistent.
		panic(err)
	}
	return catalog
}

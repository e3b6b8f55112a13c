package tech

import "github.com/louisbranch/shattered.front/internal/progression/domain"

// Schema versions. Sessions declare the version their configuration was
// generated under; shims reconcile older sessions with current semantics.
const (
	// OldestSchemaVersion is the oldest session format still accepted.
	OldestSchemaVersion = 2
	// CurrentSchemaVersion is the format produced by current generators.
	CurrentSchemaVersion = 4
)

type impliedItem struct {
	item     domain.ItemID
	quantity int
}

// versionShim injects items that sessions below a schema version granted by
// default instead of shipping on the wire.
type versionShim struct {
	belowVersion int
	implied      []impliedItem
}

// versionShims is ordered oldest threshold first. Implied items are
// prepended to the stream before folding, never appended after it.
var versionShims = []versionShim{
	{belowVersion: 3, implied: []impliedItem{
		{item: ItemWarCouncilMandate, quantity: 1},
	}},
	{belowVersion: 4, implied: []impliedItem{
		{item: ItemGuardianProtocol, quantity: 1},
	}},
}

// impliedItems synthesizes the shim items owed to a schema version.
func impliedItems(schemaVersion int) []domain.ReceivedItem {
	var items []domain.ReceivedItem
	for _, shim := range versionShims {
		if schemaVersion >= shim.belowVersion {
			continue
		}
		for _, implied := range shim.implied {
			for i := 0; i < implied.quantity; i++ {
				items = append(items, domain.ReceivedItem{Item: implied.item})
			}
		}
	}
	return items
}

// commandUplinkReplacements is the substitution table for the deprecated
// aggregate uplink item: one copy grants the scan pulse and cargo drone,
// a second copy additionally grants the bastion module. The substitution
// only applies when none of the modern items are present themselves.
var commandUplinkReplacements = []domain.ItemID{
	ItemUplinkScanPulse,
	ItemUplinkCargoDrone,
	ItemUplinkExtraSupplies,
	ItemBastionUplinkModule,
}

// platingNerfReversalBelow is the schema version threshold for the plating
// rebalance: older sessions jump straight from tier 2 to tier 3.
const platingNerfReversalBelow = 3

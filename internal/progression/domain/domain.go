package domain

// MissionID identifies one mission, stable across a world instance.
type MissionID int

// NoMission marks an empty mission slot in a layout grid.
const NoMission MissionID = -1

// ObjectiveIndex addresses one unlock point within a mission. Index 0 is
// the victory objective; 1..99 are bonus objectives.
type ObjectiveIndex int

// VictoryObjective is the objective index of a mission's victory location.
const VictoryObjective ObjectiveIndex = 0

// LocationID is the global identifier of one (mission, objective) pair.
type LocationID int64

// ItemID identifies one item definition in the catalog.
type ItemID int64

// Faction identifies one playable faction.
type Faction int

const (
	// FactionVanguard is the human expeditionary force.
	FactionVanguard Faction = iota
	// FactionSwarm is the bio-engineered swarm.
	FactionSwarm
	// FactionConclave is the psionic conclave.
	FactionConclave
)

// Factions returns all playable factions in declaration order.
func Factions() []Faction {
	return []Faction{FactionVanguard, FactionSwarm, FactionConclave}
}

// String returns the lowercase faction name.
func (f Faction) String() string {
	switch f {
	case FactionVanguard:
		return "vanguard"
	case FactionSwarm:
		return "swarm"
	case FactionConclave:
		return "conclave"
	}
	return "unknown"
}

// ReceivedItem is one record of the append-only item stream.
type ReceivedItem struct {
	// Item is the catalog id of the delivered item.
	Item ItemID
	// Sender is the slot number of the player whose world contained the item.
	Sender int
	// Location is the location in the sender's world that held the item.
	Location LocationID
	// Flags carries server-side classification bits (progression, trap, ...).
	Flags int
}

// Snapshot is one consistent read of the monotonic progression sources.
type Snapshot struct {
	// Completed holds the missions whose victory location has been checked.
	Completed map[MissionID]bool
	// ReceivedCounts holds the number of received copies per item.
	ReceivedCounts map[ItemID]int
}

// NewSnapshot returns an empty snapshot with allocated maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Completed:      make(map[MissionID]bool),
		ReceivedCounts: make(map[ItemID]int),
	}
}

// CountItems folds a received-item stream into per-item counts.
func CountItems(items []ReceivedItem) map[ItemID]int {
	counts := make(map[ItemID]int, len(items))
	for _, item := range items {
		counts[item.Item]++
	}
	return counts
}

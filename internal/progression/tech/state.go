package tech

import "github.com/louisbranch/shattered.front/internal/progression/domain"

// tierFieldMask extracts one two-bit counter tier field.
const tierFieldMask = 0x3

// State is the per-faction technology state: a slot-indexed vector of
// bitfields, tier fields, and running sums per faction.
type State map[domain.Faction][]int

// newState allocates zeroed vectors sized by the catalog's slot layout.
func newState(catalog *Catalog) State {
	state := make(State, len(catalog.slotCount))
	for _, faction := range domain.Factions() {
		state[faction] = make([]int, catalog.slotCount[faction])
	}
	return state
}

// Value returns the raw value of one faction slot.
func (s State) Value(faction domain.Faction, slot int) int {
	vector := s[faction]
	if slot < 0 || slot >= len(vector) {
		return 0
	}
	return vector[slot]
}

// HasFlag reports whether a flag bit is set in one faction slot.
func (s State) HasFlag(faction domain.Faction, slot, bit int) bool {
	return s.Value(faction, slot)&(1<<bit) != 0
}

// Tier returns the counter tier stored at a bit offset of one faction slot.
func (s State) Tier(faction domain.Faction, slot, bit int) int {
	return (s.Value(faction, slot) >> bit) & tierFieldMask
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	clone := make(State, len(s))
	for faction, vector := range s {
		clone[faction] = append([]int(nil), vector...)
	}
	return clone
}

// Equal reports whether two states hold identical vectors.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for faction, vector := range s {
		otherVector, ok := other[faction]
		if !ok || len(vector) != len(otherVector) {
			return false
		}
		for i, value := range vector {
			if value != otherVector[i] {
				return false
			}
		}
	}
	return true
}

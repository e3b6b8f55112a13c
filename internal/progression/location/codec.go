// Package location converts between (mission, objective) pairs and global
// location identifiers.
//
// Location ids are laid out as offset + mission*100 + objective, where the
// offset depends on which content expansion the mission belongs to. The
// mapping is a bijection over valid pairs: decoding always recovers the
// exact pair that was encoded.
package location

import (
	"errors"
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// ObjectiveModulo is the number of location ids reserved per mission.
// Objective indexes must stay strictly below it or they would collide with
// the next mission's base.
const ObjectiveModulo = 100

// ErrInvalidObjective indicates an objective index outside [0, 99].
var ErrInvalidObjective = errors.New("objective index out of encodable range")

// Default id layout: base-expansion locations start at 1000 and the later
// expansion block starts at 4000, leaving room for missions 1..29 at one
// hundred ids each.
const (
	defaultBaseOffset      = 1000
	defaultExpansionStart  = 4000
	defaultLastBaseMission = 29
)

// Codec encodes and decodes location identifiers for one world layout.
type Codec struct {
	baseOffset      int64
	expansionStart  int64
	lastBaseMission domain.MissionID
}

// NewCodec builds a codec from an id layout. baseOffset is where the base
// expansion's id block starts, expansionStart is the first id of the later
// expansion's block, and lastBaseMission is the highest mission id that
// belongs to the base expansion.
func NewCodec(baseOffset, expansionStart int64, lastBaseMission domain.MissionID) (Codec, error) {
	if lastBaseMission < 0 {
		return Codec{}, fmt.Errorf("last base mission must not be negative, got %d", lastBaseMission)
	}
	baseEnd := baseOffset + (int64(lastBaseMission)+1)*ObjectiveModulo
	if expansionStart < baseEnd {
		return Codec{}, fmt.Errorf(
			"expansion block at %d overlaps base block ending at %d", expansionStart, baseEnd)
	}
	return Codec{
		baseOffset:      baseOffset,
		expansionStart:  expansionStart,
		lastBaseMission: lastBaseMission,
	}, nil
}

// DefaultCodec returns the codec for the standard world id layout.
func DefaultCodec() Codec {
	codec, err := NewCodec(defaultBaseOffset, defaultExpansionStart, defaultLastBaseMission)
	if err != nil {
		// The default constants are internally consistent.
		panic(err)
	}
	return codec
}

// offset returns the additive offset for a mission's id block. Later
// expansion missions continue numbering from the expansion start as if the
// base block had ended exactly at the last base mission.
func (c Codec) offset(mission domain.MissionID) int64 {
	if mission <= c.lastBaseMission {
		return c.baseOffset
	}
	return c.expansionStart - int64(c.lastBaseMission)*ObjectiveModulo
}

// Encode returns the global location id for a (mission, objective) pair.
// It fails with ErrInvalidObjective when the objective index is outside
// [0, 99].
func (c Codec) Encode(mission domain.MissionID, objective domain.ObjectiveIndex) (domain.LocationID, error) {
	if objective < 0 || objective >= ObjectiveModulo {
		return 0, fmt.Errorf("objective %d for mission %d: %w", objective, mission, ErrInvalidObjective)
	}
	id := c.offset(mission) + int64(mission)*ObjectiveModulo + int64(objective)
	return domain.LocationID(id), nil
}

// Decode recovers the (mission, objective) pair a location id was encoded
// from. It is total over the encoder's output range.
func (c Codec) Decode(id domain.LocationID) (domain.MissionID, domain.ObjectiveIndex) {
	offset := c.baseOffset
	if int64(id) >= c.expansionStart {
		offset = c.expansionStart - int64(c.lastBaseMission)*ObjectiveModulo
	}
	rel := int64(id) - offset
	mission := rel / ObjectiveModulo
	objective := rel % ObjectiveModulo
	return domain.MissionID(mission), domain.ObjectiveIndex(objective)
}

// VictoryLocation returns the id of a mission's victory objective.
func (c Codec) VictoryLocation(mission domain.MissionID) domain.LocationID {
	id, err := c.Encode(mission, domain.VictoryObjective)
	if err != nil {
		// Objective 0 is always encodable.
		panic(err)
	}
	return id
}

// IsVictory reports whether a location id addresses a victory objective.
func (c Codec) IsVictory(id domain.LocationID) bool {
	_, objective := c.Decode(id)
	return objective == domain.VictoryObjective
}

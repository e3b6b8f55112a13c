package tech

import "github.com/louisbranch/shattered.front/internal/progression/domain"

// BlendedLevel computes the commander level: levels held as items plus
// levels earned per completed mission, the mission share capped by
// LevelsPerMissionCap and the total by TotalLevelCap. A cap of -1 disables
// that cap.
func BlendedLevel(state State, missionsBeaten int, opts Options) int {
	itemValue := state.Value(domain.FactionSwarm, SlotSwarmLevels)
	missionValue := missionsBeaten * opts.LevelsPerMission
	if opts.LevelsPerMissionCap != -1 {
		missionValue = min(missionValue, opts.LevelsPerMissionCap)
	}
	total := itemValue + missionValue
	if opts.TotalLevelCap != -1 {
		total = min(total, opts.TotalLevelCap)
	}
	return total
}

package rotation

import (
	"github.com/samber/lo"

	"github.com/devmatch-io/devmatch/dao/model"
)

// Rebalance trims the raw per-skill selections down to the quota.
//
// Selection order is preserved throughout: first selected, first kept, no
// re-sorting. A developer surfacing under several required skills counts
// once, keeping the union of matched skill IDs. When a tier is short, the
// shortfall is filled from the next tier down, first with that tier's
// surplus (promotion), then with whatever selected developers are still
// unplaced (the fallback cascade). No developer outside the raw selection
// is ever invented.
//
// Output order is fresher, mid, expert, each tier in selection order, so
// the persisted snapshot is deterministic.
func Rebalance(raw []Descriptor, quota model.QuotaSpec) []Descriptor {
	deduped := dedupe(raw)

	tiers := make(map[model.Level][]Descriptor, 3)
	for _, d := range deduped {
		tiers[d.Level] = append(tiers[d.Level], d)
	}

	kept := make(map[model.Level][]Descriptor, 3)
	leftover := make(map[model.Level][]Descriptor, 3)
	for _, level := range model.AllLevels() {
		target := quota.ForLevel(level)
		pool := tiers[level]
		if len(pool) > target {
			kept[level] = pool[:target]
			leftover[level] = pool[target:]
		} else {
			kept[level] = pool
		}
	}

	// Fill expert shortfall from mid surplus, then fresher surplus.
	expertShort := quota.Expert - len(kept[model.LevelExpert])
	for _, donor := range []model.Level{model.LevelMid, model.LevelFresher} {
		if expertShort <= 0 {
			break
		}
		n := min(expertShort, len(leftover[donor]))
		kept[model.LevelExpert] = append(kept[model.LevelExpert], leftover[donor][:n]...)
		leftover[donor] = leftover[donor][n:]
		expertShort -= n
	}

	// Single-step cascade for mid from fresher surplus.
	midShort := quota.Mid - len(kept[model.LevelMid])
	if midShort > 0 {
		n := min(midShort, len(leftover[model.LevelFresher]))
		kept[model.LevelMid] = append(kept[model.LevelMid], leftover[model.LevelFresher][:n]...)
		leftover[model.LevelFresher] = leftover[model.LevelFresher][n:]
	}

	out := make([]Descriptor, 0, quota.Total())
	for _, level := range model.AllLevels() {
		out = append(out, kept[level]...)
	}
	return out
}

// dedupe keeps the first occurrence of each developer and merges the
// matched skill IDs of later occurrences into it.
func dedupe(raw []Descriptor) []Descriptor {
	seen := make(map[uint]int, len(raw))
	out := make([]Descriptor, 0, len(raw))
	for _, d := range raw {
		if idx, ok := seen[d.DeveloperID]; ok {
			merged := out[idx]
			merged.SkillIDs = lo.Union(merged.SkillIDs, d.SkillIDs)
			out[idx] = merged
			continue
		}
		copied := d
		copied.SkillIDs = append([]uint(nil), d.SkillIDs...)
		seen[d.DeveloperID] = len(out)
		out = append(out, copied)
	}
	return out
}

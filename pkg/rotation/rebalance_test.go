package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devmatch-io/devmatch/dao/model"
)

func desc(id uint, level model.Level, skills ...uint) Descriptor {
	return Descriptor{DeveloperID: id, Level: level, SkillIDs: skills}
}

func ids(out []Descriptor) []uint {
	result := make([]uint, 0, len(out))
	for _, d := range out {
		result = append(result, d.DeveloperID)
	}
	return result
}

func TestRebalanceKeepsSelectionOrderWithinQuota(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelFresher, 10),
		desc(2, model.LevelFresher, 10),
		desc(3, model.LevelMid, 10),
		desc(4, model.LevelExpert, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 2, Mid: 1, Expert: 1})
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(out))
}

func TestRebalanceTruncatesTierSurplus(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelFresher, 10),
		desc(2, model.LevelFresher, 10),
		desc(3, model.LevelFresher, 10),
		desc(4, model.LevelMid, 10),
		desc(5, model.LevelExpert, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 1, Mid: 1, Expert: 1})
	assert.Equal(t, []uint{1, 4, 5}, ids(out))
}

func TestRebalanceDeduplicatesAcrossSkills(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelMid, 10),
		desc(1, model.LevelMid, 20),
		desc(2, model.LevelMid, 20),
	}
	out := Rebalance(raw, model.QuotaSpec{Mid: 3})
	assert.Equal(t, []uint{1, 2}, ids(out))
	assert.ElementsMatch(t, []uint{10, 20}, out[0].SkillIDs)
}

func TestRebalancePromotesMidSurplusIntoExpertShortfall(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelMid, 10),
		desc(2, model.LevelMid, 10),
		desc(3, model.LevelMid, 10),
		desc(4, model.LevelExpert, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Mid: 2, Expert: 2})
	// Expert seat 2 is filled by the first mid leftover.
	assert.Equal(t, []uint{1, 2, 4, 3}, ids(out))
}

func TestRebalanceCascadesFresherLeftoverIntoExpertShortfall(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelFresher, 10),
		desc(2, model.LevelFresher, 10),
		desc(3, model.LevelFresher, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 1, Mid: 1, Expert: 1})
	// No mid or expert pool at all: fresher leftovers fill both shortfalls.
	assert.Len(t, out, 3)
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids(out))
	assert.Equal(t, uint(1), out[0].DeveloperID)
}

func TestRebalanceMidShortfallFilledFromFresherSurplus(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelFresher, 10),
		desc(2, model.LevelFresher, 10),
		desc(3, model.LevelFresher, 10),
		desc(4, model.LevelExpert, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 1, Mid: 2, Expert: 1})
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(out))
}

func TestRebalanceTwoExpertSeatsOneExpertAvailable(t *testing.T) {
	raw := []Descriptor{
		desc(1, model.LevelFresher, 10),
		desc(2, model.LevelFresher, 10),
		desc(3, model.LevelMid, 10),
		desc(4, model.LevelMid, 10),
		desc(5, model.LevelMid, 10),
		desc(6, model.LevelExpert, 10),
	}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 1, Mid: 2, Expert: 2})
	// Fresher 1, mid 3+4, expert 6 plus the promoted mid leftover 5.
	assert.Equal(t, []uint{1, 3, 4, 6, 5}, ids(out))
}

func TestRebalanceNeverInventsDevelopers(t *testing.T) {
	raw := []Descriptor{desc(1, model.LevelExpert, 10)}
	out := Rebalance(raw, model.QuotaSpec{Fresher: 5, Mid: 5, Expert: 5})
	assert.Equal(t, []uint{1}, ids(out))
}

func TestRebalanceEmptyInput(t *testing.T) {
	out := Rebalance(nil, model.QuotaSpec{Fresher: 5, Mid: 5, Expert: 3})
	assert.Empty(t, out)
}

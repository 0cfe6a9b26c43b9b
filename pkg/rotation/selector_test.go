package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
)

func newTestSelector(t *testing.T, db *gorm.DB) *Selector {
	t.Helper()
	return NewSelector(db, NewCursorStore(db), testParams())
}

func selected(t *testing.T, s *Selector, in SelectInput) []uint {
	t.Helper()
	descriptors, err := s.Select(context.Background(), in)
	require.NoError(t, err)
	out := make([]uint, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d.DeveloperID)
	}
	return out
}

func TestSelectFiltersEligibility(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	ok := seedDeveloper(t, db, "ok", model.LevelMid, []uint{1})
	busy := seedDeveloper(t, db, "busy", model.LevelMid, []uint{1},
		withAvailability(model.AvailabilityBusy))
	seedDeveloper(t, db, "away", model.LevelMid, []uint{1},
		withAvailability(model.AvailabilityAway))
	seedDeveloper(t, db, "inactive", model.LevelMid, []uint{1},
		withAvailability(model.AvailabilityInactive))
	seedDeveloper(t, db, "unapproved", model.LevelMid, []uint{1},
		withApproval(model.ApprovalPending))
	seedDeveloper(t, db, "wrong-level", model.LevelExpert, []uint{1})
	seedDeveloper(t, db, "wrong-skill", model.LevelMid, []uint{2})

	got := selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.ElementsMatch(t, []uint{ok.ID, busy.ID}, got)
}

func TestSelectPrefersVerifiedContactsButFallsBack(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	verified := seedDeveloper(t, db, "verified", model.LevelMid, []uint{1})
	unv := seedDeveloper(t, db, "unverified", model.LevelMid, []uint{1}, unverified())

	got := selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{verified.ID}, got, "unverified developers stay out while a verified pool exists")

	require.NoError(t, db.Delete(&model.Developer{}, verified.ID).Error)
	got = selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{unv.ID}, got, "an otherwise empty pool falls back to unverified contacts")
}

func TestSelectFallsBackWhenVerifiedPoolIsEngaged(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	verified := seedDeveloper(t, db, "verified", model.LevelMid, []uint{1})
	unv := seedDeveloper(t, db, "unverified", model.LevelMid, []uint{1}, unverified())

	// The only verified developer already holds a pending invite on this
	// project, so the verified pool is empty after the engagement filter.
	batch := model.Batch{ProjectID: project.ID, Sequence: 1, Status: model.BatchActive}
	require.NoError(t, db.Create(&batch).Error)
	deadline := time.Now().Add(time.Hour)
	require.NoError(t, db.Create(&model.Candidate{
		BatchID:        batch.ID,
		ProjectID:      project.ID,
		DeveloperID:    verified.ID,
		Level:          verified.Level,
		AssignedAt:     time.Now(),
		Deadline:       &deadline,
		ResponseStatus: model.ResponsePending,
		Source:         model.SourceAutoRotation,
	}).Error)

	got := selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{unv.ID}, got, "a free unverified developer must be offered when all verified contacts are engaged")
}

func TestSelectDropsDevelopersEngagedOnProject(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(time.Hour))
	engaged := scenario.developers[0]
	free := seedDeveloper(t, db, "free", model.LevelMid, []uint{1})

	got := selected(t, s, SelectInput{ProjectID: scenario.project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{free.ID}, got)

	// The engagement is per project: another project still sees both.
	other := seedProject(t, db, "other-client", []uint{1})
	got = selected(t, s, SelectInput{ProjectID: other.ID, SkillID: 1, Level: model.LevelMid})
	assert.ElementsMatch(t, []uint{engaged.ID, free.ID}, got)
}

func TestSelectEnforcesPendingInviteCap(t *testing.T) {
	db := openTestDB(t)
	params := testParams()
	params.MaxPendingInvites = 2
	s := NewSelector(db, NewCursorStore(db), params)

	project := seedProject(t, db, "client", []uint{1})
	capped := seedDeveloper(t, db, "capped", model.LevelMid, []uint{1})
	free := seedDeveloper(t, db, "free", model.LevelMid, []uint{1})

	// Two pending auto-rotation invites on unrelated projects.
	deadline := time.Now().Add(time.Hour)
	for i := 0; i < 2; i++ {
		other := seedProject(t, db, "other-client-"+string(rune('a'+i)), []uint{1})
		batch := model.Batch{ProjectID: other.ID, Sequence: 1, Status: model.BatchActive}
		require.NoError(t, db.Create(&batch).Error)
		require.NoError(t, db.Create(&model.Candidate{
			BatchID:        batch.ID,
			ProjectID:      other.ID,
			DeveloperID:    capped.ID,
			Level:          capped.Level,
			AssignedAt:     time.Now(),
			Deadline:       &deadline,
			ResponseStatus: model.ResponsePending,
			Source:         model.SourceAutoRotation,
		}).Error)
	}

	got := selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{free.ID}, got)
}

func TestSelectOrdersByRotationCursor(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	first := seedDeveloper(t, db, "first", model.LevelMid, []uint{1})
	second := seedDeveloper(t, db, "second", model.LevelMid, []uint{1})

	got := selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{first.ID, second.ID}, got, "no cursor yet orders by ID")

	cursors := NewCursorStore(db)
	require.NoError(t, cursors.Commit(context.Background(), map[CursorKey][]uint{
		{SkillID: 1, Level: model.LevelMid}: {first.ID},
	}))

	got = selected(t, s, SelectInput{ProjectID: project.ID, SkillID: 1, Level: model.LevelMid})
	assert.Equal(t, []uint{second.ID, first.ID}, got, "recently selected developers move to the back")
}

func TestSelectHonorsExcludeIDsAndLimit(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	a := seedDeveloper(t, db, "a", model.LevelMid, []uint{1})
	b := seedDeveloper(t, db, "b", model.LevelMid, []uint{1})
	c := seedDeveloper(t, db, "c", model.LevelMid, []uint{1})

	got := selected(t, s, SelectInput{
		ProjectID:  project.ID,
		SkillID:    1,
		Level:      model.LevelMid,
		ExcludeIDs: []uint{a.ID},
		Limit:      1,
	})
	assert.Equal(t, []uint{b.ID}, got)
	_ = c
}

func TestSelectEmptyPoolIsNotAnError(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{99})

	descriptors, err := s.Select(context.Background(), SelectInput{
		ProjectID: project.ID, SkillID: 99, Level: model.LevelExpert,
	})
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestSelectEstimatesFromResponseHistory(t *testing.T) {
	db := openTestDB(t)
	s := newTestSelector(t, db)
	project := seedProject(t, db, "client", []uint{1})

	seasoned := seedDeveloper(t, db, "seasoned", model.LevelMid, []uint{1})
	fresh := seedDeveloper(t, db, "fresh", model.LevelMid, []uint{1})

	// Two past responses, two hours each.
	for i := 0; i < 2; i++ {
		other := seedProject(t, db, "past-client-"+string(rune('a'+i)), []uint{1})
		batch := model.Batch{ProjectID: other.ID, Sequence: 1, Status: model.BatchCompleted}
		require.NoError(t, db.Create(&batch).Error)
		assigned := time.Now().Add(-24 * time.Hour)
		responded := assigned.Add(2 * time.Hour)
		require.NoError(t, db.Create(&model.Candidate{
			BatchID:        batch.ID,
			ProjectID:      other.ID,
			DeveloperID:    seasoned.ID,
			Level:          seasoned.Level,
			AssignedAt:     assigned,
			RespondedAt:    &responded,
			ResponseStatus: model.ResponseRejected,
			Source:         model.SourceAutoRotation,
		}).Error)
	}

	descriptors, err := s.Select(context.Background(), SelectInput{
		ProjectID: project.ID, SkillID: 1, Level: model.LevelMid,
	})
	require.NoError(t, err)
	require.Len(t, descriptors, 2)

	byID := map[uint]Descriptor{}
	for _, d := range descriptors {
		byID[d.DeveloperID] = d
	}
	assert.Equal(t, 2*time.Hour, byID[seasoned.ID].Estimate)
	assert.Equal(t, testParams().DefaultEstimate, byID[fresh.ID].Estimate)
}

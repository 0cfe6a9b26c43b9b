package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/notify"
)

func TestSweepExpiresOverduePendingInvites(t *testing.T) {
	db := openTestDB(t)
	s := NewSweeper(db, nil)
	scenario := seedClaimScenario(t, db, 2, time.Now().Add(-time.Minute))

	expired, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, expired)

	var candidates []model.Candidate
	require.NoError(t, db.Where("batch_id = ?", scenario.batch.ID).Find(&candidates).Error)
	for _, cand := range candidates {
		assert.Equal(t, model.ResponseExpired, cand.ResponseStatus)
		require.NotNil(t, cand.RespondedAt)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	s := NewSweeper(db, nil)
	seedClaimScenario(t, db, 1, time.Now().Add(-time.Minute))

	expired, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	expired, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, expired)
}

func TestSweepLeavesNonOverdueAlone(t *testing.T) {
	db := openTestDB(t)
	s := NewSweeper(db, nil)
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(time.Hour))

	// A manual invite carries no deadline and is never swept.
	manualDev := seedDeveloper(t, db, "manual", model.LevelMid, []uint{1})
	manual := model.Candidate{
		BatchID:        scenario.batch.ID,
		ProjectID:      scenario.project.ID,
		DeveloperID:    manualDev.ID,
		Level:          manualDev.Level,
		SkillIDs:       datatypes.NewJSONSlice([]uint{1}),
		AssignedAt:     time.Now().Add(-48 * time.Hour),
		ResponseStatus: model.ResponsePending,
		Source:         model.SourceManualInvite,
	}
	require.NoError(t, db.Create(&manual).Error)

	expired, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, expired)

	var pending int64
	require.NoError(t, db.Model(&model.Candidate{}).
		Where("response_status = ?", model.ResponsePending).
		Count(&pending).Error)
	assert.EqualValues(t, 2, pending)
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Dispatch(_ context.Context, ev notify.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestSweepEmitsEventsOnlyForFlippedRows(t *testing.T) {
	db := openTestDB(t)
	rec := &recordingNotifier{}
	s := NewSweeper(db, rec)
	scenario := seedClaimScenario(t, db, 2, time.Now().Add(-time.Minute))

	// One invite was accepted before the sweep; the guarded update leaves
	// it alone and it must not receive an expired status event.
	require.NoError(t, db.Model(&model.Candidate{}).
		Where("id = ?", scenario.candidates[0].ID).
		Update("response_status", model.ResponseAccepted).Error)

	expired, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, notify.EventCandidateStatusChanged, ev.Type)
	assert.Equal(t, scenario.candidates[1].ID, ev.CandidateID)
	assert.Equal(t, scenario.developers[1].ID, ev.DeveloperID)
	assert.Equal(t, string(model.ResponseExpired), ev.Status)
}

func TestSweepSkipsRespondedCandidates(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	s := NewSweeper(db, nil)
	scenario := seedClaimScenario(t, db, 2, time.Now().Add(time.Hour))

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	require.NoError(t, err)

	// Push both deadlines into the past; only the still-pending row flips.
	require.NoError(t, db.Model(&model.Candidate{}).
		Where("batch_id = ?", scenario.batch.ID).
		Update("deadline", time.Now().Add(-time.Minute)).Error)

	expired, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	var winner model.Candidate
	require.NoError(t, db.First(&winner, scenario.candidates[0].ID).Error)
	assert.Equal(t, model.ResponseAccepted, winner.ResponseStatus)
}

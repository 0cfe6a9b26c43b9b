package rotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch-io/devmatch/dao/model"
)

func TestAcceptFirstResponderWins(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 3, time.Now().Add(time.Hour))

	winner := scenario.candidates[1]
	result, err := a.Accept(context.Background(), winner.ID, scenario.developers[1].UserID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, result.CandidateID)
	assert.Equal(t, scenario.developers[1].ID, result.DeveloperID)

	var cand model.Candidate
	require.NoError(t, db.First(&cand, winner.ID).Error)
	assert.Equal(t, model.ResponseAccepted, cand.ResponseStatus)
	assert.True(t, cand.FirstAccepted)
	require.NotNil(t, cand.RespondedAt)

	var project model.Project
	require.NoError(t, db.First(&project, scenario.project.ID).Error)
	assert.Equal(t, model.ProjectAccepted, project.Status)
	assert.True(t, project.ContactRevealed)
	require.NotNil(t, project.RevealedToID)
	assert.Equal(t, scenario.developers[1].ID, *project.RevealedToID)

	var batch model.Batch
	require.NoError(t, db.First(&batch, scenario.batch.ID).Error)
	assert.Equal(t, model.BatchCompleted, batch.Status)

	var disclosures []model.ContactDisclosure
	require.NoError(t, db.Where("project_id = ?", scenario.project.ID).Find(&disclosures).Error)
	require.Len(t, disclosures, 1)
	assert.Equal(t, scenario.project.OwnerID, disclosures[0].ClientID)
	assert.Equal(t, scenario.developers[1].ID, disclosures[0].DeveloperID)
}

func TestAcceptAfterWinnerIsRace(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 2, time.Now().Add(time.Hour))

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	require.NoError(t, err)

	_, err = a.Accept(context.Background(), scenario.candidates[1].ID, scenario.developers[1].UserID)
	require.Error(t, err)
	assert.True(t, IsRace(err), "losing responder must see a race error, got %v", err)

	// The loser's row is untouched; only the sweeper or a reject moves it.
	var cand model.Candidate
	require.NoError(t, db.First(&cand, scenario.candidates[1].ID).Error)
	assert.Equal(t, model.ResponsePending, cand.ResponseStatus)
	assert.False(t, cand.FirstAccepted)
}

func TestAcceptConcurrentlyExactlyOneWins(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 5, time.Now().Add(time.Hour))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		raceErrs int
	)
	for i := range scenario.candidates {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := a.Accept(context.Background(),
				scenario.candidates[idx].ID, scenario.developers[idx].UserID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case IsRace(err):
				raceErrs++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, len(scenario.candidates)-1, raceErrs)

	var accepted int64
	require.NoError(t, db.Model(&model.Candidate{}).
		Where("project_id = ? AND first_accepted = ?", scenario.project.ID, true).
		Count(&accepted).Error)
	assert.EqualValues(t, 1, accepted)
}

func TestAcceptOwnershipChecks(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(time.Hour))

	stranger := model.User{Name: "stranger", Role: model.RoleUser}
	require.NoError(t, db.Create(&stranger).Error)

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, stranger.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = a.Accept(context.Background(), 9999, scenario.developers[0].UserID)
	assert.True(t, errors.Is(err, ErrCandidateNotFound))
}

func TestAcceptSelfAcceptForbidden(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(time.Hour))

	// Point the candidate's developer identity at the project owner.
	require.NoError(t, db.Model(&model.Developer{}).
		Where("id = ?", scenario.developers[0].ID).
		Update("user_id", scenario.project.OwnerID).Error)

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, scenario.project.OwnerID)
	assert.True(t, errors.Is(err, ErrSelfAcceptForbidden))
}

func TestAcceptPastDeadline(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(-time.Minute))

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	assert.True(t, errors.Is(err, ErrDeadlinePassed))
}

func TestAcceptExpiredCandidate(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(-time.Minute))

	_, err := NewSweeper(db, nil).Sweep(context.Background())
	require.NoError(t, err)

	_, err = a.Accept(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	assert.True(t, errors.Is(err, ErrNotPending))
}

func TestAcceptStaleBatch(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(time.Hour))

	// A newer round replaced the batch this invite belongs to.
	require.NoError(t, db.Model(&model.Project{}).
		Where("id = ?", scenario.project.ID).
		Update("current_batch_id", scenario.batch.ID+100).Error)

	_, err := a.Accept(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	assert.True(t, errors.Is(err, ErrBatchNotActive))
}

func TestRejectWorksPastDeadline(t *testing.T) {
	db := openTestDB(t)
	a := NewAcceptance(db, nil, testParams())
	scenario := seedClaimScenario(t, db, 1, time.Now().Add(-time.Minute))

	err := a.Reject(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	require.NoError(t, err)

	var cand model.Candidate
	require.NoError(t, db.First(&cand, scenario.candidates[0].ID).Error)
	assert.Equal(t, model.ResponseRejected, cand.ResponseStatus)
	assert.False(t, cand.FirstAccepted)
	require.NotNil(t, cand.RespondedAt)

	// Rejection never touches the project.
	var project model.Project
	require.NoError(t, db.First(&project, scenario.project.ID).Error)
	assert.Equal(t, model.ProjectAssigning, project.Status)
	assert.False(t, project.ContactRevealed)

	err = a.Reject(context.Background(), scenario.candidates[0].ID, scenario.developers[0].UserID)
	assert.True(t, errors.Is(err, ErrNotPending))
}

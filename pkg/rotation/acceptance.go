package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/notify"
)

// Acceptance is the candidate lifecycle state machine. The first-accept
// claim is resolved purely by conditional-update affected-row counts: no
// lock is taken, and both guarded updates run in one transaction so a lost
// race on the candidate row rolls the project claim back.
type Acceptance struct {
	db       *gorm.DB
	notifier notify.Notifier
	params   Params
}

func NewAcceptance(db *gorm.DB, notifier notify.Notifier, params Params) *Acceptance {
	return &Acceptance{db: db, notifier: notifier, params: params}
}

type AcceptResult struct {
	CandidateID uint
	ProjectID   uint
	BatchID     uint
	DeveloperID uint
}

// Accept claims the project for the candidate's developer. For a given
// project, across arbitrarily many concurrent calls, exactly one succeeds;
// the rest observe AlreadyClaimed or RaceLost.
func (a *Acceptance) Accept(ctx context.Context, candidateID, actingUserID uint) (*AcceptResult, error) {
	var result *AcceptResult
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cand, project, err := a.loadForResponse(tx, candidateID, actingUserID)
		if err != nil {
			return err
		}
		if project.OwnerID == actingUserID {
			return Wrap(ErrSelfAcceptForbidden, nil)
		}
		if cand.ResponseStatus != model.ResponsePending || cand.FirstAccepted {
			return Wrap(ErrNotPending, nil)
		}
		if cand.Batch.Status != model.BatchActive {
			return Wrap(ErrBatchNotActive, nil)
		}
		if project.CurrentBatchID == nil || *project.CurrentBatchID != cand.BatchID {
			return Wrap(ErrBatchNotActive, fmt.Errorf("batch %d is not current", cand.BatchID))
		}
		now := time.Now()
		if cand.Deadline != nil && now.After(*cand.Deadline) {
			return Wrap(ErrDeadlinePassed, nil)
		}

		// Claim the project. The WHERE guard on (current_batch_id,
		// contact_revealed) is the sole race-resolution mechanism.
		res := tx.Model(&model.Project{}).
			Where("id = ? AND current_batch_id = ? AND contact_revealed = ?",
				project.ID, cand.BatchID, false).
			Updates(map[string]any{
				"status":           model.ProjectAccepted,
				"contact_revealed": true,
				"revealed_to_id":   cand.DeveloperID,
			})
		if res.Error != nil {
			return classifyDBError(res.Error)
		}
		if res.RowsAffected != 1 {
			return Wrap(ErrAlreadyClaimed, nil)
		}

		// Claim the candidate row. A failed guard here rolls the project
		// claim back; the concurrent winner stays authoritative.
		q := tx.Model(&model.Candidate{}).
			Where("id = ? AND response_status = ? AND first_accepted = ?",
				cand.ID, model.ResponsePending, false)
		if cand.Deadline != nil {
			q = q.Where("deadline > ?", now)
		}
		res = q.Updates(map[string]any{
			"response_status": model.ResponseAccepted,
			"first_accepted":  true,
			"responded_at":    now,
		})
		if res.Error != nil {
			return classifyDBError(res.Error)
		}
		if res.RowsAffected != 1 {
			return Wrap(ErrRaceLost, nil)
		}

		if err = tx.Model(&model.Batch{}).Where("id = ?", cand.BatchID).
			Update("status", model.BatchCompleted).Error; err != nil {
			return classifyDBError(err)
		}

		disclosure := model.ContactDisclosure{
			ProjectID:   project.ID,
			ClientID:    project.OwnerID,
			DeveloperID: cand.DeveloperID,
		}
		if err = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&disclosure).Error; err != nil {
			return classifyDBError(err)
		}

		result = &AcceptResult{
			CandidateID: cand.ID,
			ProjectID:   project.ID,
			BatchID:     cand.BatchID,
			DeveloperID: cand.DeveloperID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emit(notify.EventProjectClaimed, result.ProjectID, result.BatchID, result.CandidateID, result.DeveloperID, "")
	a.emit(notify.EventCandidateStatusChanged, result.ProjectID, result.BatchID, result.CandidateID,
		result.DeveloperID, string(model.ResponseAccepted))
	return result, nil
}

// Reject moves a pending candidate to rejected. It works past the deadline
// on purpose: a rejection should never be blocked by time.
func (a *Acceptance) Reject(ctx context.Context, candidateID, actingUserID uint) error {
	var (
		projectID   uint
		batchID     uint
		developerID uint
	)
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cand, _, err := a.loadForResponse(tx, candidateID, actingUserID)
		if err != nil {
			return err
		}
		if cand.ResponseStatus != model.ResponsePending {
			return Wrap(ErrNotPending, nil)
		}
		if cand.Batch.Status != model.BatchActive {
			return Wrap(ErrBatchNotActive, nil)
		}

		res := tx.Model(&model.Candidate{}).
			Where("id = ? AND response_status = ?", cand.ID, model.ResponsePending).
			Updates(map[string]any{
				"response_status": model.ResponseRejected,
				"responded_at":    time.Now(),
			})
		if res.Error != nil {
			return classifyDBError(res.Error)
		}
		if res.RowsAffected != 1 {
			return Wrap(ErrNotPending, nil)
		}

		projectID = cand.ProjectID
		batchID = cand.BatchID
		developerID = cand.DeveloperID
		return nil
	})
	if err != nil {
		return err
	}

	a.emit(notify.EventCandidateStatusChanged, projectID, batchID, candidateID,
		developerID, string(model.ResponseRejected))
	return nil
}

// loadForResponse loads the candidate with its batch and project and checks
// that the acting user owns the candidate's developer identity.
func (a *Acceptance) loadForResponse(tx *gorm.DB, candidateID, actingUserID uint) (*model.Candidate, *model.Project, error) {
	var cand model.Candidate
	if err := tx.Preload("Batch").Preload("Developer").First(&cand, candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, Wrap(ErrCandidateNotFound, err)
		}
		return nil, nil, fmt.Errorf("load candidate %d: %w", candidateID, err)
	}
	if cand.Developer.UserID != actingUserID {
		return nil, nil, Wrap(ErrForbidden, nil)
	}

	var project model.Project
	if err := tx.First(&project, cand.ProjectID).Error; err != nil {
		return nil, nil, fmt.Errorf("load project %d: %w", cand.ProjectID, err)
	}
	return &cand, &project, nil
}

func (a *Acceptance) emit(t notify.EventType, projectID, batchID, candidateID, developerID uint, status string) {
	if a.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ev := notify.NewEvent(t, projectID)
	ev.BatchID = batchID
	ev.CandidateID = candidateID
	ev.DeveloperID = developerID
	ev.Status = status
	if err := a.notifier.Dispatch(ctx, ev); err != nil {
		klog.Errorf("rotation: %s event dispatch failed: %v", t, err)
	}
}

package rotation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/notify"
)

// Sweeper expires timed-out pending invites. Safe to run concurrently with
// accept and reject: the bulk update only touches rows still pending at
// update time, so a candidate accepted a moment earlier is left alone.
type Sweeper struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewSweeper(db *gorm.DB, notifier notify.Notifier) *Sweeper {
	return &Sweeper{db: db, notifier: notifier}
}

// Sweep flips every overdue pending auto-rotation candidate to expired and
// returns the number of rows flipped. Idempotent.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := time.Now()

	var overdueIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("response_status = ?", model.ResponsePending).
		Where("source = ?", model.SourceAutoRotation).
		Where("deadline IS NOT NULL AND deadline < ?", now).
		Pluck("id", &overdueIDs).Error; err != nil {
		return 0, fmt.Errorf("query overdue candidates: %w", err)
	}
	if len(overdueIDs) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("id IN ?", overdueIDs).
		Where("response_status = ?", model.ResponsePending).
		Updates(map[string]any{
			"response_status": model.ResponseExpired,
			"responded_at":    now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("expire overdue candidates: %w", res.Error)
	}

	if s.notifier != nil && res.RowsAffected > 0 {
		// Emit from the post-update state: a candidate accepted between
		// the snapshot and the update kept its status and gets no event.
		var expired []model.Candidate
		if err := s.db.WithContext(ctx).
			Where("id IN ?", overdueIDs).
			Where("response_status = ?", model.ResponseExpired).
			Find(&expired).Error; err != nil {
			klog.Errorf("rotation: reload expired candidates for events failed: %v", err)
			return res.RowsAffected, nil
		}
		evCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, cand := range expired {
			ev := notify.NewEvent(notify.EventCandidateStatusChanged, cand.ProjectID)
			ev.BatchID = cand.BatchID
			ev.CandidateID = cand.ID
			ev.DeveloperID = cand.DeveloperID
			ev.Status = string(model.ResponseExpired)
			if err := s.notifier.Dispatch(evCtx, ev); err != nil {
				klog.Errorf("rotation: expiry event dispatch failed: %v", err)
			}
		}
	}
	return res.RowsAffected, nil
}

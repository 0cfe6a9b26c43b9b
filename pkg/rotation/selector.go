package rotation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
)

// Selector picks the fairness-ordered eligible pool for one (skill, level)
// pair. An empty result is a normal outcome ("skill currently
// unfulfillable"), never an error.
type Selector struct {
	db      *gorm.DB
	cursors *CursorStore
	params  Params
}

func NewSelector(db *gorm.DB, cursors *CursorStore, params Params) *Selector {
	return &Selector{db: db, cursors: cursors, params: params}
}

// withDB rebinds the selector to a transaction so generation reads stay
// inside the generating transaction.
func (s *Selector) withDB(db *gorm.DB) *Selector {
	return &Selector{db: db, cursors: s.cursors.withDB(db), params: s.params}
}

type SelectInput struct {
	ProjectID  uint
	SkillID    uint
	Level      model.Level
	ExcludeIDs []uint
	Limit      int
}

// Select returns up to Limit candidate descriptors ordered so developers
// not picked in the previous round come first.
func (s *Selector) Select(ctx context.Context, in SelectInput) ([]Descriptor, error) {
	pool, err := s.availablePool(ctx, in, true)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		// Fallback without the verified-contact filter: a skill with any
		// available pool at all is never silently dropped, even when every
		// verified developer is engaged or at the invite cap.
		pool, err = s.availablePool(ctx, in, false)
		if err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	used, err := s.cursors.LastUsed(ctx, CursorKey{SkillID: in.SkillID, Level: in.Level})
	if err != nil {
		return nil, err
	}
	pool = orderByCursor(pool, used)

	if in.Limit > 0 && len(pool) > in.Limit {
		pool = pool[:in.Limit]
	}

	estimates, err := s.responseEstimates(ctx, lo.Map(pool, func(d model.Developer, _ int) uint { return d.ID }))
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(pool))
	for _, dev := range pool {
		estimate, ok := estimates[dev.ID]
		if !ok {
			estimate = s.params.DefaultEstimate
		}
		descriptors = append(descriptors, Descriptor{
			DeveloperID: dev.ID,
			Level:       dev.Level,
			SkillIDs:    []uint{in.SkillID},
			Estimate:    estimate,
		})
	}
	return descriptors, nil
}

// availablePool narrows the statically eligible pool to developers who can
// actually receive an invite right now. The engagement and invite-cap
// filters run before the caller decides on the verified-contact fallback.
func (s *Selector) availablePool(ctx context.Context, in SelectInput, verifiedOnly bool) ([]model.Developer, error) {
	pool, err := s.eligiblePool(ctx, in, verifiedOnly)
	if err != nil {
		return nil, err
	}
	pool, err = s.dropEngaged(ctx, in.ProjectID, pool)
	if err != nil {
		return nil, err
	}
	return s.dropOverInvited(ctx, pool)
}

// eligiblePool applies the static filters: approval, availability, skill,
// level, exclusion set. Ordered by developer ID so the cursor partition has
// a deterministic secondary key.
func (s *Selector) eligiblePool(ctx context.Context, in SelectInput, verifiedOnly bool) ([]model.Developer, error) {
	q := s.db.WithContext(ctx).Model(&model.Developer{}).
		Joins("JOIN developer_skills ON developer_skills.developer_id = developers.id").
		Where("developer_skills.skill_id = ?", in.SkillID).
		Where("developers.level = ?", in.Level).
		Where("developers.approval_status = ?", model.ApprovalApproved).
		Where("developers.availability IN ?", s.params.AllowedAvailability).
		Order("developers.id")
	if verifiedOnly {
		q = q.Where("developers.contact_verified = ?", true)
	}
	if len(in.ExcludeIDs) > 0 {
		q = q.Where("developers.id NOT IN ?", in.ExcludeIDs)
	}

	var pool []model.Developer
	if err := q.Find(&pool).Error; err != nil {
		return nil, fmt.Errorf("query eligible pool (skill %d, level %s): %w", in.SkillID, in.Level, err)
	}
	return pool, nil
}

// dropEngaged removes developers already pending or accepted on this
// project in any batch.
func (s *Selector) dropEngaged(ctx context.Context, projectID uint, pool []model.Developer) ([]model.Developer, error) {
	if len(pool) == 0 {
		return pool, nil
	}
	ids := lo.Map(pool, func(d model.Developer, _ int) uint { return d.ID })

	var engaged []uint
	res := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("project_id = ?", projectID).
		Where("developer_id IN ?", ids).
		Where("response_status IN ?", []model.ResponseStatus{model.ResponsePending, model.ResponseAccepted}).
		Distinct().
		Pluck("developer_id", &engaged)
	if res.Error != nil {
		return nil, fmt.Errorf("query engaged developers for project %d: %w", projectID, res.Error)
	}

	engagedSet := lo.SliceToMap(engaged, func(id uint) (uint, struct{}) { return id, struct{}{} })
	return lo.Filter(pool, func(d model.Developer, _ int) bool {
		_, ok := engagedSet[d.ID]
		return !ok
	}), nil
}

// dropOverInvited removes developers at or over the concurrent pending
// invite cap for auto-rotation invites.
func (s *Selector) dropOverInvited(ctx context.Context, pool []model.Developer) ([]model.Developer, error) {
	if len(pool) == 0 || s.params.MaxPendingInvites <= 0 {
		return pool, nil
	}
	ids := lo.Map(pool, func(d model.Developer, _ int) uint { return d.ID })

	type pendingCount struct {
		DeveloperID uint
		N           int64
	}
	var counts []pendingCount
	err := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Select("developer_id, COUNT(*) AS n").
		Where("developer_id IN ?", ids).
		Where("response_status = ?", model.ResponsePending).
		Where("source = ?", model.SourceAutoRotation).
		Group("developer_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("query pending invite counts: %w", err)
	}

	overCap := make(map[uint]struct{})
	for _, c := range counts {
		if c.N >= int64(s.params.MaxPendingInvites) {
			overCap[c.DeveloperID] = struct{}{}
		}
	}
	return lo.Filter(pool, func(d model.Developer, _ int) bool {
		_, ok := overCap[d.ID]
		return !ok
	}), nil
}

// orderByCursor ranks developers absent from the last-used set first. The
// partition is stable over the incoming ID order, so an unchanged pool
// yields an unchanged ordering across calls.
func orderByCursor(pool []model.Developer, used map[uint]struct{}) []model.Developer {
	fresh := make([]model.Developer, 0, len(pool))
	recent := make([]model.Developer, 0, len(pool))
	for _, dev := range pool {
		if _, ok := used[dev.ID]; ok {
			recent = append(recent, dev)
		} else {
			fresh = append(fresh, dev)
		}
	}
	return append(fresh, recent...)
}

// responseEstimates averages the response latency of each developer's most
// recent responded invites, bounded by the history window.
func (s *Selector) responseEstimates(ctx context.Context, ids []uint) (map[uint]time.Duration, error) {
	if len(ids) == 0 {
		return map[uint]time.Duration{}, nil
	}

	var history []model.Candidate
	err := s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("developer_id IN ?", ids).
		Where("response_status IN ?", []model.ResponseStatus{model.ResponseAccepted, model.ResponseRejected}).
		Where("responded_at IS NOT NULL").
		Order("developer_id, responded_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("query response history: %w", err)
	}

	window := s.params.ResponseHistoryWindow
	if window <= 0 {
		window = 1
	}

	byDeveloper := lo.GroupBy(history, func(c model.Candidate) uint { return c.DeveloperID })
	estimates := make(map[uint]time.Duration, len(byDeveloper))
	for id, responses := range byDeveloper {
		sort.Slice(responses, func(i, j int) bool {
			return responses[i].RespondedAt.After(*responses[j].RespondedAt)
		})
		if len(responses) > window {
			responses = responses[:window]
		}
		var total time.Duration
		for _, c := range responses {
			total += c.RespondedAt.Sub(c.AssignedAt)
		}
		estimates[id] = total / time.Duration(len(responses))
	}
	return estimates, nil
}

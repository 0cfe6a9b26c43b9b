// Package rotation implements the candidate rotation core: fairness-ordered
// selection over the eligibility pool, quota rebalancing across experience
// tiers, transactional batch generation, and the first-accept-wins claim.
//
// All cross-call coordination goes through the datastore's transactions and
// conditional updates; the package holds no in-process locks beyond the
// result cache's own mutex.
package rotation

import (
	"time"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/config"
)

// Descriptor is one selectable developer as seen by the rebalancer.
type Descriptor struct {
	DeveloperID uint
	Level       model.Level
	SkillIDs    []uint
	Estimate    time.Duration
}

// Params are the core's tunables, normally derived from the Rotation config
// section. Components take them by value so tests can construct variants
// without touching global config.
type Params struct {
	DefaultQuota model.QuotaSpec

	// Availability states in which a developer may receive invites.
	AllowedAvailability []model.Availability

	AcceptDeadline         time.Duration
	MaxPendingInvites      int
	ExcludeAfterBatches    int
	ExcludeTwoAfterBatches int
	ResponseHistoryWindow  int
	DefaultEstimate        time.Duration
	SelectorHeadroom       int
	TxTimeout              time.Duration
	RetryAttempts          int
	RetryBackoff           time.Duration
}

func DefaultParams() Params {
	return Params{
		DefaultQuota:           model.QuotaSpec{Fresher: 5, Mid: 5, Expert: 3},
		AllowedAvailability:    []model.Availability{model.AvailabilityAvailable, model.AvailabilityBusy},
		AcceptDeadline:         15 * time.Minute,
		MaxPendingInvites:      3,
		ExcludeAfterBatches:    3,
		ExcludeTwoAfterBatches: 5,
		ResponseHistoryWindow:  5,
		DefaultEstimate:        6 * time.Hour,
		SelectorHeadroom:       2,
		TxTimeout:              30 * time.Second,
		RetryAttempts:          3,
		RetryBackoff:           100 * time.Millisecond,
	}
}

// ParamsFromConfig maps the yaml tunables onto Params.
func ParamsFromConfig(r *config.Rotation) Params {
	p := DefaultParams()
	p.DefaultQuota = model.QuotaSpec{Fresher: r.QuotaFresher, Mid: r.QuotaMid, Expert: r.QuotaExpert}
	p.AcceptDeadline = time.Duration(r.AcceptDeadlineMinutes) * time.Minute
	p.MaxPendingInvites = r.MaxPendingInvites
	p.ExcludeAfterBatches = r.ExcludeAfterBatches
	p.ExcludeTwoAfterBatches = r.ExcludeTwoAfterBatches
	p.ResponseHistoryWindow = r.ResponseHistoryWindow
	p.DefaultEstimate = time.Duration(r.DefaultEstimateHours) * time.Hour
	p.SelectorHeadroom = r.SelectorHeadroom
	p.TxTimeout = time.Duration(r.TxTimeoutSeconds) * time.Second
	p.RetryAttempts = r.RetryAttempts
	p.RetryBackoff = time.Duration(r.RetryBackoffMillis) * time.Millisecond
	return p
}

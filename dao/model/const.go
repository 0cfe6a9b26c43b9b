// Constants mapped to database columns.
// Gin rejects zero values for fields tagged `required`, so numeric enums
// start at iota + 1 to keep the zero value out of the valid range.
package model

// User role in the platform.
type Role uint8

const (
	RoleGuest Role = iota + 1
	RoleUser
	RoleAdmin
)

// Developer experience tier.
type Level uint8

const (
	LevelFresher Level = iota + 1
	LevelMid
	LevelExpert
)

func (l Level) String() string {
	switch l {
	case LevelFresher:
		return "fresher"
	case LevelMid:
		return "mid"
	case LevelExpert:
		return "expert"
	default:
		return "unknown"
	}
}

// AllLevels returns the tiers in quota output order (fresher, mid, expert).
func AllLevels() []Level {
	return []Level{LevelFresher, LevelMid, LevelExpert}
}

// Project lifecycle status. Transitions are monotonic except cancellation.
type ProjectStatus string

const (
	ProjectSubmitted  ProjectStatus = "submitted"
	ProjectAssigning  ProjectStatus = "assigning"
	ProjectAccepted   ProjectStatus = "accepted"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCanceled   ProjectStatus = "canceled"
)

// Batch status. A project has at most one active batch at a time.
type BatchStatus string

const (
	BatchActive    BatchStatus = "active"
	BatchCompleted BatchStatus = "completed"
)

// Candidate response lifecycle. All states except pending are terminal.
type ResponseStatus string

const (
	ResponsePending     ResponseStatus = "pending"
	ResponseAccepted    ResponseStatus = "accepted"
	ResponseRejected    ResponseStatus = "rejected"
	ResponseExpired     ResponseStatus = "expired"
	ResponseInvalidated ResponseStatus = "invalidated"
)

// How the candidate entered the batch.
type CandidateSource string

const (
	SourceAutoRotation CandidateSource = "auto_rotation"
	SourceManualInvite CandidateSource = "manual_invite"
)

// Developer approval status, owned by the external onboarding flow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Developer availability, owned by the external profile flow.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityAway      Availability = "away"
	AvailabilityInactive  Availability = "inactive"
)

// QuotaSpec is the target candidate count per tier for one batch.
type QuotaSpec struct {
	Fresher int `json:"fresher"`
	Mid     int `json:"mid"`
	Expert  int `json:"expert"`
}

func (q QuotaSpec) Total() int {
	return q.Fresher + q.Mid + q.Expert
}

func (q QuotaSpec) ForLevel(l Level) int {
	switch l {
	case LevelFresher:
		return q.Fresher
	case LevelMid:
		return q.Mid
	case LevelExpert:
		return q.Expert
	default:
		return 0
	}
}

package rotation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Category decides how a caller reacts to an error: structural errors are
// surfaced as-is, race errors mean "someone else got there first", and only
// transient errors are retried.
type Category uint8

const (
	CategoryStructural Category = iota + 1
	CategoryRace
	CategoryTransient
)

type Error struct {
	Code     string
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches wrapped copies against their sentinel by code, so
// errors.Is(err, ErrAlreadyClaimed) works on values built with Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of the sentinel carrying a cause.
func Wrap(sentinel *Error, err error) error {
	return &Error{
		Code:     sentinel.Code,
		Category: sentinel.Category,
		Message:  sentinel.Message,
		Err:      err,
	}
}

var (
	ErrProjectNotFound = &Error{
		Code: "ProjectNotFound", Category: CategoryStructural,
		Message: "project not found",
	}
	ErrCandidateNotFound = &Error{
		Code: "CandidateNotFound", Category: CategoryStructural,
		Message: "candidate not found",
	}
	ErrInvalidProjectState = &Error{
		Code: "InvalidProjectState", Category: CategoryStructural,
		Message: "project is not in a state that allows batch generation",
	}
	ErrForbidden = &Error{
		Code: "Forbidden", Category: CategoryStructural,
		Message: "acting user does not own this candidate",
	}
	ErrSelfAcceptForbidden = &Error{
		Code: "SelfAcceptForbidden", Category: CategoryStructural,
		Message: "project owners cannot accept their own project",
	}

	ErrAlreadyClaimed = &Error{
		Code: "AlreadyClaimed", Category: CategoryRace,
		Message: "project was already claimed by another developer",
	}
	ErrRaceLost = &Error{
		Code: "RaceLost", Category: CategoryRace,
		Message: "another acceptance won the race",
	}
	ErrNotPending = &Error{
		Code: "NotPending", Category: CategoryRace,
		Message: "candidate is no longer pending",
	}
	ErrBatchNotActive = &Error{
		Code: "BatchNotActive", Category: CategoryRace,
		Message: "candidate batch is not the project's active batch",
	}
	ErrDeadlinePassed = &Error{
		Code: "DeadlinePassed", Category: CategoryRace,
		Message: "acceptance deadline has passed",
	}

	ErrTransientFailure = &Error{
		Code: "TransientFailure", Category: CategoryTransient,
		Message: "datastore conflict persisted across retries",
	}
)

// CategoryOf reports the category of err, or 0 for untyped errors.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return 0
}

func IsRace(err error) bool {
	return CategoryOf(err) == CategoryRace
}

func IsTransient(err error) bool {
	return CategoryOf(err) == CategoryTransient
}

// classifyDBError lifts datastore write conflicts into the transient
// category so the retry policy picks them up. Everything else passes
// through untouched.
func classifyDBError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Wrap(ErrTransientFailure, err)
	}
	return err
}

package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// User is not allowed to access the resource
	UserNotAllowed ErrorCode = 40301

	// Resource does not exist
	NotFound ErrorCode = 40401

	// Acceptance races: exactly one responder wins, losers get one of these
	AlreadyClaimed ErrorCode = 40901
	RaceLost       ErrorCode = 40902
	NotPending     ErrorCode = 40903
	BatchNotActive ErrorCode = 40904
	DeadlinePassed ErrorCode = 40905

	// Server-side failure
	ServiceError ErrorCode = 50001

	// Retries exhausted on a transient failure
	TransientFailure ErrorCode = 50301

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)

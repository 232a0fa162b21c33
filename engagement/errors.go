package engagement

import "errors"

// Error taxonomy surfaced by ledger operations. Controllers map these onto
// HTTP status codes; nothing here is retried.
var (
	// ErrNotFound indicates the target entity does not exist at mutation time.
	ErrNotFound = errors.New("entity not found")
	// ErrDenied indicates the actor lacks the required relationship or violates a policy window.
	ErrDenied = errors.New("authorization denied")
	// ErrInvalidState indicates the mutation would be a no-op or contradicts an invariant.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyMember is returned when joining a community the user already belongs to.
	ErrAlreadyMember = errors.New("already a member: invalid state")
	// ErrNotMember is returned when leaving a community the user does not belong to.
	ErrNotMember = errors.New("not a member: invalid state")
	// ErrCreatorImmutable is returned when attempting to remove a community's creator.
	ErrCreatorImmutable = errors.New("creator cannot be removed: authorization denied")
)

// IsInvalidState reports whether err belongs to the invalid-state class.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrAlreadyMember) || errors.Is(err, ErrNotMember)
}

// IsDenied reports whether err belongs to the authorization-denied class.
func IsDenied(err error) bool {
	return errors.Is(err, ErrDenied) || errors.Is(err, ErrCreatorImmutable)
}

package engagement

import "fmt"

// VoteState is a user's resulting vote on an entity.
type VoteState string

const (
	VoteNone VoteState = "none"
	VoteUp   VoteState = "up"
	VoteDown VoteState = "down"
)

// ParseVoteState validates a client-supplied vote direction. Only "up" and
// "down" are accepted as requests; "none" is a result, not an input.
func ParseVoteState(s string) (VoteState, error) {
	switch VoteState(s) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	}
	return VoteNone, fmt.Errorf("%w: unknown vote type %q", ErrInvalidState, s)
}

// VoteResult reports the counts and the caller's state after a toggle.
type VoteResult struct {
	UpCount   int       `json:"up_count"`
	DownCount int       `json:"down_count"`
	UserState VoteState `json:"user_state"`
}

// ToggleVote applies the mutually exclusive vote toggle to the up and down
// sets. The user is removed from both sets unconditionally; if the prior
// state differed from dir the user is added to the requested set, otherwise
// the call acts as a toggle-off. After the call the user appears in at most
// one of the two sets.
func ToggleVote(up, down *Set, userID uint, dir VoteState) (VoteResult, error) {
	if dir != VoteUp && dir != VoteDown {
		return VoteResult{}, fmt.Errorf("%w: unknown vote type %q", ErrInvalidState, dir)
	}

	hadUp := up.Remove(userID)
	hadDown := down.Remove(userID)

	state := VoteNone
	switch {
	case dir == VoteUp && !hadUp:
		up.Add(userID)
		state = VoteUp
	case dir == VoteDown && !hadDown:
		down.Add(userID)
		state = VoteDown
	}

	return VoteResult{
		UpCount:   up.Count(),
		DownCount: down.Count(),
		UserState: state,
	}, nil
}

// LikeResult reports the like count and the caller's membership after a flip.
type LikeResult struct {
	LikeCount int  `json:"like_count"`
	HasLiked  bool `json:"has_liked"`
}

// ToggleLike flips the user's membership in the like set. Unlike votes there
// is no opposing set, so this is a pure boolean flip.
func ToggleLike(likes *Set, userID uint) LikeResult {
	has := likes.Toggle(userID)
	return LikeResult{LikeCount: likes.Count(), HasLiked: has}
}

// MarkViewed records a deduplicated view and reports whether this was the
// user's first view.
func MarkViewed(views *Set, userID uint) bool {
	return views.Add(userID)
}

// StateOf returns the user's current vote state given both sets.
func StateOf(up, down Set, userID uint) VoteState {
	if up.Has(userID) {
		return VoteUp
	}
	if down.Has(userID) {
		return VoteDown
	}
	return VoteNone
}

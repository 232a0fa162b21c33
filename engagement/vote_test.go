package engagement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
)

// TestToggleVoteExclusivity verifies that after any sequence of toggles the
// user appears in at most one of the up and down sets.
func TestToggleVoteExclusivity(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}
	const user = uint(7)

	sequence := []engagement.VoteState{
		engagement.VoteUp, engagement.VoteDown, engagement.VoteDown,
		engagement.VoteUp, engagement.VoteUp, engagement.VoteDown,
	}
	for _, dir := range sequence {
		_, err := engagement.ToggleVote(&up, &down, user, dir)
		require.NoError(t, err)

		inBoth := up.Has(user) && down.Has(user)
		assert.False(t, inBoth, "user must never be in both sets after toggling %s", dir)
	}
}

// TestToggleVoteToggleOff verifies that repeating the same direction returns
// the user to state none and restores the original counts.
func TestToggleVoteToggleOff(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}
	const user = uint(42)

	res, err := engagement.ToggleVote(&up, &down, user, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteUp, res.UserState)
	assert.Equal(t, 1, res.UpCount)
	assert.Equal(t, 0, res.DownCount)

	res, err = engagement.ToggleVote(&up, &down, user, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteNone, res.UserState)
	assert.Equal(t, 0, res.UpCount)
	assert.Equal(t, 0, res.DownCount)
}

// TestToggleVoteSwitchesDirection verifies an up vote followed by a down vote
// moves the user between sets instead of double-counting.
func TestToggleVoteSwitchesDirection(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}
	const user = uint(3)

	_, err := engagement.ToggleVote(&up, &down, user, engagement.VoteUp)
	require.NoError(t, err)

	res, err := engagement.ToggleVote(&up, &down, user, engagement.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteDown, res.UserState)
	assert.Equal(t, 0, res.UpCount)
	assert.Equal(t, 1, res.DownCount)
	assert.False(t, up.Has(user))
	assert.True(t, down.Has(user))
}

// TestToggleVoteCountsOtherUsers verifies counts include other voters.
func TestToggleVoteCountsOtherUsers(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}

	_, err := engagement.ToggleVote(&up, &down, 1, engagement.VoteUp)
	require.NoError(t, err)
	_, err = engagement.ToggleVote(&up, &down, 2, engagement.VoteUp)
	require.NoError(t, err)
	res, err := engagement.ToggleVote(&up, &down, 3, engagement.VoteDown)
	require.NoError(t, err)

	assert.Equal(t, 2, res.UpCount)
	assert.Equal(t, 1, res.DownCount)
	assert.Equal(t, engagement.VoteDown, res.UserState)
}

// TestToggleVoteRejectsUnknownDirection verifies an invalid direction is an
// invalid-state error with no mutation.
func TestToggleVoteRejectsUnknownDirection(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}

	_, err := engagement.ToggleVote(&up, &down, 1, engagement.VoteState("sideways"))
	assert.True(t, engagement.IsInvalidState(err))
	assert.Equal(t, 0, up.Count())
	assert.Equal(t, 0, down.Count())
}

// TestParseVoteState verifies only up and down are accepted as requests.
func TestParseVoteState(t *testing.T) {
	cases := []struct {
		input   string
		want    engagement.VoteState
		wantErr bool
	}{
		{"up", engagement.VoteUp, false},
		{"down", engagement.VoteDown, false},
		{"none", engagement.VoteNone, true},
		{"", engagement.VoteNone, true},
		{"UP", engagement.VoteNone, true},
	}
	for _, tc := range cases {
		got, err := engagement.ParseVoteState(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
		} else {
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		}
	}
}

// TestToggleLikeFlips verifies an even number of calls restores the original
// state and an odd number flips it.
func TestToggleLikeFlips(t *testing.T) {
	likes := engagement.Set{}
	const user = uint(9)

	res := engagement.ToggleLike(&likes, user)
	assert.True(t, res.HasLiked)
	assert.Equal(t, 1, res.LikeCount)

	res = engagement.ToggleLike(&likes, user)
	assert.False(t, res.HasLiked)
	assert.Equal(t, 0, res.LikeCount)

	for i := 0; i < 3; i++ {
		res = engagement.ToggleLike(&likes, user)
	}
	assert.True(t, res.HasLiked, "odd number of flips should end liked")
	assert.Equal(t, 1, res.LikeCount)
}

// TestMarkViewedDeduplicates verifies repeat views by the same user are not
// recorded twice.
func TestMarkViewedDeduplicates(t *testing.T) {
	views := engagement.Set{}

	assert.True(t, engagement.MarkViewed(&views, 1))
	assert.False(t, engagement.MarkViewed(&views, 1))
	assert.True(t, engagement.MarkViewed(&views, 2))
	assert.Equal(t, 2, views.Count())
}

// TestStateOf verifies vote state reporting from the raw sets.
func TestStateOf(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}
	up.Add(1)
	down.Add(2)

	assert.Equal(t, engagement.VoteUp, engagement.StateOf(up, down, 1))
	assert.Equal(t, engagement.VoteDown, engagement.StateOf(up, down, 2))
	assert.Equal(t, engagement.VoteNone, engagement.StateOf(up, down, 3))
}

// TestVoteLedgerSequence walks the end-to-end example: a fresh complaint is
// upvoted, the vote is toggled off, and counts return to zero.
func TestVoteLedgerSequence(t *testing.T) {
	up, down := engagement.Set{}, engagement.Set{}
	const u2 = uint(2)

	res, err := engagement.ToggleVote(&up, &down, u2, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteResult{UpCount: 1, DownCount: 0, UserState: engagement.VoteUp}, res)

	res, err = engagement.ToggleVote(&up, &down, u2, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteResult{UpCount: 0, DownCount: 0, UserState: engagement.VoteNone}, res)
}

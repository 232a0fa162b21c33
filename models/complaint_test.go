package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
)

// TestChangeStatusAppendsHistory verifies transitions are logged append-only
// in sequence and creation itself logs nothing.
func TestChangeStatusAppendsHistory(t *testing.T) {
	c := models.Complaint{Status: models.StatusSubmitted}
	assert.Len(t, c.StatusHistory, 0, "creation does not log history")

	require.NoError(t, c.ChangeStatus(models.StatusInProgress, 5, "crew dispatched"))
	require.NoError(t, c.ChangeStatus(models.StatusResolved, 5, "pothole filled"))

	require.Len(t, c.StatusHistory, 2)
	assert.Equal(t, models.StatusInProgress, c.StatusHistory[0].Status)
	assert.Equal(t, models.StatusResolved, c.StatusHistory[1].Status)
	assert.Equal(t, uint(5), c.StatusHistory[0].ChangedBy)
	assert.Equal(t, "crew dispatched", c.StatusHistory[0].Comment)
	assert.False(t, c.StatusHistory[1].ChangedAt.IsZero())
	assert.Equal(t, models.StatusResolved, c.Status)
}

// TestChangeStatusFillsResolution verifies the resolution record is present
// and non-zero only after reaching resolved.
func TestChangeStatusFillsResolution(t *testing.T) {
	c := models.Complaint{Status: models.StatusSubmitted}
	assert.Nil(t, c.ResolutionOrNil())

	require.NoError(t, c.ChangeStatus(models.StatusInProgress, 9, ""))
	assert.Nil(t, c.ResolutionOrNil(), "in_progress does not resolve")

	require.NoError(t, c.ChangeStatus(models.StatusResolved, 9, "fixed"))
	res := c.ResolutionOrNil()
	require.NotNil(t, res)
	assert.Equal(t, uint(9), res.ResolvedBy)
	assert.Equal(t, "fixed", res.Description)
	assert.False(t, res.ResolvedAt.IsZero())
}

// TestChangeStatusRejectsSameAndUnknown verifies no-op and invalid statuses
// surface invalid-state errors without touching the history.
func TestChangeStatusRejectsSameAndUnknown(t *testing.T) {
	c := models.Complaint{Status: models.StatusSubmitted}

	err := c.ChangeStatus(models.StatusSubmitted, 1, "")
	assert.True(t, engagement.IsInvalidState(err))

	err = c.ChangeStatus(models.ComplaintStatus("escalated"), 1, "")
	assert.True(t, engagement.IsInvalidState(err))

	assert.Len(t, c.StatusHistory, 0)
	assert.Equal(t, models.StatusSubmitted, c.Status)
}

// TestComplaintVoteState verifies vote-state reporting through the sets.
func TestComplaintVoteState(t *testing.T) {
	c := models.Complaint{}
	assert.Equal(t, engagement.VoteNone, c.VoteState(1))

	res, err := engagement.ToggleVote(&c.Upvotes, &c.Downvotes, 1, engagement.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, engagement.VoteUp, res.UserState)
	assert.Equal(t, engagement.VoteUp, c.VoteState(1))
}

// TestComplaintEnums verifies the accepted categories, statuses, and priorities.
func TestComplaintEnums(t *testing.T) {
	assert.True(t, models.CategoryRoads.Valid())
	assert.True(t, models.CategoryOther.Valid())
	assert.False(t, models.ComplaintCategory("weather").Valid())

	assert.True(t, models.StatusRejected.Valid())
	assert.False(t, models.ComplaintStatus("").Valid())

	assert.True(t, models.PriorityCritical.Valid())
	assert.False(t, models.ComplaintPriority("urgent").Valid())
}

// TestStatusHistoryColumnRoundTrip verifies the JSON column encoding.
func TestStatusHistoryColumnRoundTrip(t *testing.T) {
	var h models.StatusHistory
	h.Append(models.StatusInProgress, 2, "note")

	v, err := h.Value()
	require.NoError(t, err)

	var decoded models.StatusHistory
	require.NoError(t, decoded.Scan(v))
	require.Len(t, decoded, 1)
	assert.Equal(t, models.StatusInProgress, decoded[0].Status)
	assert.Equal(t, "note", decoded[0].Comment)

	var empty models.StatusHistory
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

// TestResolutionColumnNullable verifies an unresolved record stores NULL.
func TestResolutionColumnNullable(t *testing.T) {
	var r models.Resolution
	v, err := r.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var decoded models.Resolution
	require.NoError(t, decoded.Scan(nil))
	assert.True(t, decoded.IsZero())
}

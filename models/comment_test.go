package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
)

func uintPtr(v uint) *uint { return &v }

// TestCommentParentContextXOR verifies a comment must reference exactly one
// parent context.
func TestCommentParentContextXOR(t *testing.T) {
	cases := []struct {
		name      string
		complaint *uint
		post      *uint
		wantErr   bool
	}{
		{"complaint only", uintPtr(1), nil, false},
		{"post only", nil, uintPtr(2), false},
		{"both", uintPtr(1), uintPtr(2), true},
		{"neither", nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := models.Comment{ComplaintID: tc.complaint, PostID: tc.post}
			err := c.ValidateParentContext()
			if tc.wantErr {
				assert.True(t, engagement.IsInvalidState(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestCommentEditRecordsPriorContent verifies the edit history's most recent
// entry holds the PRE-edit value while current content is the new one.
func TestCommentEditRecordsPriorContent(t *testing.T) {
	now := time.Now()
	c := models.Comment{Content: "content A", CreatedAt: now.Add(-time.Hour)}

	require.NoError(t, c.Edit("content B", now, 24*time.Hour))
	assert.Equal(t, "content B", c.Content)
	assert.True(t, c.Edited)
	require.Len(t, c.EditHistory, 1)
	assert.Equal(t, "content A", c.EditHistory[0].Content)

	require.NoError(t, c.Edit("content C", now, 24*time.Hour))
	require.Len(t, c.EditHistory, 2)
	assert.Equal(t, "content B", c.EditHistory[1].Content)
	assert.Equal(t, "content C", c.Content)
}

// TestCommentEditUnchangedIsNoOp verifies editing to the same content leaves
// the history untouched.
func TestCommentEditUnchangedIsNoOp(t *testing.T) {
	now := time.Now()
	c := models.Comment{Content: "same", CreatedAt: now}

	require.NoError(t, c.Edit("same", now, 24*time.Hour))
	assert.False(t, c.Edited)
	assert.Len(t, c.EditHistory, 0)
}

// TestCommentEditWindowExpired verifies edits past the window fail as
// authorization denials, not validation failures.
func TestCommentEditWindowExpired(t *testing.T) {
	now := time.Now()
	c := models.Comment{Content: "old", CreatedAt: now.Add(-25 * time.Hour)}

	err := c.Edit("new", now, 24*time.Hour)
	assert.True(t, engagement.IsDenied(err))
	assert.Equal(t, "old", c.Content)
	assert.Len(t, c.EditHistory, 0)
}

// TestCommentSoftDelete verifies the tombstone semantics: flag, timestamp,
// placeholder content, replies preserved, edit history untouched.
func TestCommentSoftDelete(t *testing.T) {
	now := time.Now()
	c := models.Comment{
		Content:  "something rude",
		ReplyIDs: models.IDList{4, 5},
		CreatedAt: now.Add(-time.Minute),
	}
	c.EditHistory.Append("", "earlier draft")

	require.NoError(t, c.SoftDelete(now))
	assert.True(t, c.Deleted)
	require.NotNil(t, c.DeletedAt)
	assert.Equal(t, models.DeletedPlaceholder, c.Content)
	assert.Equal(t, models.IDList{4, 5}, c.ReplyIDs, "reply list unchanged by deletion")
	assert.Len(t, c.EditHistory, 1, "deletion is not logged to edit history")

	err := c.SoftDelete(now)
	assert.True(t, engagement.IsInvalidState(err))
}

// TestCommentEditAfterDelete verifies a deleted comment rejects edits.
func TestCommentEditAfterDelete(t *testing.T) {
	now := time.Now()
	c := models.Comment{Content: "live", CreatedAt: now}
	require.NoError(t, c.SoftDelete(now))

	err := c.Edit("resurrected", now, 24*time.Hour)
	assert.True(t, engagement.IsInvalidState(err))
	assert.Equal(t, models.DeletedPlaceholder, c.Content)
}

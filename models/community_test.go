package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
	"github.com/civicpulse/civicpulse/models"
)

func newTestCommunity(t *testing.T, creatorID uint) models.Community {
	t.Helper()
	c := models.Community{CreatorID: creatorID}
	c.ApplySettings(models.DefaultCommunitySettings)
	require.NoError(t, c.Members.Add(creatorID, engagement.RoleAdmin))
	return c
}

// TestCommunityCreatorIsAdminMember verifies the creation invariant.
func TestCommunityCreatorIsAdminMember(t *testing.T) {
	c := newTestCommunity(t, 1)

	role, ok := c.Members.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, engagement.RoleAdmin, role)
	assert.True(t, c.IsMember(1))
	assert.True(t, c.IsModerator(1), "creator is always a moderator")
}

// TestCommunityJoinTwice verifies membership uniqueness.
func TestCommunityJoinTwice(t *testing.T) {
	c := newTestCommunity(t, 1)

	require.NoError(t, c.AddMember(2))
	err := c.AddMember(2)
	assert.ErrorIs(t, err, engagement.ErrAlreadyMember)
	assert.Equal(t, 2, c.Members.Count())
}

// TestCommunityCreatorCannotLeave verifies removal of the creator always
// fails and never shrinks the list.
func TestCommunityCreatorCannotLeave(t *testing.T) {
	c := newTestCommunity(t, 1)
	require.NoError(t, c.AddMember(2))

	err := c.RemoveMember(1)
	assert.ErrorIs(t, err, engagement.ErrCreatorImmutable)
	assert.Equal(t, 2, c.Members.Count())
	assert.True(t, c.IsMember(1))
}

// TestCommunityLeaveDropsModerator verifies leaving also clears a moderator
// listing so no dangling capability remains.
func TestCommunityLeaveDropsModerator(t *testing.T) {
	c := newTestCommunity(t, 1)
	require.NoError(t, c.AddMember(2))
	c.ModeratorIDs.Append(2)
	assert.True(t, c.IsModerator(2))

	require.NoError(t, c.RemoveMember(2))
	assert.False(t, c.IsMember(2))
	assert.False(t, c.IsModerator(2))
}

// TestCommunityIsModerator covers the capability check's three sources.
func TestCommunityIsModerator(t *testing.T) {
	c := newTestCommunity(t, 1)
	require.NoError(t, c.AddMember(2))
	require.NoError(t, c.AddMember(3))
	require.NoError(t, c.Members.SetRole(3, engagement.RoleModerator))
	c.ModeratorIDs.Append(4)

	assert.True(t, c.IsModerator(1), "creator")
	assert.False(t, c.IsModerator(2), "plain member")
	assert.True(t, c.IsModerator(3), "member with moderator role")
	assert.True(t, c.IsModerator(4), "listed moderator")
	assert.False(t, c.IsModerator(99), "stranger")
}

// TestCommunitySettingsRoundTrip verifies settings flags map cleanly.
func TestCommunitySettingsRoundTrip(t *testing.T) {
	c := models.Community{}
	s := models.CommunitySettings{IsPrivate: true, RequireApproval: true, AllowPosts: false, AllowComplaintSharing: true}
	c.ApplySettings(s)
	assert.Equal(t, s, c.Settings())
}

// TestCommunityPostEditRecordsPriorTitleAndContent verifies post edits log
// the pre-change pair.
func TestCommunityPostEditRecordsPriorTitleAndContent(t *testing.T) {
	now := time.Now()
	p := models.CommunityPost{Title: "title A", Content: "body A", CreatedAt: now.Add(-time.Hour)}

	require.NoError(t, p.Edit("title B", "body B", now, 24*time.Hour))
	assert.Equal(t, "title B", p.Title)
	assert.Equal(t, "body B", p.Content)
	assert.True(t, p.Edited)
	require.Len(t, p.EditHistory, 1)
	assert.Equal(t, "title A", p.EditHistory[0].Title)
	assert.Equal(t, "body A", p.EditHistory[0].Content)
}

// TestCommunityPostEditLockedAndLate verifies locked posts and expired
// windows reject edits with the right error classes.
func TestCommunityPostEditLockedAndLate(t *testing.T) {
	now := time.Now()

	locked := models.CommunityPost{Title: "t", Content: "c", Locked: true, CreatedAt: now}
	assert.True(t, engagement.IsInvalidState(locked.Edit("t2", "c2", now, time.Hour)))

	late := models.CommunityPost{Title: "t", Content: "c", CreatedAt: now.Add(-48 * time.Hour)}
	assert.True(t, engagement.IsDenied(late.Edit("t2", "c2", now, 24*time.Hour)))
}

// TestPostTypeEnum verifies accepted post types.
func TestPostTypeEnum(t *testing.T) {
	assert.True(t, models.PostAnnouncement.Valid())
	assert.False(t, models.PostType("rant").Valid())
}

package engagement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
)

// TestMemberListUniqueness verifies joining twice produces exactly one member
// record and surfaces an invalid-state error.
func TestMemberListUniqueness(t *testing.T) {
	var members engagement.MemberList
	require.NoError(t, members.Add(1, engagement.RoleMember))

	err := members.Add(1, engagement.RoleMember)
	assert.ErrorIs(t, err, engagement.ErrAlreadyMember)
	assert.True(t, engagement.IsInvalidState(err))
	assert.Equal(t, 1, members.Count())
}

// TestMemberListCreatorImmutable verifies the creator can never be removed
// and the list never shrinks from the attempt.
func TestMemberListCreatorImmutable(t *testing.T) {
	const creator = uint(100)
	var members engagement.MemberList
	require.NoError(t, members.Add(creator, engagement.RoleAdmin))
	require.NoError(t, members.Add(2, engagement.RoleMember))

	err := members.Remove(creator, creator)
	assert.ErrorIs(t, err, engagement.ErrCreatorImmutable)
	assert.True(t, engagement.IsDenied(err))
	assert.Equal(t, 2, members.Count())
	assert.True(t, members.Has(creator))
}

// TestMemberListRemove verifies ordinary members can leave and absent users
// surface not-member.
func TestMemberListRemove(t *testing.T) {
	const creator = uint(1)
	var members engagement.MemberList
	require.NoError(t, members.Add(creator, engagement.RoleAdmin))
	require.NoError(t, members.Add(2, engagement.RoleMember))

	require.NoError(t, members.Remove(2, creator))
	assert.False(t, members.Has(2))
	assert.Equal(t, 1, members.Count())

	err := members.Remove(2, creator)
	assert.ErrorIs(t, err, engagement.ErrNotMember)
}

// TestMemberListRoles verifies role lookup and promotion.
func TestMemberListRoles(t *testing.T) {
	var members engagement.MemberList
	require.NoError(t, members.Add(1, engagement.RoleAdmin))
	require.NoError(t, members.Add(2, engagement.RoleMember))

	role, ok := members.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, engagement.RoleAdmin, role)

	require.NoError(t, members.SetRole(2, engagement.RoleModerator))
	role, _ = members.RoleOf(2)
	assert.Equal(t, engagement.RoleModerator, role)

	assert.ErrorIs(t, members.SetRole(3, engagement.RoleModerator), engagement.ErrNotMember)

	_, ok = members.RoleOf(99)
	assert.False(t, ok)
}

// TestMemberListValueScanRoundTrip verifies the JSON column encoding.
func TestMemberListValueScanRoundTrip(t *testing.T) {
	var members engagement.MemberList
	require.NoError(t, members.Add(1, engagement.RoleAdmin))
	require.NoError(t, members.Add(2, engagement.RoleMember))

	v, err := members.Value()
	require.NoError(t, err)

	var decoded engagement.MemberList
	require.NoError(t, decoded.Scan(v))
	require.Equal(t, 2, decoded.Count())
	role, ok := decoded.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, engagement.RoleAdmin, role)

	var nilList engagement.MemberList
	v, err = nilList.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var fromNull engagement.MemberList
	require.NoError(t, fromNull.Scan(nil))
	assert.Equal(t, 0, fromNull.Count())
}

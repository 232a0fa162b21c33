package engagement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/engagement"
)

// TestSetAddRemoveToggle exercises basic set mutation semantics.
func TestSetAddRemoveToggle(t *testing.T) {
	var s engagement.Set

	assert.True(t, s.Add(1), "first add should change the set")
	assert.False(t, s.Add(1), "repeat add is a no-op")
	assert.True(t, s.Has(1))
	assert.Equal(t, 1, s.Count())

	assert.True(t, s.Remove(1))
	assert.False(t, s.Remove(1), "removing an absent user is a no-op")

	assert.True(t, s.Toggle(2), "toggle on")
	assert.False(t, s.Toggle(2), "toggle off")
	assert.Equal(t, 0, s.Count())
}

// TestSetValueScanRoundTrip verifies the JSON column encoding survives a
// write/read cycle, including the nil set.
func TestSetValueScanRoundTrip(t *testing.T) {
	s := engagement.Set{}
	s.Add(10)
	s.Add(20)

	v, err := s.Value()
	require.NoError(t, err)

	var decoded engagement.Set
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, 2, decoded.Count())
	assert.True(t, decoded.Has(10))
	assert.True(t, decoded.Has(20))

	var nilSet engagement.Set
	v, err = nilSet.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

// TestSetScanHandlesEmptyColumn verifies NULL and empty columns scan to an
// empty set rather than erroring.
func TestSetScanHandlesEmptyColumn(t *testing.T) {
	var s engagement.Set
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Scan([]byte("")))
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Scan("{}"))
	assert.Equal(t, 0, s.Count())

	assert.Error(t, s.Scan(12345), "unsupported column type should error")
}

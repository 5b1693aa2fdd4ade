package room

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct {
	values []int
	i      int
}

func (f *fixedRand) IntN(n int) int {
	v := f.values[f.i%len(f.values)] % n
	f.i++
	return v
}

func TestStoreCreateIssuesFourDigitCodes(t *testing.T) {
	s := NewStore(Config{Logger: quietLogger(), Seed: 99})
	t.Cleanup(s.CloseAll)

	codePattern := regexp.MustCompile(`^\d{4}$`)
	seen := make(map[string]bool)
	for range 50 {
		r, err := s.Create()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, r.Code)
		assert.False(t, seen[r.Code], "duplicate code %s", r.Code)
		seen[r.Code] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestStoreGetAndDelete(t *testing.T) {
	s := NewStore(Config{Logger: quietLogger(), Seed: 1})
	r, err := s.Create()
	require.NoError(t, err)

	got, ok := s.Get(r.Code)
	require.True(t, ok)
	assert.Same(t, r, got)

	s.Delete(r.Code)
	_, ok = s.Get(r.Code)
	assert.False(t, ok)

	_, err = r.Connect("alice")
	assert.ErrorIs(t, err, ErrClosed)

	s.Delete("nope")
	assert.Equal(t, 0, s.Len())
}

func TestStoreRemovesRoomWhenLastConnectionLeaves(t *testing.T) {
	s := NewStore(Config{Logger: quietLogger(), Seed: 1})
	r, err := s.Create()
	require.NoError(t, err)

	c, err := r.Connect("alice")
	require.NoError(t, err)
	r.Disconnect(c)

	_, ok := s.Get(r.Code)
	assert.False(t, ok)
}

func TestFreeCodeSkipsTakenCodes(t *testing.T) {
	s := NewStore(Config{Logger: quietLogger(), Seed: 1})
	s.rooms["0007"] = &Room{Code: "0007"}

	code, err := s.freeCodeLocked(&fixedRand{values: []int{7, 7, 12}})
	require.NoError(t, err)
	assert.Equal(t, "0012", code)
}

func TestFreeCodeGivesUp(t *testing.T) {
	s := NewStore(Config{Logger: quietLogger(), Seed: 1})
	s.rooms["0003"] = &Room{Code: "0003"}

	_, err := s.freeCodeLocked(&fixedRand{values: []int{3}})
	assert.ErrorIs(t, err, ErrNoFreeCode)
}

package rulesrt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapTracksUsage(t *testing.T) {
	h := NewHeap()

	s, err := Alloc[Header](h, 3)
	require.NoError(t, err)
	assert.Len(t, s, 3)

	str, err := Sprintf(h, "https://%s.example.com", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "https://eu-west-1.example.com", str)
	assert.Equal(t, 3+len(str), h.InUse())

	Free(h, s)
	FreeString(h, str)
	assert.Zero(t, h.InUse())
}

func TestBudgetRefusesOverLimit(t *testing.T) {
	b := NewBudget(4)

	_, err := Alloc[Property](b, 3)
	require.NoError(t, err)

	_, err = Alloc[Property](b, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, 3, b.InUse(), "a refused reservation takes nothing")

	_, err = Sprintf(b, "%s", "xx")
	assert.ErrorIs(t, err, ErrOutOfMemory)

	b.Release(3)
	assert.Zero(t, b.InUse())
}

func TestUnwindRunsInReverse(t *testing.T) {
	var order []string
	var u Unwind
	u.Push(func() { order = append(order, "url") })
	u.Push(func() { order = append(order, "headers") })
	g := u.Push(func() { order = append(order, "props") })
	u.Push(func() { order = append(order, "schemes") })
	assert.Equal(t, 4, u.Len())

	g.Cancel()
	u.Run()
	assert.Equal(t, []string{"schemes", "headers", "url"}, order)

	u.Run()
	assert.Len(t, order, 3, "Run empties the list")
}

func TestUnwindRelease(t *testing.T) {
	fired := false
	func() {
		var u Unwind
		defer u.Run()
		u.Push(func() { fired = true })
		u.Release()
	}()
	assert.False(t, fired)
}

func TestScratchSprintf(t *testing.T) {
	s := NewScratch(8)
	assert.Equal(t, "a.b", s.Sprintf("%v.%v", "a", "b"))
	long := s.Sprintf("%v", "a string longer than the bound")
	assert.Equal(t, "a string longer than the bound", long)
	assert.Equal(t, 8, cap(s.buf))

	first := s.Sprintf("%v", "one")
	second := s.Sprintf("%v", "two")
	assert.Equal(t, "one", first, "results do not alias the buffer")
	assert.Equal(t, "two", second)
}

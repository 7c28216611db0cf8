package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpStats_RecordAndTop(t *testing.T) {
	s := NewOpStats()
	s.Record("select")
	s.Record("select")
	s.Record("join")

	top := s.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "select", top[0].Op)
	assert.Equal(t, int64(2), top[0].Calls)
	assert.Equal(t, "join", top[1].Op)
}

func TestOpStats_Degraded(t *testing.T) {
	s := NewOpStats()
	assert.Equal(t, int64(0), s.Degraded())

	s.RecordDegraded("union", "incompatible domains")
	s.RecordDegraded("union", "incompatible domains")
	s.Record("union")

	assert.Equal(t, int64(2), s.Degraded())
	assert.Equal(t, int64(2), s.OpDegraded("union"))
	assert.Equal(t, int64(0), s.OpDegraded("join"))

	top := s.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, int64(3), top[0].Calls)
	assert.Equal(t, "incompatible domains", top[0].LastCause)
}

func TestOpStats_TopBounds(t *testing.T) {
	s := NewOpStats()
	assert.Empty(t, s.Top(5))
	assert.Empty(t, s.Top(0))

	s.Record("a")
	assert.Len(t, s.Top(10), 1)
}

func TestOpStats_ConcurrentAccess(t *testing.T) {
	s := NewOpStats()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record("op")
				s.Degraded()
			}
		}()
	}
	wg.Wait()

	top := s.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, int64(800), top[0].Calls)
}

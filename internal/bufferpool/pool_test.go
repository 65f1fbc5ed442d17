package bufferpool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bptreeidx/internal/blobfile"
)

func newTestPool(t *testing.T, capacity int) *Pool {
	t.Helper()
	bf, err := blobfile.Create(filepath.Join(t.TempDir(), "t.0"), 256)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bf.Close() })
	return NewPool(bf, capacity)
}

func TestAllocateGetUnpinFlush(t *testing.T) {
	p := newTestPool(t, 4)

	pid, buf, err := p.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint32(1), pid)

	buf[0] = 0x7A
	require.NoError(t, p.Unpin(pid, true))

	buf2, err := p.GetPage(pid)
	require.NoError(t, err)
	require.Equal(t, byte(0x7A), buf2[0])
	require.NoError(t, p.Unpin(pid, false))

	require.NoError(t, p.FlushAll())
}

func TestUnpinOnNonResidentPageIsAbsorbed(t *testing.T) {
	p := newTestPool(t, 4)
	require.NoError(t, p.Unpin(999, true))
}

func TestClockEvictsUnpinnedOverPinned(t *testing.T) {
	p := newTestPool(t, 2)

	pid1, _, err := p.AllocatePage()
	require.NoError(t, err)
	pid2, _, err := p.AllocatePage()
	require.NoError(t, err)

	// Keep pid1 pinned; unpin pid2 so it is evictable.
	require.NoError(t, p.Unpin(pid2, false))

	// A third page forces an eviction; pid1 is pinned, so pid2 must go.
	pid3, _, err := p.AllocatePage()
	require.NoError(t, err)
	require.NotEqual(t, pid1, pid3)

	require.NoError(t, p.Unpin(pid1, false))
	require.NoError(t, p.Unpin(pid3, false))
}

func TestNoFreeFrameWhenAllPinned(t *testing.T) {
	p := newTestPool(t, 1)

	_, _, err := p.AllocatePage()
	require.NoError(t, err)

	_, _, err = p.AllocatePage()
	require.ErrorIs(t, err, ErrNoFreeFrame)
}

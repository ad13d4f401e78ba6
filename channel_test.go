package taskmgr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	ikeys "github.com/UniQw/taskmgr/internal/keys"
	mrd "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniClient(t *testing.T) (*redis.Client, *mrd.Miniredis, func()) {
	t.Helper()
	s := mrd.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	cleanup := func() {
		_ = rdb.Close()
		s.Close()
	}
	return rdb, s, cleanup
}

func newShm(t *testing.T) *ShmChannel {
	t.Helper()
	return NewShmChannel(ikeys.SegmentPath(t.TempDir(), "test"))
}

// channelContract runs the behaviour every backend must share.
func channelContract(t *testing.T, ch Channel) {
	ctx := context.Background()

	_, err := ch.Read(ctx)
	require.ErrorIs(t, err, ErrAttachFailed, "read before any write")

	for _, k := range AllKinds {
		in := Record{Kind: k, A: 7, B: -3}
		require.NoError(t, ch.Write(ctx, in))
		out, err := ch.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	// unknown kinds are stored verbatim; validation is the reader's job
	require.NoError(t, ch.Write(ctx, Record{Kind: 99, A: 1, B: 2}))
	out, err := ch.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Kind(99), out.Kind)

	require.NoError(t, ch.Destroy(ctx))
	_, err = ch.Read(ctx)
	require.ErrorIs(t, err, ErrAttachFailed, "read after destroy")
	require.NoError(t, ch.Destroy(ctx), "destroy when absent")

	// recreated on next write
	require.NoError(t, ch.Write(ctx, Record{Kind: Addition, A: 1, B: 1}))
	_, err = ch.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, ch.Close())
}

func TestShmChannel_Contract(t *testing.T) {
	channelContract(t, newShm(t))
}

func TestRedisChannel_Contract(t *testing.T) {
	rdb, _, done := newMiniClient(t)
	defer done()
	channelContract(t, NewRedisChannel(rdb, "test"))
}

func TestShmChannel_ReadersSeeWriterThroughSpec(t *testing.T) {
	ctx := context.Background()
	w := newShm(t)
	require.NoError(t, w.Write(ctx, Record{Kind: Addition, A: 7, B: 3}))

	spec := w.Spec()
	assert.Equal(t, BackendShm, spec.Backend)
	r, err := OpenChannel(spec)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Record{Kind: Addition, A: 7, B: 3}, got)
}

func TestShmChannel_WriteAllocationFailed(t *testing.T) {
	ch := NewShmChannel(filepath.Join(t.TempDir(), "missing-dir", "seg"))
	err := ch.Write(context.Background(), Record{Kind: Addition})
	require.ErrorIs(t, err, ErrAllocationFailed)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRedisChannel_SpecAndOpen(t *testing.T) {
	rdb, s, done := newMiniClient(t)
	defer done()
	ctx := context.Background()

	w := NewRedisChannel(rdb, "demo")
	require.NoError(t, w.Write(ctx, Record{Kind: Multiplication, A: 6, B: 7}))
	assert.True(t, s.Exists(ikeys.Slot("demo")))

	spec := w.Spec()
	assert.Equal(t, ChannelSpec{Backend: BackendRedis, Name: "demo", Addr: s.Addr()}, spec)

	r, err := OpenChannel(spec)
	require.NoError(t, err)
	got, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, Record{Kind: Multiplication, A: 6, B: 7}, got)
	require.NoError(t, r.Close())

	// the caller's client stays usable
	require.NoError(t, w.Close())
	require.NoError(t, rdb.Ping(ctx).Err())
}

func TestRedisChannel_ShortValue(t *testing.T) {
	rdb, s, done := newMiniClient(t)
	defer done()
	require.NoError(t, s.Set(ikeys.Slot("bad"), "xy"))
	_, err := NewRedisChannel(rdb, "bad").Read(context.Background())
	require.ErrorIs(t, err, ErrAttachFailed)
}

func TestRedisChannel_WriteAllocationFailed(t *testing.T) {
	rdb, s, done := newMiniClient(t)
	defer done()
	s.Close()
	err := NewRedisChannel(rdb, "down").Write(context.Background(), Record{Kind: Addition})
	require.ErrorIs(t, err, ErrAllocationFailed)
}

func TestOpenChannel_Errors(t *testing.T) {
	_, err := OpenChannel(ChannelSpec{Backend: "tcp"})
	require.ErrorIs(t, err, ErrUnknownBackend)
	_, err = OpenChannel(ChannelSpec{Backend: BackendShm})
	require.ErrorIs(t, err, ErrUnknownBackend)
}

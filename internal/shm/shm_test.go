package shm

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func segPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "seg")
}

func TestOpenOrCreate_SizeAndMode(t *testing.T) {
	p := segPath(t)
	h, err := OpenOrCreate(p)
	require.NoError(t, err)
	require.Equal(t, p, h.Path)

	st, err := os.Stat(p)
	require.NoError(t, err)
	require.Equal(t, int64(Size), st.Size())
	require.Equal(t, os.FileMode(Mode), st.Mode().Perm())

	// reopening keeps existing contents
	v, err := Attach(h)
	require.NoError(t, err)
	v.Store([Words]int32{1, 2, 3})
	require.NoError(t, v.Detach())

	h, err = OpenOrCreate(p)
	require.NoError(t, err)
	v, err = Attach(h)
	require.NoError(t, err)
	defer v.Detach()
	require.Equal(t, [Words]int32{1, 2, 3}, v.Load())
}

func TestAttach_Missing(t *testing.T) {
	_, err := Attach(Handle{Path: segPath(t)})
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestAttach_TooSmall(t *testing.T) {
	p := segPath(t)
	require.NoError(t, os.WriteFile(p, []byte{1, 2}, 0o600))
	_, err := Attach(Handle{Path: p})
	require.ErrorIs(t, err, ErrTooSmall)
}

func TestView_SharedAcrossMappings(t *testing.T) {
	h, err := OpenOrCreate(segPath(t))
	require.NoError(t, err)

	w, err := Attach(h)
	require.NoError(t, err)
	r, err := Attach(h)
	require.NoError(t, err)
	defer r.Detach()

	w.Store([Words]int32{5, -7, 42})
	require.NoError(t, w.Detach())
	require.Equal(t, [Words]int32{5, -7, 42}, r.Load())
}

func TestDetach_Twice(t *testing.T) {
	h, err := OpenOrCreate(segPath(t))
	require.NoError(t, err)
	v, err := Attach(h)
	require.NoError(t, err)
	require.NoError(t, v.Detach())
	require.NoError(t, v.Detach())
}

func TestDestroy(t *testing.T) {
	h, err := OpenOrCreate(segPath(t))
	require.NoError(t, err)
	require.FileExists(t, h.Path)

	require.NoError(t, Destroy(h))
	require.NoFileExists(t, h.Path)
	_, err = Attach(h)
	require.Error(t, err)

	// absent segment
	require.NoError(t, Destroy(h))
}

func TestProperty_StoreLoad(t *testing.T) {
	h, err := OpenOrCreate(segPath(t))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		in := [Words]int32{
			rapid.Int32().Draw(rt, "kind"),
			rapid.Int32().Draw(rt, "a"),
			rapid.Int32().Draw(rt, "b"),
		}
		v, err := Attach(h)
		if err != nil {
			rt.Fatalf("attach: %v", err)
		}
		v.Store(in)
		_ = v.Detach()

		v, err = Attach(h)
		if err != nil {
			rt.Fatalf("attach: %v", err)
		}
		defer v.Detach()
		if got := v.Load(); got != in {
			rt.Fatalf("load mismatch: got %v want %v", got, in)
		}
	})
}

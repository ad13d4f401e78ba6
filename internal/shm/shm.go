// Package shm implements a single-slot shared memory segment backed by a
// memory-mapped file. The segment holds three int32 words and carries no
// locking: callers must guarantee one writer and then one reader per cycle.
package shm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// Words is the number of int32 slots in a segment.
const Words = 3

// Size is the byte capacity of a segment.
const Size = Words * 4

// Mode is the permission applied to newly created segments.
const Mode = 0o666

// ErrTooSmall is returned by Attach when the backing file is shorter than Size.
var ErrTooSmall = errors.New("shm: segment smaller than record size")

// Handle identifies a segment. It is safe to pass between processes.
type Handle struct {
	Path string
}

// View is a mapping of a segment into the calling process.
type View struct {
	data []byte
}

// OpenOrCreate obtains the segment at path, creating it when absent and
// growing it to Size when shorter.
func OpenOrCreate(path string) (Handle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, Mode)
	if err != nil {
		return Handle{}, err
	}
	defer f.Close()
	// umask strips the world bits on create
	if err := unix.Fchmod(int(f.Fd()), Mode); err != nil {
		return Handle{}, fmt.Errorf("chmod %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		return Handle{}, err
	}
	if st.Size() < Size {
		if err := f.Truncate(Size); err != nil {
			return Handle{}, fmt.Errorf("truncate %s: %w", path, err)
		}
	}
	return Handle{Path: path}, nil
}

// Attach maps an existing segment read/write. It never creates the segment.
func Attach(h Handle) (*View, error) {
	f, err := os.OpenFile(h.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	// the mapping stays valid after the descriptor is closed
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < Size {
		return nil, ErrTooSmall
	}
	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", h.Path, err)
	}
	return &View{data: data}, nil
}

// Store writes the words at offsets 0, 4 and 8.
func (v *View) Store(w [Words]int32) {
	for i, x := range w {
		binary.NativeEndian.PutUint32(v.data[i*4:], uint32(x))
	}
}

// Load reads the words at offsets 0, 4 and 8.
func (v *View) Load() [Words]int32 {
	var w [Words]int32
	for i := range w {
		w[i] = int32(binary.NativeEndian.Uint32(v.data[i*4:]))
	}
	return w
}

// Detach releases the local mapping. The segment itself persists.
func (v *View) Detach() error {
	if v == nil || v.data == nil {
		return nil
	}
	err := unix.Munmap(v.data)
	v.data = nil
	return err
}

// Destroy removes the segment. Removing an absent segment is a no-op.
func Destroy(h Handle) error {
	if err := os.Remove(h.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}


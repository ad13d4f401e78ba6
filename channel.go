package taskmgr

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	ikeys "github.com/UniQw/taskmgr/internal/keys"
	"github.com/UniQw/taskmgr/internal/shm"
	"github.com/redis/go-redis/v9"
)

// Channel is a single-slot store shared between a controller and its worker.
// It has no locking: one Write must complete before the matching Read starts.
type Channel interface {
	// Write creates the slot if needed and stores the record.
	Write(ctx context.Context, r Record) error
	// Read loads the record. It fails with ErrAttachFailed if the slot does not exist.
	Read(ctx context.Context) (Record, error)
	// Destroy removes the slot. Destroying an absent slot is not an error.
	Destroy(ctx context.Context) error
	// Spec describes the channel so another process can open it.
	Spec() ChannelSpec
	// Close releases local resources; the slot itself persists.
	Close() error
}

// Backend names a Channel implementation.
type Backend string

const (
	// BackendShm stores the record in a memory-mapped segment file.
	BackendShm Backend = "shm"
	// BackendRedis stores the record under a Redis key.
	BackendRedis Backend = "redis"
)

// ChannelSpec is the explicit handle a controller passes to its worker.
type ChannelSpec struct {
	Backend Backend `json:"backend"`
	// Path is the segment file for BackendShm.
	Path string `json:"path,omitempty"`
	// Name, Addr and DB locate the slot for BackendRedis.
	Name     string `json:"name,omitempty"`
	Addr     string `json:"addr,omitempty"`
	DB       int    `json:"db,omitempty"`
	Password string `json:"-"`
}

// OpenChannel builds the Channel described by spec. A redis channel opened
// this way owns its client and closes it on Close.
func OpenChannel(spec ChannelSpec) (Channel, error) {
	switch spec.Backend {
	case BackendShm, "":
		if spec.Path == "" {
			return nil, fmt.Errorf("%w: empty segment path", ErrUnknownBackend)
		}
		return NewShmChannel(spec.Path), nil
	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: spec.Addr, DB: spec.DB, Password: spec.Password})
		ch := NewRedisChannel(rdb, spec.Name)
		ch.owned = true
		return ch, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, spec.Backend)
	}
}

// ShmChannel is a Channel backed by a memory-mapped segment file. Each
// operation attaches and detaches, so no mapping outlives a call.
type ShmChannel struct {
	h shm.Handle
}

// NewShmChannel returns a channel for the segment at path. Nothing is created
// until the first Write.
func NewShmChannel(path string) *ShmChannel {
	return &ShmChannel{h: shm.Handle{Path: path}}
}

func (c *ShmChannel) Write(_ context.Context, r Record) error {
	h, err := shm.OpenOrCreate(c.h.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	v, err := shm.Attach(h)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAttachFailed, err)
	}
	v.Store(r.words())
	return v.Detach()
}

func (c *ShmChannel) Read(_ context.Context) (Record, error) {
	v, err := shm.Attach(c.h)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrAttachFailed, err)
	}
	r := recordFromWords(v.Load())
	return r, v.Detach()
}

func (c *ShmChannel) Destroy(context.Context) error {
	return shm.Destroy(c.h)
}

func (c *ShmChannel) Spec() ChannelSpec {
	return ChannelSpec{Backend: BackendShm, Path: c.h.Path}
}

func (c *ShmChannel) Close() error { return nil }

// RedisChannel is a Channel backed by a single Redis string holding the
// three words in little-endian order.
type RedisChannel struct {
	rdb   *redis.Client
	name  string
	key   string
	owned bool
}

// NewRedisChannel returns a channel stored under the slot key for name.
func NewRedisChannel(rdb *redis.Client, name string) *RedisChannel {
	return &RedisChannel{rdb: rdb, name: name, key: ikeys.Slot(name)}
}

func (c *RedisChannel) Write(ctx context.Context, r Record) error {
	var buf [shm.Size]byte
	for i, w := range r.words() {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(w))
	}
	if err := c.rdb.Set(ctx, c.key, buf[:], 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	return nil
}

func (c *RedisChannel) Read(ctx context.Context) (Record, error) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("%w: key %s not found", ErrAttachFailed, c.key)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrAttachFailed, err)
	}
	if len(b) < shm.Size {
		return Record{}, fmt.Errorf("%w: slot holds %d bytes", ErrAttachFailed, len(b))
	}
	var w [shm.Words]int32
	for i := range w {
		w[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return recordFromWords(w), nil
}

func (c *RedisChannel) Destroy(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

func (c *RedisChannel) Spec() ChannelSpec {
	o := c.rdb.Options()
	return ChannelSpec{Backend: BackendRedis, Name: c.name, Addr: o.Addr, DB: o.DB, Password: o.Password}
}

func (c *RedisChannel) Close() error {
	if c.owned {
		return c.rdb.Close()
	}
	return nil
}

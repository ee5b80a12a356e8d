// Package extmap implements the process-wide, append-only, type-keyed
// heterogeneous container threaded through every request, response, and
// connection. It is the universal side-channel between middleware layers:
// without it, polymorphism would require extending every request struct.
//
// Append-only semantics make readers lock-free against each other and avoid
// torn reads; insertion may briefly block writers racing on the same type's
// bucket. Once inserted, a value is never mutated nor removed: for a given
// type T, every stored instance stays reachable via First/Latest/Iter for
// the lifetime of the Map.
package extmap

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// bucket holds every inserted instance of one type, in insertion order.
// Writers serialize on mu and publish a fresh copy of the slice; readers
// load the published slice without locking.
type bucket struct {
	mu     sync.Mutex
	values atomic.Pointer[[]any]
}

func (b *bucket) append(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var next []any
	if cur := b.values.Load(); cur != nil {
		next = make([]any, len(*cur), len(*cur)+1)
		copy(next, *cur)
	}
	next = append(next, v)
	b.values.Store(&next)
}

func (b *bucket) snapshot() []any {
	if cur := b.values.Load(); cur != nil {
		return *cur
	}
	return nil
}

// Map is a cheap-to-clone, threadsafe-to-read heterogeneous store, keyed by
// runtime type identity. The zero value is not usable; construct with New.
type Map struct {
	buckets *xsync.Map[reflect.Type, *bucket]
}

// New creates an empty Map.
func New() *Map {
	return &Map{buckets: xsync.NewMap[reflect.Type, *bucket]()}
}

// Clone returns a Map that shares the same underlying storage: inserts made
// through either handle are visible through the other, and Clone itself
// never copies stored values.
func (m *Map) Clone() *Map {
	return &Map{buckets: m.buckets}
}

func typeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(&zero).Elem()
}

func bucketFor[T any](m *Map, create bool) (*bucket, bool) {
	t := typeOf[T]()
	if create {
		b, _ := m.buckets.LoadOrStore(t, &bucket{})
		return b, true
	}
	return m.buckets.Load(t)
}

// Insert appends a new value of type T and returns a pointer to the stored
// copy. Every call, even with an equal value, creates a new instance at the
// tail of T's insertion order.
func Insert[T any](m *Map, val T) *T {
	stored := val
	b, _ := bucketFor[T](m, true)
	b.append(&stored)
	return &stored
}

// InsertShared appends an already-owned shared handle (for example a
// pointer the caller obtained elsewhere), avoiding a double copy when the
// caller already owns a shared reference.
func InsertShared[T any](m *Map, val *T) *T {
	b, _ := bucketFor[T](m, true)
	b.append(val)
	return val
}

// Contains reports whether any value of type T has been inserted.
func Contains[T any](m *Map) bool {
	b, ok := bucketFor[T](m, false)
	if !ok {
		return false
	}
	return len(b.snapshot()) > 0
}

// Latest returns the most-recently inserted instance of T.
func Latest[T any](m *Map) (*T, bool) {
	b, ok := bucketFor[T](m, false)
	if !ok {
		return nil, false
	}
	vs := b.snapshot()
	if len(vs) == 0 {
		return nil, false
	}
	return vs[len(vs)-1].(*T), true
}

// First returns the first-inserted instance of T.
func First[T any](m *Map) (*T, bool) {
	b, ok := bucketFor[T](m, false)
	if !ok {
		return nil, false
	}
	vs := b.snapshot()
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0].(*T), true
}

// Iter returns every stored instance of T, in insertion order.
func Iter[T any](m *Map) []*T {
	b, ok := bucketFor[T](m, false)
	if !ok {
		return nil
	}
	vs := b.snapshot()
	out := make([]*T, len(vs))
	for i, v := range vs {
		out[i] = v.(*T)
	}
	return out
}

// GetOrInsert returns the latest instance of T, inserting the result of
// create if none exists yet. create may run even if another goroutine wins
// the race; the loser's value is simply appended after the winner's under
// the same per-type bucket lock, so no observable entry is ever retracted.
func GetOrInsert[T any](m *Map, create func() T) *T {
	if v, ok := Latest[T](m); ok {
		return v
	}
	return Insert(m, create())
}

// Extend concatenates other's entries onto m, type bucket by type bucket,
// preserving other's relative insertion order within each type and never
// reordering m's existing entries.
func Extend(m *Map, other *Map) {
	other.buckets.Range(func(t reflect.Type, b *bucket) bool {
		dst, _ := m.buckets.LoadOrStore(t, &bucket{})
		for _, v := range b.snapshot() {
			dst.append(v)
		}
		return true
	})
}

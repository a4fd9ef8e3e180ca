// Package patchpool implements the copy-on-write sector patch store backing
// the 88-DCDD controller. Disk writes never touch the base image; each written
// sector lands in a fixed arena of 256 patch slots shared by all four drives.
//
// The arena is a classical linked-list-through-array: a slot is free when its
// sector index carries the sentinel [InvalidIndex], and live slots chain into
// per-drive hash buckets through their link field. Indices are 16-bit; the
// sentinel can never collide with a real sector index because the largest one
// is TotalSectors-1 (2463).
package patchpool

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/altairemu/dcdd"
)

const (
	// PoolSize is the total number of patch slots shared across all drives.
	// When every slot is live, further writes are dropped (and logged once).
	PoolSize = 256
	// HashSize is the number of hash buckets in each drive's patch table.
	// Must be a power of two; the hash is a bitwise AND.
	HashSize = 16
)

// Index addresses a slot in the pool, or carries [InvalidIndex].
type Index uint16

// InvalidIndex marks a free slot, the end of a bucket chain, and a failed
// allocation.
const InvalidIndex = Index(0xFFFF)

// invalidSector marks a slot's sector index as unoccupied.
const invalidSector = uint16(0xFFFF)

// HashTable is one drive's view into the pool: a bucket array of chain heads.
// A zero-valued HashTable is NOT usable; call Reset first (or obtain one from
// NewHashTable) so every bucket starts at [InvalidIndex].
type HashTable [HashSize]Index

// NewHashTable returns a table with every bucket empty.
func NewHashTable() HashTable {
	var t HashTable
	t.Reset()
	return t
}

// Reset empties every bucket. It does not free the chained slots; use
// [Pool.Clear] for that.
func (t *HashTable) Reset() {
	for i := range t {
		t[i] = InvalidIndex
	}
}

func hashSector(sectorIndex uint16) int {
	return int(sectorIndex & (HashSize - 1))
}

type patch struct {
	// sectorIndex is track*SectorsPerTrack + sector, or invalidSector when
	// the slot is free.
	sectorIndex uint16
	// link threads this slot into its bucket chain.
	link Index
	data [dcdd.SectorSize]byte
}

// Pool is the shared patch arena. It is owned by a single controller and must
// only be touched from the CPU goroutine; there is no internal locking.
type Pool struct {
	slots [PoolSize]patch
	// live mirrors slot occupancy (1 = slot holds a patch). It exists so that
	// Used() and Audit() don't have to trust the sentinel encoding they are
	// meant to check.
	live bitmap.Bitmap
	// nextFree rotates across the arena so repeated allocations spread out
	// instead of hammering slot 0.
	nextFree  uint16
	used      uint16
	exhausted bool
	log       zerolog.Logger
}

// New creates an empty pool. The logger receives the one-shot exhaustion
// message; pass zerolog.Nop() to silence it.
func New(log zerolog.Logger) *Pool {
	pool := &Pool{
		live: bitmap.NewSlice(PoolSize),
		log:  log,
	}
	for i := range pool.slots {
		pool.slots[i].sectorIndex = invalidSector
		pool.slots[i].link = InvalidIndex
	}
	return pool
}

// Find walks the bucket chain for `sectorIndex` in the drive's table and
// returns the slot holding its patch, or (InvalidIndex, false).
func (pool *Pool) Find(table *HashTable, sectorIndex uint16) (Index, bool) {
	slot := table[hashSector(sectorIndex)]
	for slot != InvalidIndex {
		if pool.slots[slot].sectorIndex == sectorIndex {
			return slot, true
		}
		slot = pool.slots[slot].link
	}
	return InvalidIndex, false
}

// GetOrCreate returns the slot patching `sectorIndex`, allocating and zeroing
// a fresh one if none exists yet. It is idempotent. The second return value is
// false only when the pool has no free slot left, in which case the caller's
// write is lost; the pool logs that condition once per exhaustion event.
func (pool *Pool) GetOrCreate(table *HashTable, sectorIndex uint16) (Index, bool) {
	if existing, ok := pool.Find(table, sectorIndex); ok {
		return existing, true
	}

	slot, ok := pool.alloc()
	if !ok {
		return InvalidIndex, false
	}

	pool.slots[slot].sectorIndex = sectorIndex
	pool.slots[slot].data = [dcdd.SectorSize]byte{}

	// Prepend into the bucket chain.
	bucket := hashSector(sectorIndex)
	pool.slots[slot].link = table[bucket]
	table[bucket] = Index(slot)

	return slot, true
}

// alloc linearly probes from the rotating cursor for a free slot. O(PoolSize)
// worst case.
func (pool *Pool) alloc() (Index, bool) {
	for i := uint16(0); i < PoolSize; i++ {
		idx := (pool.nextFree + i) % PoolSize
		if pool.slots[idx].sectorIndex == invalidSector {
			pool.nextFree = (idx + 1) % PoolSize
			pool.used++
			pool.live.Set(int(idx), true)
			return Index(idx), true
		}
	}

	if !pool.exhausted {
		pool.exhausted = true
		pool.log.Error().
			Int("used", int(pool.used)).
			Int("capacity", PoolSize).
			Msg("patch pool exhausted; disk writes will be lost")
	}
	return InvalidIndex, false
}

// Data returns the 137-byte payload of a live slot. The slice aliases pool
// storage; it is only valid until the slot is freed.
func (pool *Pool) Data(slot Index) []byte {
	return pool.slots[slot].data[:]
}

// Clear frees every patch chained into the drive's table and empties its
// buckets. The pool may recover capacity, so the exhaustion latch resets.
// Safe to call repeatedly.
func (pool *Pool) Clear(table *HashTable) {
	for bucket := range table {
		slot := table[bucket]
		for slot != InvalidIndex {
			next := pool.slots[slot].link
			pool.slots[slot].sectorIndex = invalidSector
			pool.slots[slot].link = InvalidIndex
			pool.live.Set(int(slot), false)
			pool.used--
			slot = next
		}
		table[bucket] = InvalidIndex
	}
	pool.exhausted = false
}

// Used returns the number of live patches across all drives.
func (pool *Pool) Used() int {
	return int(pool.used)
}

// Capacity returns the total number of slots in the arena.
func (pool *Pool) Capacity() int {
	return PoolSize
}

// Exhausted reports whether the pool has refused an allocation since the last
// time capacity was recovered.
func (pool *Pool) Exhausted() bool {
	return pool.exhausted
}

// Audit cross-checks the arena against the given drive tables and returns an
// aggregate of every violated invariant: the used count must equal the number
// of slots with a valid sector index, the occupancy bitmap must agree with the
// sentinel encoding, every live slot must sit on exactly one bucket chain, and
// chains must contain only live slots.
func (pool *Pool) Audit(tables ...*HashTable) error {
	var result *multierror.Error

	liveBySentinel := 0
	for i := range pool.slots {
		isLive := pool.slots[i].sectorIndex != invalidSector
		if isLive {
			liveBySentinel++
		}
		if pool.live.Get(i) != isLive {
			result = multierror.Append(result, fmt.Errorf(
				"slot %d: occupancy bitmap says %v but sentinel says %v",
				i, pool.live.Get(i), isLive))
		}
	}
	if liveBySentinel != int(pool.used) {
		result = multierror.Append(result, fmt.Errorf(
			"used count is %d but %d slots hold a valid sector index",
			pool.used, liveBySentinel))
	}

	seen := make(map[Index]int)
	for tableNum, table := range tables {
		for bucket, slot := range table {
			for slot != InvalidIndex {
				if pool.slots[slot].sectorIndex == invalidSector {
					result = multierror.Append(result, fmt.Errorf(
						"table %d bucket %d chains through free slot %d",
						tableNum, bucket, slot))
					break
				}
				if prev, dup := seen[slot]; dup {
					result = multierror.Append(result, fmt.Errorf(
						"slot %d appears on more than one chain (tables %d and %d)",
						slot, prev, tableNum))
					break
				}
				seen[slot] = tableNum
				slot = pool.slots[slot].link
			}
		}
	}

	for i := range pool.slots {
		if pool.slots[i].sectorIndex == invalidSector {
			continue
		}
		if _, chained := seen[Index(i)]; !chained {
			result = multierror.Append(result, fmt.Errorf(
				"live slot %d is not on any bucket chain", i))
		}
	}

	return result.ErrorOrNil()
}

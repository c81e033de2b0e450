package mem

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"relay64/codec"
)

// LRUQueue is a fully-associative, word-addressed cache level: one
// akitacache.DirectoryImpl configured as a single set of size capacity,
// tracking LRU order, paired with a way-indexed map holding the resident
// words. Narrowing the set-associative directory to one set gives a
// bounded LRU queue without a hand-rolled slice scan.
type LRUQueue struct {
	directory *akitacache.DirectoryImpl
	values    map[int]codec.Word
}

// NewLRUQueue returns an empty LRU queue holding up to capacity words.
func NewLRUQueue(capacity int) *LRUQueue {
	return &LRUQueue{
		directory: akitacache.NewDirectory(1, capacity, wordBytes, akitacache.NewLRUVictimFinder()),
		values:    make(map[int]codec.Word),
	}
}

func wayKey(block *akitacache.Block) int {
	return block.SetID*1_000_000 + block.WayID
}

// Index reports whether key is resident.
func (q *LRUQueue) Index(key codec.Addr) bool {
	block := q.directory.Lookup(0, key)
	return block != nil && block.IsValid
}

// Flush evicts key without writeback; a no-op if key is not resident.
func (q *LRUQueue) Flush(key codec.Addr) {
	block := q.directory.Lookup(0, key)
	if block == nil || !block.IsValid {
		return
	}
	delete(q.values, wayKey(block))
	block.IsValid = false
	block.IsDirty = false
}

// Get returns the resident value for key and promotes it to
// most-recently-used.
func (q *LRUQueue) Get(key codec.Addr) (codec.Word, bool) {
	block := q.directory.Lookup(0, key)
	if block == nil || !block.IsValid {
		return 0, false
	}
	q.directory.Visit(block)
	return q.values[wayKey(block)], true
}

// Insert stores val under key, promoting it to most-recently-used. If the
// queue is already at capacity and key was not already resident, the
// least-recently-used entry is evicted and returned as (key, value, true).
func (q *LRUQueue) Insert(key codec.Addr, val codec.Word) (evictedKey codec.Addr, evictedVal codec.Word, evicted bool) {
	if block := q.directory.Lookup(0, key); block != nil && block.IsValid {
		q.values[wayKey(block)] = val
		q.directory.Visit(block)
		return 0, 0, false
	}

	victim := q.directory.FindVictim(key)
	if victim == nil {
		return 0, 0, false
	}

	if victim.IsValid {
		evictedKey = victim.Tag
		evictedVal = q.values[wayKey(victim)]
		evicted = true
	}

	victim.Tag = key
	victim.IsValid = true
	q.values[wayKey(victim)] = val
	q.directory.Visit(victim)

	return evictedKey, evictedVal, evicted
}

package mem

import "relay64/codec"

// L1Capacity and L2Capacity bound the two cache levels, in words.
const (
	L1Capacity = 20
	L2Capacity = 50
)

// DataAccessManager is the control unit's single entry point to memory: it
// locates a word in L1, then L2, then falls through to a bus request
// against main memory.
type DataAccessManager struct {
	L1     *LRUQueue
	L2     *LRUQueue
	Memory *Memory
	Bus    *Bus
}

// NewDataAccessManager wires a fresh two-level cache of the default
// geometry in front of mem.
func NewDataAccessManager(mem *Memory, bus *Bus) *DataAccessManager {
	return NewDataAccessManagerWithConfig(mem, bus, DefaultCacheConfig())
}

// NewDataAccessManagerWithConfig wires a two-level cache of the given
// geometry in front of mem.
func NewDataAccessManagerWithConfig(mem *Memory, bus *Bus, cfg *CacheConfig) *DataAccessManager {
	return &DataAccessManager{
		L1:     NewLRUQueue(cfg.L1Capacity),
		L2:     NewLRUQueue(cfg.L2Capacity),
		Memory: mem,
		Bus:    bus,
	}
}

// level identifies which tier, if any, currently holds a key.
type level int

const (
	levelNone level = iota
	levelL1
	levelL2
)

// locate reports which cache level, if any, holds key.
func (d *DataAccessManager) locate(key codec.Addr) level {
	if d.L1.Index(key) {
		return levelL1
	}
	if d.L2.Index(key) {
		return levelL2
	}
	return levelNone
}

// Read returns the cached value for key and whether it was a cache hit. On
// a miss it raises a bus load request and returns (0, false); the caller
// must stall and poll StallRead until the memory responds.
func (d *DataAccessManager) Read(key codec.Addr) (codec.Word, bool) {
	switch d.locate(key) {
	case levelL1:
		val, _ := d.L1.Get(key)
		return val, true
	case levelL2:
		val, _ := d.L2.Get(key)
		return val, true
	default:
		d.Bus.RequestLoad(key)
		return 0, false
	}
}

// InsertToCache installs val under key into the cache hierarchy. A value
// already present in L2 is flushed from L2 and reinserted at L1; anything
// evicted from L1 (whether key was new or already L2-resident) cascades
// down into L2.
func (d *DataAccessManager) InsertToCache(key codec.Addr, val codec.Word) {
	lvl := d.locate(key)
	if lvl == levelL2 {
		d.L2.Flush(key)
	}

	evKey, evVal, evicted := d.L1.Insert(key, val)
	if evicted {
		d.L2.Insert(evKey, evVal)
	}
}

// Write installs val into the cache hierarchy and issues a bus store
// request against main memory (write-through).
func (d *DataAccessManager) Write(key codec.Addr, val codec.Word) {
	d.InsertToCache(key, val)
	d.Bus.RequestStore(key, val)
}

// StallRead polls the bus for a completed load issued by a prior Read miss.
// When the memory side has responded, the result is installed into the
// cache hierarchy before being returned.
func (d *DataAccessManager) StallRead() (codec.Word, bool) {
	addr, data, ready := d.Bus.PollResult()
	if !ready {
		return 0, false
	}
	d.InsertToCache(addr, data)
	return data, true
}

package mem

import (
	"sync"

	"relay64/codec"
)

// Bus bundles the address bus, data bus and control-line handshake that sit
// between the cache hierarchy and main memory. The lock is a real
// sync.Mutex: the simulation never actually contends on it since only one
// side ticks at a time, but it keeps the handshake invariant (only one
// party touches the bus lines at once) mechanically checkable instead of
// advisory.
type Bus struct {
	mu sync.Mutex

	AddressBits codec.Addr
	DataBits    codec.Word

	ReadyMemory bool
	ReadyCPU    bool
	Store       bool
}

// NewBus returns an idle bus.
func NewBus() *Bus {
	return &Bus{}
}

// Lock acquires exclusive access to the bus lines for the duration of one
// handshake step. Tick implementations on either side of the bus must call
// Lock/Unlock around every read or write of its fields.
func (b *Bus) Lock() {
	b.mu.Lock()
}

// Unlock releases the bus lines.
func (b *Bus) Unlock() {
	b.mu.Unlock()
}

// Tick drives one step of memory's side of the handshake: if the requester
// has raised ReadyMemory, perform the requested store or load against mem
// and clear ReadyMemory, signalling ReadyCPU on a load.
func (b *Bus) Tick(mem *Memory) {
	b.Lock()
	defer b.Unlock()

	if !b.ReadyMemory {
		return
	}
	b.ReadyMemory = false

	if b.Store {
		mem.Write(b.AddressBits, b.DataBits)
		b.Store = false
		return
	}

	b.DataBits = mem.Read(b.AddressBits)
	b.ReadyCPU = true
}

// RequestLoad raises ReadyMemory with a load request for addr.
func (b *Bus) RequestLoad(addr codec.Addr) {
	b.Lock()
	defer b.Unlock()

	b.AddressBits = addr
	b.Store = false
	b.ReadyMemory = true
}

// RequestStore raises ReadyMemory with a store request of val at addr.
func (b *Bus) RequestStore(addr codec.Addr, val codec.Word) {
	b.Lock()
	defer b.Unlock()

	b.AddressBits = addr
	b.DataBits = val
	b.Store = true
	b.ReadyMemory = true
}

// PollResult consumes a pending ReadyCPU signal, if any, returning the
// address/data the memory side last produced.
func (b *Bus) PollResult() (addr codec.Addr, data codec.Word, ready bool) {
	b.Lock()
	defer b.Unlock()

	if !b.ReadyCPU {
		return 0, 0, false
	}
	b.ReadyCPU = false
	addr, data = b.AddressBits, b.DataBits
	b.AddressBits, b.DataBits = 0, 0
	return addr, data, true
}

// Package clock drives the control unit and main memory one tick at a
// time, counting cycles and stopping when the control unit halts.
package clock

import (
	"fmt"
	"io"
	"os"

	"relay64/codec"
	"relay64/cpu"
	"relay64/ipc"
	"relay64/mem"
)

// Clock sequences one control-unit tick and one bus tick per cycle, so a
// memory request posted by the CPU side of a cycle is serviced within the
// same cycle and visible to the CPU on the next.
type Clock struct {
	Config  *Config
	Ctrl    *cpu.ControlUnit
	Memory  *mem.Memory
	Bus     *mem.Bus
	Channel ipc.Channel

	Running    bool
	CycleCount uint64

	Out io.Writer
}

// NewClock wires a clock around an already-constructed control unit and
// memory pair. A nil cfg defaults via DefaultConfig; the channel defaults
// to NopChannel so callers that don't need the GUI hook can ignore it.
func NewClock(ctrl *cpu.ControlUnit, memory *mem.Memory, bus *mem.Bus, cfg *Config) *Clock {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Clock{
		Config:  cfg,
		Ctrl:    ctrl,
		Memory:  memory,
		Bus:     bus,
		Channel: ipc.NopChannel{},
		Out:     os.Stdout,
	}
}

// Tick advances the control unit and the memory bus by one cycle and
// counts it, regardless of halt state; callers that want halt-gated
// cycle counting should use Run/RunCycles instead.
func (c *Clock) Tick() {
	c.Ctrl.Tick()
	c.Bus.Tick(c.Memory)
	c.CycleCount++
}

// Run ticks until the control unit halts or Config.MaxCycles is reached
// (0 meaning unbounded), polling the IPC channel once per cycle when
// EnableIPC is set, and prints the cycle count on halt.
func (c *Clock) Run() {
	c.Running = true
	for c.Running {
		if c.Config.EnableIPC {
			c.pollChannel()
		}
		c.refresh()
	}
}

// RunCycles ticks at most n times, stopping early on halt. It reports
// whether the control unit is still running afterward.
func (c *Clock) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !c.Ctrl.Halt; i++ {
		c.Tick()
	}
	return !c.Ctrl.Halt
}

// refresh ticks once while the control unit hasn't halted, else stops
// and reports the final count.
func (c *Clock) refresh() {
	c.Running = !c.Ctrl.Halt
	if !c.Running {
		fmt.Fprintf(c.Out, "CYCLE COUNT: %d\n", c.CycleCount)
		return
	}
	if c.Config.MaxCycles != 0 && c.CycleCount >= c.Config.MaxCycles {
		c.Running = false
		fmt.Fprintf(c.Out, "CYCLE COUNT: %d\n", c.CycleCount)
		return
	}
	c.Tick()
}

// pollChannel receives and applies at most one pending IPC command.
func (c *Clock) pollChannel() {
	line, ok := c.Channel.Receive()
	if !ok {
		return
	}
	cmd := ipc.Parse(line)
	switch cmd.Kind {
	case ipc.CmdIncClock:
		c.Config.ClockSpeed++
	case ipc.CmdDecClock:
		c.Config.ClockSpeed--
	case ipc.CmdSetClock:
		c.Config.ClockSpeed = cmd.SetClock
	case ipc.CmdGet:
		data := c.Memory.Read(codec.Word(cmd.GetAddr))
		ipc.SendMemory(c.Channel, codec.BitsToHex(codec.FromUnsigned(uint64(cmd.GetAddr), codec.AddrBits)), codec.BitsToHex(codec.FromUnsigned(uint64(data), codec.WordBits)))
	}
}

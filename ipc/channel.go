// Package ipc implements the optional external-GUI hook: a small
// line-oriented message grammar the clock polls once per tick and may
// answer over.
package ipc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"relay64/codec"
)

// Channel is the contract the clock polls each tick: Receive returns the
// next queued message, if any, and Send emits a response line. A
// conforming minimal build may pass NopChannel and treat the hook as a
// no-op.
type Channel interface {
	Receive() (string, bool)
	Send(msg string)
}

// NopChannel never has a message waiting and discards everything sent to
// it.
type NopChannel struct{}

// Receive always reports no pending message.
func (NopChannel) Receive() (string, bool) { return "", false }

// Send discards msg.
func (NopChannel) Send(string) {}

// PipeChannel implements the real message grammar over an arbitrary
// io.Reader/io.Writer pair, reading one newline-delimited message per
// Receive call.
type PipeChannel struct {
	r *bufio.Scanner
	w io.Writer
}

// NewPipeChannel wraps r/w as a line-oriented IPC channel.
func NewPipeChannel(r io.Reader, w io.Writer) *PipeChannel {
	return &PipeChannel{r: bufio.NewScanner(r), w: w}
}

// Receive returns the next queued line, if any.
func (p *PipeChannel) Receive() (string, bool) {
	if !p.r.Scan() {
		return "", false
	}
	return p.r.Text(), true
}

// Send writes msg terminated by a newline.
func (p *PipeChannel) Send(msg string) {
	fmt.Fprintln(p.w, msg)
}

// Command is a decoded control-channel message.
type Command struct {
	IncClock bool
	DecClock bool
	SetClock int64 // valid when Kind == CmdSetClock
	GetAddr  codec.Addr
	Kind     CommandKind
}

// CommandKind tags which field of Command is meaningful.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdIncClock
	CmdDecClock
	CmdSetClock
	CmdGet
)

// Parse decodes one line of the INC_CLK/DEC_CLK/SET_CLK//<n>/GET//<hex>
// grammar. Anything else yields CmdNone.
func Parse(line string) Command {
	switch line {
	case "INC_CLK":
		return Command{Kind: CmdIncClock}
	case "DEC_CLK":
		return Command{Kind: CmdDecClock}
	}

	parts := strings.Split(line, "//")
	if len(parts) != 2 {
		return Command{Kind: CmdNone}
	}

	switch parts[0] {
	case "GET":
		addr := codec.ToUnsigned(codec.HexToBits(parts[1]))
		return Command{Kind: CmdGet, GetAddr: addr}
	case "SET_CLK":
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Command{Kind: CmdNone}
		}
		return Command{Kind: CmdSetClock, SetClock: n}
	}
	return Command{Kind: CmdNone}
}

// SendReg formats a REG//<r>//<v> response.
func SendReg(ch Channel, reg int, value uint64) {
	ch.Send(fmt.Sprintf("REG//%d//%d", reg, int64(value)))
}

// SendState formats a STATE//<s> response.
func SendState(ch Channel, state int) {
	ch.Send(fmt.Sprintf("STATE//%d", state))
}

// SendInstr formats an INSTR//<cur>//<next> response.
func SendInstr(ch Channel, current, next string) {
	ch.Send(fmt.Sprintf("INSTR//%s//%s", current, next))
}

// SendMemory formats a RAM//<addr>//<data> response.
func SendMemory(ch Channel, addrHex, dataHex string) {
	ch.Send(fmt.Sprintf("RAM//%s//%s", addrHex, dataHex))
}

// SendL1Util formats an L1_UTIL//<x> response.
func SendL1Util(ch Channel, utilization float64) {
	ch.Send(fmt.Sprintf("L1_UTIL//%.4f", utilization))
}

// SendL2Util formats an L2_UTIL//<x> response.
func SendL2Util(ch Channel, utilization float64) {
	ch.Send(fmt.Sprintf("L2_UTIL//%.4f", utilization))
}

// Package trace defines the Logger boundary (§6 "Logger"): a sink that
// receives typed records from the core and decides how, or whether, to
// surface them. This is deliberately separate from ambient log/slog
// diagnostics — a Sink records domain events the host explicitly asked
// to observe (serial output, CPU trace), while slog is for "something
// unexpected happened". The cpu, mmu and ppu packages make no slog calls.
package trace

import "fmt"

// CPUState is a snapshot of CPU state emitted at the start of every
// instruction execution, formatted per the de-facto test trace used by
// Game Boy test ROM harnesses.
type CPUState struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	PCMem                  [4]byte
}

// String formats the snapshot as:
// A:__ F:__ B:__ C:__ D:__ E:__ H:__ L:__ SP:____ PC:____ PCMEM:__,__,__,__
func (s CPUState) String() string {
	return fmt.Sprintf(
		"A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X PCMEM:%02X,%02X,%02X,%02X",
		s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L, s.SP, s.PC,
		s.PCMem[0], s.PCMem[1], s.PCMem[2], s.PCMem[3],
	)
}

// Sink receives typed records from the core. Implementations may suppress
// any subset of kinds; Nop below suppresses all of them.
type Sink interface {
	Message(msg string)
	SerialByte(b byte)
	CPUState(s CPUState)
}

// Nop discards every record. It's the default sink when a host doesn't
// care about tracing, keeping the core's hot path (CPUState is emitted
// once per instruction) free of formatting work.
type Nop struct{}

func (Nop) Message(string)    {}
func (Nop) SerialByte(byte)   {}
func (Nop) CPUState(CPUState) {}

// Filter wraps a Sink and drops whichever record kinds are suppressed,
// implementing the "optional per-kind suppression" in §6.
type Filter struct {
	Next             Sink
	SuppressMessage  bool
	SuppressSerial   bool
	SuppressCPUState bool
}

func (f Filter) Message(msg string) {
	if f.SuppressMessage || f.Next == nil {
		return
	}
	f.Next.Message(msg)
}

func (f Filter) SerialByte(b byte) {
	if f.SuppressSerial || f.Next == nil {
		return
	}
	f.Next.SerialByte(b)
}

func (f Filter) CPUState(s CPUState) {
	if f.SuppressCPUState || f.Next == nil {
		return
	}
	f.Next.CPUState(s)
}

// multiSink fans one record out to several Sinks, in order.
type multiSink []Sink

// Tee returns a Sink that forwards every record to each of sinks, in
// order. Used by the core to feed both its own serial.Buffer and a
// host-supplied sink (e.g. a CPU-trace logger) from the single Sink slot
// the mmu package accepts.
func Tee(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Message(msg string) {
	for _, s := range m {
		s.Message(msg)
	}
}

func (m multiSink) SerialByte(b byte) {
	for _, s := range m {
		s.SerialByte(b)
	}
}

func (m multiSink) CPUState(s CPUState) {
	for _, sink := range m {
		sink.CPUState(s)
	}
}

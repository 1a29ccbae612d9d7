package cpu

import (
	"github.com/valerio/dmgcore/mmu"
	"github.com/valerio/dmgcore/trace"
)

// Tracer receives a CPUState snapshot at the start of every instruction
// execution (§6 "Logger": "CpuState is emitted at the start of every
// instruction execution"). trace.Sink satisfies this narrower interface
// structurally, so a Core can hand the CPU its trace.Sink directly.
type Tracer interface {
	CPUState(s trace.CPUState)
}

// CPU is the Sharp LR35902 core: register file, IME state, and a
// reference to the shared memory map it decodes and executes against.
// Grounded on jeebie/cpu/cpu.go's register layout, generalized to the
// tagged-addressing-mode decoder and restated M-cycle timing model.
type CPU struct {
	r   Registers
	bus *mmu.MMU

	ime     imeState
	halted  bool
	stopped bool
	fault   error

	occupiedCycles int

	tracer Tracer
}

// New constructs a CPU wired to bus. Registers start zeroed; a host that
// wants the authentic post-boot-ROM register values should set them with
// SetRegisters before the first Tick.
func New(bus *mmu.MMU) *CPU {
	return &CPU{bus: bus}
}

// SetTracer wires t to receive a CPUState snapshot at the start of every
// subsequent instruction execution. A nil tracer (the default) disables
// tracing entirely, keeping Tick's hot path free of snapshot-building.
func (c *CPU) SetTracer(t Tracer) { c.tracer = t }

// Registers exposes the register file for host/test inspection.
func (c *CPU) Registers() Registers { return c.r }

// SetRegisters overwrites the register file, used by tests and by a host
// seeding the post-boot-ROM state.
func (c *CPU) SetRegisters(r Registers) { c.r = r }

// IsHalted reports whether the CPU is in HALT, for host/test inspection.
func (c *CPU) IsHalted() bool { return c.halted }

// AtFetchBoundary reports whether the next Tick call will attempt to
// decode and execute a new instruction at PC, rather than continue
// waiting out a busy counter. A host-level breakpoint check (§6
// "set_breakpoint") should only fire on this boundary, so it sees each
// address once per visit rather than once per M-cycle of a multi-cycle
// instruction.
func (c *CPU) AtFetchBoundary() bool {
	return c.fault == nil && c.occupiedCycles == 0 && !c.stopped
}

// Fault returns the first undefined-opcode error encountered, if any
// (§4.2: undefined opcodes are fatal). Once set, Tick stops decoding.
func (c *CPU) Fault() error { return c.fault }

// Tick advances the CPU by exactly one M-cycle, per §4.3: continue
// waiting, service a pending interrupt, or decode+execute one
// instruction. The top-level scheduler in §5 calls this once every
// fourth T-cycle.
func (c *CPU) Tick() {
	if c.fault != nil {
		return
	}

	if c.occupiedCycles > 0 {
		c.occupiedCycles--
		return
	}

	if c.stopped {
		return
	}

	if cost := c.serviceInterrupt(); cost > 0 {
		c.occupiedCycles = cost - 1
		return
	}

	if c.halted {
		return
	}

	wasEnabling := c.ime == imeEnabling

	if c.tracer != nil {
		c.tracer.CPUState(c.snapshot())
	}

	instr, err := Decode(c.bus, c.r.PC)
	if err != nil {
		c.fault = err
		return
	}

	cost := c.execute(instr)
	if wasEnabling {
		c.ime = imeEnabled
	}
	if cost > 1 {
		c.occupiedCycles = cost - 1
	}
}

// snapshot builds the CPUState record for the tracer, formatted per §6's
// de-facto test trace (PCMEM is the four bytes starting at PC).
func (c *CPU) snapshot() trace.CPUState {
	return trace.CPUState{
		A: c.r.A, F: c.r.F, B: c.r.B, C: c.r.C, D: c.r.D, E: c.r.E, H: c.r.H, L: c.r.L,
		SP: c.r.SP, PC: c.r.PC,
		PCMem: [4]byte{
			c.bus.Read(c.r.PC),
			c.bus.Read(c.r.PC + 1),
			c.bus.Read(c.r.PC + 2),
			c.bus.Read(c.r.PC + 3),
		},
	}
}

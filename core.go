// Package dmgcore wires the CPU, MMU and PPU into the cooperative
// scheduler described in §2/§5: four T-cycles make one M-cycle, and on
// every T-cycle the timer and PPU advance before the CPU takes its
// once-per-four turn. This is the package's only exported entry point
// surface (§6 "Host entry points"); cpu/mmu/ppu stay importable on their
// own for anyone who wants a narrower dependency.
//
// Grounded on jeebie/core.go's Emulator/RunUntilFrame, restated as an
// explicit per-T-cycle tick instead of a cycles-returned-then-replayed
// loop, since §5 requires the timer/PPU/CPU interleaving to be
// observable at T-cycle granularity rather than batched after the fact.
package dmgcore

import (
	"github.com/valerio/dmgcore/cpu"
	"github.com/valerio/dmgcore/mmu"
	"github.com/valerio/dmgcore/ppu"
	"github.com/valerio/dmgcore/serial"
	"github.com/valerio/dmgcore/trace"
)

// postBootRegisters is the fixed register state a DMG is left in once the
// boot ROM hands off control, §3.
var postBootRegisters = cpu.Registers{
	A: 0x01, F: 0xB0,
	B: 0x00, C: 0x13,
	D: 0x00, E: 0xD8,
	H: 0x01, L: 0x4D,
	SP: 0xFFFE,
	PC: 0x0100,
}

// Core is the top-level handle a host drives: one CPU, one MMU and one
// PPU, ticked together one M-cycle at a time. It owns every mutable
// piece of emulator state for the run's duration (§3 "Ownership").
type Core struct {
	cpu *cpu.CPU
	mem *mmu.MMU
	gpu *ppu.PPU

	serialBuf *serial.Buffer

	breakpoints map[uint16]bool
	lastMode    ppu.Mode
	fault       error

	extraSink trace.Sink
	strict    bool
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithSink wires an additional trace.Sink (e.g. a serial.LineLogger)
// alongside the Core's own serial.Buffer, so a host
// can observe CPU-state traces and printable serial output without
// losing the raw byte buffer SerialBuffer() exposes.
func WithSink(sink trace.Sink) Option {
	return func(c *Core) { c.extraSink = sink }
}

// WithStrictAddressing makes FEA0-FEFF accesses latch a fault instead of
// the lenient silently-ignored behavior (§7).
func WithStrictAddressing() Option {
	return func(c *Core) { c.strict = true }
}

// New constructs a Core around the given cartridge Mapper (§6 "Cartridge
// provider"), with every register initialized to the post-boot-ROM state
// and the I/O block at its fixed post-boot image. ROM loading from disk
// is explicitly out of the core's scope (§1); callers construct a Mapper
// (mmu.NewRomOnly, mmu.NewMBC1) from bytes they already have.
func New(cartridge mmu.Mapper, opts ...Option) *Core {
	c := &Core{
		serialBuf:   serial.NewBuffer(),
		breakpoints: make(map[uint16]bool),
		lastMode:    ppu.ModeVBlank,
	}
	for _, opt := range opts {
		opt(c)
	}

	sink := trace.Sink(c.serialBuf)
	if c.extraSink != nil {
		sink = trace.Tee(c.serialBuf, c.extraSink)
	}

	mmuOpts := []mmu.Option{mmu.WithMapper(cartridge), mmu.WithTraceSink(sink)}
	if c.strict {
		mmuOpts = append(mmuOpts, mmu.WithStrictAddressing())
	}
	c.mem = mmu.New(mmuOpts...)

	c.cpu = cpu.New(c.mem)
	c.cpu.SetRegisters(postBootRegisters)
	c.cpu.SetTracer(sink)
	c.gpu = ppu.New(c.mem)

	return c
}

// TickResult reports what happened during one Tick call, so a host loop
// can react without peeking at Core's internals.
type TickResult struct {
	// VBlankEdge is true the one M-cycle on which the PPU entered V-blank
	// (LY transitions to 144), the natural point to hand the framebuffer
	// to a host for display (§6 "Framebuffer").
	VBlankEdge bool
	// BreakpointHit is true if the instruction about to be fetched this
	// M-cycle sits at an address registered with SetBreakpoint.
	BreakpointHit bool
	// Fault is non-nil the M-cycle a fatal error (undefined opcode, or a
	// strict-mode address violation) was first observed. Once set, every
	// subsequent Tick call is a no-op returning the same Fault (§7).
	Fault error
}

// Tick advances the core by one M-cycle-worth of T-cycles (§6 "tick()"):
// four T-cycles, each ticking the timer then the PPU, with the CPU
// advancing once every fourth T-cycle. This ordering is the contract in
// §5: interrupts the timer or PPU raise during these four T-cycles
// become visible to the CPU's own M-cycle advance immediately after.
func (c *Core) Tick() TickResult {
	if c.fault != nil {
		return TickResult{Fault: c.fault}
	}

	pc := c.cpu.Registers().PC
	breakpointHit := c.breakpoints[pc] && c.cpu.AtFetchBoundary()

	var vblankEdge bool
	for t := 0; t < 4; t++ {
		c.mem.Tick()
		c.gpu.Tick()

		mode := c.gpu.Mode()
		if mode == ppu.ModeVBlank && c.lastMode != ppu.ModeVBlank {
			vblankEdge = true
		}
		c.lastMode = mode
	}

	c.cpu.Tick()

	if err := c.cpu.Fault(); err != nil {
		c.fault = err
	} else if err := c.mem.Fault(); err != nil {
		c.fault = err
	}

	return TickResult{VBlankEdge: vblankEdge, BreakpointHit: breakpointHit, Fault: c.fault}
}

// FrameBuffer returns the 160x144 RGBA8888 output surface (§6
// "Framebuffer"), updated incrementally as the PPU renders.
func (c *Core) FrameBuffer() []byte {
	return c.gpu.FrameBuffer().Pixels()
}

// SetBreakpoint registers addr so the TickResult's BreakpointHit field is
// set the M-cycle the CPU is about to fetch an instruction there. The
// core keeps running; a host that wants to actually pause stops calling
// Tick, per the cooperative-cancellation model in §5.
func (c *Core) SetBreakpoint(address uint16) {
	c.breakpoints[address] = true
}

// ClearBreakpoint removes a previously registered breakpoint.
func (c *Core) ClearBreakpoint(address uint16) {
	delete(c.breakpoints, address)
}

// SerialBuffer returns every byte the core has emitted over the
// serial-byte test-ROM side channel so far (§6 "Serial byte channel").
func (c *Core) SerialBuffer() []byte {
	return c.serialBuf.Bytes()
}

// PressButton and ReleaseButton deliver joypad input (§1 Non-goals: no
// windowing layer lives in the core to generate these from a keyboard).
func (c *Core) PressButton(btn mmu.Button)   { c.mem.PressButton(btn) }
func (c *Core) ReleaseButton(btn mmu.Button) { c.mem.ReleaseButton(btn) }

// Registers exposes the CPU's register file for host/test inspection.
func (c *Core) Registers() cpu.Registers { return c.cpu.Registers() }

// Fault returns the first fatal error the core has latched, if any.
func (c *Core) Fault() error { return c.fault }

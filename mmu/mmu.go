// Package mmu implements the Memory Map (§4.1): the address decoder that
// owns WRAM, VRAM, OAM, HRAM, the I/O register file, the IE latch, and a
// reference to a cartridge Mapper.
package mmu

import (
	"errors"

	"github.com/valerio/dmgcore/addr"
	"github.com/valerio/dmgcore/trace"
)

// ErrUnusableRange is latched when strict mode is enabled and the core
// accesses FEA0-FEFF (§7 "Address-range violation").
var ErrUnusableRange = errors.New("mmu: access to unusable range FEA0-FEFF")

// MMU is the unified 16-bit address-space router.
type MMU struct {
	mapper Mapper

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	hram [0x7F]byte
	ie   byte

	io     *ioBlock
	timer  *Timer
	joypad *joypad

	sink   trace.Sink
	strict bool
	fault  error
}

// Option configures an MMU at construction time.
type Option func(*MMU)

// WithMapper wires a cartridge provider in; without one, ROM reads return
// 0xFF as if no cartridge were inserted.
func WithMapper(m Mapper) Option {
	return func(mmu *MMU) { mmu.mapper = m }
}

// WithTraceSink wires the Logger boundary (§6) that receives serial bytes
// emitted over the test-ROM side-channel.
func WithTraceSink(sink trace.Sink) Option {
	return func(mmu *MMU) { mmu.sink = sink }
}

// WithStrictAddressing makes accesses to FEA0-FEFF latch ErrUnusableRange
// instead of silently returning 0xFF/ignoring the write (§7).
func WithStrictAddressing() Option {
	return func(mmu *MMU) { mmu.strict = true }
}

// New constructs an MMU with its RAM regions zeroed and the I/O block at
// its fixed post-boot image (§6).
func New(opts ...Option) *MMU {
	m := &MMU{
		io:     newIOBlock(),
		timer:  NewTimer(),
		joypad: newJoypad(),
		sink:   trace.Nop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fault returns the first latched strict-mode address-range violation, if
// any.
func (m *MMU) Fault() error {
	return m.fault
}

// Tick advances the timer unit by one T-cycle and raises addr.Timer on
// overflow, per §4.5. The top-level scheduler calls this once per T-cycle,
// before ticking the PPU, per §5's ordering contract.
func (m *MMU) Tick() {
	if m.timer.Tick() {
		m.RequestInterrupt(addr.Timer)
	}
}

// RequestInterrupt sets the given bit in IF (§3).
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	flags := m.Read(addr.IF)
	m.io.write(addr.IF, (flags|byte(interrupt))&0x1F)
}

// PressButton and ReleaseButton deliver joypad input. There is no
// windowing layer in this core to call them from a keyboard (§1
// Non-goals); a host wires them to whatever input source it has.
func (m *MMU) PressButton(btn Button) {
	if m.joypad.press(btn) {
		m.RequestInterrupt(addr.Joypad)
	}
}

func (m *MMU) ReleaseButton(btn Button) {
	m.joypad.release(btn)
}

// SetLY is the PPU's internal bypass for writing the current scanline
// into the LY register. CPU-facing writes through Write are ignored
// (§3); only the PPU's own scan-line advance is allowed to change it.
func (m *MMU) SetLY(ly byte) {
	m.io.write(addr.LY, ly)
}

// Read returns the byte at address, routed per the table in §4.1.
func (m *MMU) Read(address uint16) byte {
	switch {
	case address <= addr.ROMEnd:
		return m.readMapper(address)
	case address <= addr.VRAMEnd:
		return m.vram[address-addr.VRAMStart]
	case address <= addr.ExtRAMEnd:
		return m.readMapper(address)
	case address <= addr.WRAMEnd:
		return m.wram[address-addr.WRAMStart]
	case address <= addr.EchoEnd:
		return m.wram[address-addr.EchoStart]
	case address <= addr.OAMEnd:
		return m.oam[address-addr.OAMStart]
	case address <= addr.UnusedEnd:
		if m.strict {
			m.fault = ErrUnusableRange
		}
		return 0xFF
	case address <= addr.IOEnd:
		return m.readIO(address)
	case address <= addr.HRAMEnd:
		return m.hram[address-addr.HRAMStart]
	default: // 0xFFFF
		return m.ie
	}
}

// Write routes a byte write per §4.1.
func (m *MMU) Write(address uint16, value byte) {
	switch {
	case address <= addr.ROMEnd:
		if m.mapper != nil {
			m.mapper.Write(address, value)
		}
	case address <= addr.VRAMEnd:
		m.vram[address-addr.VRAMStart] = value
	case address <= addr.ExtRAMEnd:
		if m.mapper != nil {
			m.mapper.Write(address, value)
		}
	case address <= addr.WRAMEnd:
		m.wram[address-addr.WRAMStart] = value
	case address <= addr.EchoEnd:
		m.wram[address-addr.EchoStart] = value
	case address <= addr.OAMEnd:
		m.oam[address-addr.OAMStart] = value
	case address <= addr.UnusedEnd:
		if m.strict {
			m.fault = ErrUnusableRange
		}
		// lenient: ignored
	case address <= addr.IOEnd:
		m.writeIO(address, value)
	case address <= addr.HRAMEnd:
		m.hram[address-addr.HRAMStart] = value
	default: // 0xFFFF
		m.ie = value & 0x1F
	}
}

func (m *MMU) readMapper(address uint16) byte {
	if m.mapper == nil {
		return 0xFF
	}
	return m.mapper.Read(address)
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.joypad.register()
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		return m.io.read(address) | 0xE0
	default:
		return m.io.read(address)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		m.joypad.write(value)
	case addr.SB:
		m.io.write(address, value)
	case addr.SC:
		m.io.write(address, value)
		// Serial byte channel (§6): SC=0x81 triggers an immediate,
		// synchronous transfer of SB to the trace sink.
		if value == 0x81 {
			m.sink.SerialByte(m.io.read(addr.SB))
			m.io.write(addr.SC, 0)
		}
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
	case addr.LY:
		// LY is read-only; writes are ignored (§3).
	case addr.IF:
		m.io.write(address, value&0x1F)
	case addr.DMA:
		m.io.write(address, value)
		m.doDMA(value)
	default:
		m.io.write(address, value)
	}
}

// doDMA performs the OAM DMA transfer (supplemented per SPEC_FULL.md,
// grounded on jeebie's addr.DMA handling): copies 160 bytes starting at
// value<<8 into OAM. Real hardware takes 160 M-cycles and locks most of
// the bus meanwhile; that sub-instruction arbitration is explicitly out
// of scope (§1), so this core performs the copy instantaneously.
func (m *MMU) doDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.oam[i] = m.Read(source + i)
	}
}

// ReadWord reads a little-endian 16-bit value.
func (m *MMU) ReadWord(address uint16) uint16 {
	low := m.Read(address)
	high := m.Read(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// WriteWord writes a little-endian 16-bit value as two byte writes, low
// byte first. This is the documented behavior for the forbidden case of a
// word write landing in the I/O block (§4.1): rather than fail fast, it
// decomposes into the two byte writes an equivalent sequence of 8-bit
// stores would have produced, so e.g. `LD (imm16), SP` targeting an I/O
// address behaves exactly like two LDH-style byte writes.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.Write(address, byte(value))
	m.Write(address+1, byte(value>>8))
}

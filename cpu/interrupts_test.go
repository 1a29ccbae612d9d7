package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/dmgcore/addr"
	"github.com/valerio/dmgcore/mmu"
)

func newEnabledCPU(romAt0x100 []byte) (*CPU, *mmu.MMU) {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], romAt0x100)
	bus := mmu.New(mmu.WithMapper(mmu.NewRomOnly(rom)))
	c := New(bus)
	r := c.Registers()
	r.PC = 0x0100
	r.SP = 0xFFFE
	c.SetRegisters(r)
	c.ime = imeEnabled
	return c, bus
}

// TestInterruptDispatchPushesResumeAddress covers invariant 5.
func TestInterruptDispatchPushesResumeAddress(t *testing.T) {
	c, bus := newEnabledCPU([]byte{0x00, 0x00}) // two NOPs at 0x0100

	bus.Write(addr.IE, byte(addr.VBlank))
	bus.RequestInterrupt(addr.VBlank)

	c.Tick() // dispatch happens before the next fetch

	assert.Equal(t, uint16(0x40), c.Registers().PC)
	assert.Equal(t, uint16(0x0100), bus.ReadWord(0xFFFC))
}

// TestInterruptPriorityOrder covers the VBlank > LCDStat > ... > Joypad
// dispatch order from §4.3.
func TestInterruptPriorityOrder(t *testing.T) {
	c, bus := newEnabledCPU([]byte{0x00})

	bus.Write(addr.IE, 0x1F)
	bus.RequestInterrupt(addr.Joypad)
	bus.RequestInterrupt(addr.Timer)
	bus.RequestInterrupt(addr.VBlank)

	c.Tick()

	assert.Equal(t, addr.VBlank.Vector(), c.Registers().PC)
}

// TestEIDelaysIMEByOneInstruction covers §4.3's EI-ordering rule.
func TestEIDelaysIMEByOneInstruction(t *testing.T) {
	c, bus := newEnabledCPU([]byte{0xFB, 0x00}) // EI, NOP
	c.ime = imeDisabled

	bus.Write(addr.IE, byte(addr.VBlank))
	bus.RequestInterrupt(addr.VBlank)

	c.Tick() // EI executes; IME -> Enabling, interrupt not yet dispatched
	assert.Equal(t, uint16(0x0101), c.Registers().PC)
	assert.Equal(t, imeEnabling, c.ime)

	c.Tick() // NOP at 0x0101 runs with IME still Enabling; IME -> Enabled once it completes
	// dispatch is only checked once per Tick, before decode, so the
	// interrupt fires on the tick after.
	c.Tick()
	assert.Equal(t, addr.VBlank.Vector(), c.Registers().PC)
}

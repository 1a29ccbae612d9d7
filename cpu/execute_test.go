package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/dmgcore/mmu"
)

func newBareCPU() *CPU {
	rom := make([]byte, 0x8000)
	bus := mmu.New(mmu.WithMapper(mmu.NewRomOnly(rom)))
	return New(bus)
}

func TestALUAddFlagRules(t *testing.T) {
	c := newBareCPU()
	r := c.Registers()
	r.A = 0x0F
	c.SetRegisters(r)

	c.alu(MnemADD, 0x01)

	got := c.Registers()
	assert.Equal(t, uint8(0x10), got.A)
	assert.False(t, got.flag(flagZ))
	assert.False(t, got.flag(flagN))
	assert.True(t, got.flag(flagH))
	assert.False(t, got.flag(flagC))
}

func TestALUSubSetsBorrowFlags(t *testing.T) {
	c := newBareCPU()
	r := c.Registers()
	r.A = 0x10
	c.SetRegisters(r)

	c.alu(MnemSUB, 0x01)

	got := c.Registers()
	assert.Equal(t, uint8(0x0F), got.A)
	assert.True(t, got.flag(flagN))
	assert.True(t, got.flag(flagH))
	assert.False(t, got.flag(flagC))
}

func TestALUCPDoesNotWriteA(t *testing.T) {
	c := newBareCPU()
	r := c.Registers()
	r.A = 0x05
	c.SetRegisters(r)

	c.alu(MnemCP, 0x05)

	got := c.Registers()
	assert.Equal(t, uint8(0x05), got.A)
	assert.True(t, got.flag(flagZ))
}

func TestALUAndForcesHalfCarry(t *testing.T) {
	c := newBareCPU()
	c.alu(MnemAND, 0xFF)
	got := c.Registers()
	assert.True(t, got.flag(flagH))
	assert.False(t, got.flag(flagC))
}

func TestAccumulatorRotateForcesZeroFlag(t *testing.T) {
	c := newBareCPU()
	r := c.Registers()
	r.A = 0x00
	c.SetRegisters(r)

	c.r.A = c.rlc(c.r.A)
	c.r.setFlag(flagZ, false) // mirrors execute()'s RLCA handling

	got := c.Registers()
	assert.False(t, got.flag(flagZ))
}

func TestDAAAfterBCDAdd(t *testing.T) {
	c := newBareCPU()
	r := c.Registers()
	r.A = 0x09
	c.SetRegisters(r)

	c.alu(MnemADD, 0x01) // 0x09 + 0x01 = 0x0A, H clear, low nibble > 9
	c.daa()

	got := c.Registers()
	assert.Equal(t, uint8(0x10), got.A)
}

func TestAddressingModeSizeMatchesBytesConsumed(t *testing.T) {
	m := &flatMem{}
	cases := []struct {
		bytes []byte
		size  uint16
	}{
		{[]byte{0x00}, 1},             // NOP
		{[]byte{0x06, 0x01}, 2},       // LD B, imm8
		{[]byte{0x21, 0x34, 0x12}, 3}, // LD HL, imm16
		{[]byte{0xCB, 0x7C}, 2},       // BIT 7, H
		{[]byte{0xC3, 0x00, 0x01}, 3}, // JP imm16
	}
	for _, tc := range cases {
		load(m, 0, tc.bytes...)
		instr, err := Decode(m, 0)
		assert.NoError(t, err)
		assert.Equal(t, tc.size, instr.Size)
	}
}

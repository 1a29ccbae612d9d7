package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type flatMem struct {
	data [0x10000]byte
}

func (m *flatMem) Read(a uint16) byte     { return m.data[a] }
func (m *flatMem) Write(a uint16, v byte) { m.data[a] = v }

func load(m *flatMem, at uint16, bytes ...byte) {
	for i, b := range bytes {
		m.data[at+uint16(i)] = b
	}
}

func TestDecodeNop(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0x00)
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemNop, instr.Mnemonic)
	assert.Equal(t, uint16(1), instr.Size)
}

func TestDecodeLDr16Imm16(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0x21, 0x34, 0x12) // LD HL, 0x1234
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemLD, instr.Mnemonic)
	assert.Equal(t, ModeWordRegister, instr.Dst.Kind)
	assert.Equal(t, Reg16HL, instr.Dst.R16)
	assert.Equal(t, uint16(0x1234), instr.Target)
	assert.Equal(t, uint16(3), instr.Size)
}

func TestDecodeLDr8r8AndHaltException(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0x41) // LD B, C
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemLD, instr.Mnemonic)
	assert.Equal(t, RegB, instr.Dst.R8)
	assert.Equal(t, RegC, instr.Src.R8)

	load(m, 1, 0x76) // HALT, the one exception in block 1
	instr2, err := Decode(m, 1)
	assert.NoError(t, err)
	assert.Equal(t, MnemHALT, instr2.Mnemonic)
}

func TestDecodeALUReg(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0x80) // ADD A, B
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemADD, instr.Mnemonic)
	assert.Equal(t, RegB, instr.Src.R8)
}

func TestDecodeCBBit(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0xCB, 0x7C) // BIT 7, H
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemBIT, instr.Mnemonic)
	assert.Equal(t, uint8(7), instr.Src.Bit)
	assert.Equal(t, RegH, instr.Dst.R8)
	assert.Equal(t, uint16(2), instr.Size)
}

func TestDecodeUndefinedOpcodeIsFatal(t *testing.T) {
	m := &flatMem{}
	for _, op := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		load(m, 0, op)
		_, err := Decode(m, 0)
		assert.Error(t, err)
		var undef *UndefinedOpcodeError
		assert.ErrorAs(t, err, &undef)
	}
}

func TestDecodeJRCond(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0x28, 0x05) // JR Z, +5
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemJRCC, instr.Mnemonic)
	assert.Equal(t, CondZ, instr.Cond)
	assert.Equal(t, uint16(5), instr.Target)
}

func TestDecodeRST(t *testing.T) {
	m := &flatMem{}
	load(m, 0, 0xEF) // RST 28h
	instr, err := Decode(m, 0)
	assert.NoError(t, err)
	assert.Equal(t, MnemRST, instr.Mnemonic)
	assert.Equal(t, uint16(0x28), instr.RSTVector)
}

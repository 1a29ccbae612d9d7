package mmu

import "github.com/valerio/dmgcore/addr"

// postBootImage is the fixed DMG post-boot-ROM state of FF00-FF7F (§6).
// The timer and joypad registers are re-derived from their components on
// read, so their entries here are never seen; the ioBlock array backs
// every other byte in the block, including the serial and PPU registers
// and the audio registers this core doesn't emulate but still exposes as
// plain, inert storage.
var postBootImage = map[uint16]byte{
	0xFF00: 0xCF,
	0xFF02: 0x7E,
	0xFF07: 0xF8,
	0xFF0F: 0xE1,
	0xFF10: 0x80,
	0xFF11: 0xBF,
	0xFF12: 0xF3,
	0xFF13: 0xFF,
	0xFF14: 0xBF,
	0xFF16: 0x3F,
	0xFF18: 0xFF,
	0xFF19: 0xBF,
	0xFF1A: 0x7F,
	0xFF1B: 0xFF,
	0xFF1C: 0x9F,
	0xFF1D: 0xFF,
	0xFF1E: 0xBF,
	0xFF20: 0xFF,
	0xFF23: 0xBF,
	0xFF24: 0x77,
	0xFF25: 0xF3,
	0xFF26: 0xF1,
	0xFF40: 0x91,
	0xFF41: 0x81,
	0xFF44: 0x90,
	0xFF46: 0xFF,
	0xFF47: 0xFC,
}

// ioBlock is the 128-byte backing store for FF00-FF7F.
type ioBlock struct {
	data [128]byte
}

func newIOBlock() *ioBlock {
	io := &ioBlock{}
	for i := range io.data {
		io.data[i] = 0xFF
	}
	for address, value := range postBootImage {
		io.data[address-addr.IOStart] = value
	}
	return io
}

func (b *ioBlock) read(address uint16) byte {
	return b.data[address-addr.IOStart]
}

func (b *ioBlock) write(address uint16, value byte) {
	b.data[address-addr.IOStart] = value
}

package ppu

import (
	"github.com/valerio/dmgcore/addr"
	"github.com/valerio/dmgcore/bit"
)

// Sprite is one of the 40 OAM entries, raw field values as stored in OAM
// (y/x are not pre-adjusted for the +16/+8 hardware offset).
type Sprite struct {
	Y, X, Tile, Flags uint8
	OAMIndex          int
}

func (s Sprite) paletteOBP1() bool { return bit.IsSet(4, s.Flags) }
func (s Sprite) flipX() bool       { return bit.IsSet(5, s.Flags) }
func (s Sprite) flipY() bool       { return bit.IsSet(6, s.Flags) }
func (s Sprite) behindBG() bool    { return bit.IsSet(7, s.Flags) }

// spriteHeight returns 16 if LCDC bit 2 (OBJ size) is set, else 8.
func spriteHeight(lcdc byte) int {
	if bit.IsSet(2, lcdc) {
		return 16
	}
	return 8
}

// scanOAMEntry inspects OAM entry index and appends it to buf if it's
// visible on scanline ly and buf still has room (hardware caps at 10
// sprites per scanline, §4.4). Mirrors the per-two-dots progressive scan
// the real PPU performs during mode 2.
func scanOAMEntry(mem MemoryReader, index int, ly int, lcdc byte, buf *[]Sprite) {
	base := addr.OAMStart + uint16(index*4)
	y := mem.Read(base)
	x := mem.Read(base + 1)
	tile := mem.Read(base + 2)
	flags := mem.Read(base + 3)

	height := spriteHeight(lcdc)

	visible := x != 0 && ly+16 >= int(y) && ly+16 < int(y)+height
	if !visible {
		return
	}
	if len(*buf) >= 10 {
		return
	}

	*buf = append(*buf, Sprite{Y: y, X: x, Tile: tile, Flags: flags, OAMIndex: index})
}

// Package ppu implements the pixel-pipeline state machine (§4.4): a
// 160x144 framebuffer produced by scanning sprite OAM, fetching
// background/window tiles from VRAM, merging two pixel FIFOs, and driving
// OAM-scan/pixel-transfer/H-blank/V-blank mode transitions synchronously
// with the CPU clock.
package ppu

import (
	"github.com/valerio/dmgcore/addr"
	"github.com/valerio/dmgcore/bit"
	"github.com/valerio/dmgcore/mmu"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModePixelTransfer
)

const (
	oamScanDots   = 80
	totalLineDots = 456
	totalLines    = 154
	vblankStartLY = 144
)

// PPU owns the dot-accurate pixel pipeline. It holds a non-owning
// reference to the memory map for the duration of each tick, consistent
// with the ownership model in §9: the core passes the same *mmu.MMU into
// both cpu and ppu, and neither stores it across ticks beyond this field
// (which is set once at construction and never reassigned).
type PPU struct {
	bus *mmu.MMU
	fb  *FrameBuffer

	mode Mode
	dot  int // position within the current 456-dot scanline
	line int // LY mirror, 0-153

	windowLine      int // independent window-row counter
	windowTriggered bool

	x         int // output column currently being composed, 0-159
	bgTileCol int // next BG/WIN tile column to fetch

	spriteBuffer   []Sprite
	spritesFetched []bool

	bgFIFO  pixelFIFO
	objFIFO pixelFIFO
}

// New constructs a PPU wired to bus, starting in V-blank the way a
// freshly booted DMG's LCD does before the first frame is scanned out.
func New(bus *mmu.MMU) *PPU {
	p := &PPU{
		bus:  bus,
		fb:   NewFrameBuffer(),
		mode: ModeVBlank,
		line: vblankStartLY,
	}
	p.spriteBuffer = make([]Sprite, 0, 10)
	return p
}

// FrameBuffer returns the PPU's output surface.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

// Tick advances the PPU by one T-cycle/dot (§5: ticked once per T-cycle,
// after the timer and before the CPU's M-cycle advance on every fourth
// tick).
func (p *PPU) Tick() {
	lcdc := p.bus.Read(addr.LCDC)
	if !bit.IsSet(7, lcdc) {
		p.disabledTick()
		return
	}

	p.dot++
	switch p.mode {
	case ModeOAMScan:
		p.tickOAMScan()
	case ModePixelTransfer:
		p.tickPixelTransfer(lcdc)
	case ModeHBlank:
		p.tickHBlank()
	case ModeVBlank:
		p.tickVBlank()
	}
}

// disabledTick implements the "LCD-disabled behavior" in §4.4: LY resets
// to 0, mode resets to 0, rendering is suspended, but the CPU and timer
// (driven independently by the core) keep running.
func (p *PPU) disabledTick() {
	p.line = 0
	p.dot = 0
	p.setMode(ModeHBlank)
	p.setLY(0)
	p.windowLine = 0
}

func (p *PPU) tickOAMScan() {
	// Every two dots inspects one of the 40 OAM entries (§4.4).
	if p.dot == 1 {
		p.spriteBuffer = p.spriteBuffer[:0]
	}
	if p.dot%2 == 1 && p.dot <= oamScanDots {
		index := (p.dot - 1) / 2
		lcdc := p.bus.Read(addr.LCDC)
		scanOAMEntry(p.bus, index, p.line, lcdc, &p.spriteBuffer)
	}
	if p.dot >= oamScanDots {
		p.beginPixelTransfer()
	}
}

func (p *PPU) beginPixelTransfer() {
	p.setMode(ModePixelTransfer)
	p.bgFIFO.clear()
	p.objFIFO.clear()
	p.x = 0
	p.bgTileCol = 0
	p.windowTriggered = false
	p.spritesFetched = make([]bool, len(p.spriteBuffer))
}

// tickPixelTransfer composes one output pixel per dot once both FIFOs
// have pixels ready, matching §4.4's "pop one combined pixel per dot"
// contract. The BG/WIN fetch for a tile's 8 pixels and any sprite fetch
// triggered at this X both happen eagerly when the BG FIFO runs dry,
// which folds the fetcher's multi-dot tile/data-low/data-high stall into
// a single dot rather than three (documented simplification, DESIGN.md).
func (p *PPU) tickPixelTransfer(lcdc byte) {
	if p.x >= Width {
		p.setMode(ModeHBlank)
		return
	}

	p.maybeEnterWindow(lcdc)

	if p.bgFIFO.empty() {
		p.fetchBGTile(lcdc)
	}

	p.maybeFetchSprite(lcdc)

	if p.bgFIFO.empty() {
		return
	}

	bgPix := p.bgFIFO.pop()
	var objPix pixel
	haveObj := false
	if !p.objFIFO.empty() {
		objPix = p.objFIFO.pop()
		haveObj = true
	}

	shade := p.resolvePixel(bgPix, objPix, haveObj)
	p.fb.SetShade(p.x, p.line, shade)
	p.x++

	if p.x >= Width {
		p.setMode(ModeHBlank)
	}
}

// resolvePixel applies the OBJ-wins-unless-transparent-or-BG-priority
// rule from §4.4.
func (p *PPU) resolvePixel(bg, obj pixel, haveObj bool) uint8 {
	bgp := p.bus.Read(addr.BGP)
	bgShade := applyPalette(bgp, bg.color)

	if !haveObj || obj.color == 0 {
		return bgShade
	}
	if obj.priority && bg.color != 0 {
		return bgShade
	}

	palette := p.bus.Read(addr.OBP0)
	if obj.obp1 {
		palette = p.bus.Read(addr.OBP1)
	}
	return applyPalette(palette, obj.color)
}

func applyPalette(paletteReg byte, colorIndex uint8) uint8 {
	return (paletteReg >> (colorIndex * 2)) & 0x03
}

// maybeEnterWindow switches the BG fetcher to the window tile map once
// the scan position reaches (WX-7, WY), per §4.4.
func (p *PPU) maybeEnterWindow(lcdc byte) {
	if p.windowTriggered || !bit.IsSet(5, lcdc) {
		return
	}
	wy := p.bus.Read(addr.WY)
	wx := p.bus.Read(addr.WX)
	if p.line >= int(wy) && p.x+7 >= int(wx) {
		p.windowTriggered = true
		p.bgFIFO.clear()
		p.bgTileCol = 0
	}
}

// fetchBGTile fetches 8 BG or window pixels into bgFIFO for the current
// tile column.
func (p *PPU) fetchBGTile(lcdc byte) {
	var tileMapBase uint16
	var row, col int

	if p.windowTriggered {
		if bit.IsSet(6, lcdc) {
			tileMapBase = addr.TileMap1
		} else {
			tileMapBase = addr.TileMap0
		}
		row = p.windowLine % 8
		col = p.bgTileCol
		tileMapBase += uint16((p.windowLine/8)*32) + uint16(col)
	} else {
		if bit.IsSet(3, lcdc) {
			tileMapBase = addr.TileMap1
		} else {
			tileMapBase = addr.TileMap0
		}
		scx := p.bus.Read(addr.SCX)
		scy := p.bus.Read(addr.SCY)
		bgY := (p.line + int(scy)) & 0xFF
		bgX := (int(scx)/8 + p.bgTileCol) & 0x1F
		row = bgY % 8
		tileMapBase += uint16((bgY/8)*32) + uint16(bgX)
	}

	tileIndex := p.bus.Read(tileMapBase)
	unsigned := bit.IsSet(4, lcdc)
	addrRow := BGTileDataAddr(tileIndex, row, unsigned)
	tr := FetchTileRow(p.bus, addrRow)

	for i := 0; i < 8; i++ {
		p.bgFIFO.push(pixel{color: tr.GetPixel(i)})
	}
	p.bgTileCol++
}

// maybeFetchSprite fetches a sprite's row into objFIFO once the scan
// position reaches its X, per §4.4.
func (p *PPU) maybeFetchSprite(lcdc byte) {
	for i := range p.spriteBuffer {
		if p.spritesFetched[i] {
			continue
		}
		s := p.spriteBuffer[i]
		if int(s.X) != p.x+8 {
			continue
		}
		p.spritesFetched[i] = true

		height := spriteHeight(lcdc)
		row := p.line + 16 - int(s.Y)
		if s.flipY() {
			row = height - 1 - row
		}
		tile := s.Tile
		if height == 16 {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}
		tr := FetchTileRow(p.bus, ObjTileDataAddr(tile, row))

		for px := 0; px < 8; px++ {
			var c uint8
			if s.flipX() {
				c = tr.GetPixelFlipped(px)
			} else {
				c = tr.GetPixel(px)
			}
			np := pixel{color: c, obp1: s.paletteOBP1(), priority: s.behindBG()}
			p.mergeSpritePixel(px, np)
		}
	}
}

// mergeSpritePixel writes sprite pixel index idx into objFIFO, growing it
// as needed and keeping the first non-transparent sprite found for any
// given slot (OAM-index priority, since spriteBuffer is scanned in index
// order).
func (p *PPU) mergeSpritePixel(idx int, np pixel) {
	for p.objFIFO.len <= idx {
		p.objFIFO.push(pixel{color: 0})
	}
	if p.objFIFO.buf[idx].color == 0 {
		p.objFIFO.buf[idx] = np
	}
}

func (p *PPU) tickHBlank() {
	if p.dot >= totalLineDots {
		p.endOfLine()
	}
}

func (p *PPU) tickVBlank() {
	if p.dot >= totalLineDots {
		p.endOfLine()
	}
}

// endOfLine advances LY, wraps the frame at 154 lines, and switches mode
// per the schedule in §4.4.
func (p *PPU) endOfLine() {
	p.dot = 0
	p.line++

	if p.line == vblankStartLY {
		p.setLY(p.line)
		p.setMode(ModeVBlank)
		p.bus.RequestInterrupt(addr.VBlank)
		return
	}

	if p.line >= totalLines {
		p.line = 0
		p.windowLine = 0
	}

	p.setLY(p.line)
	if p.line < vblankStartLY {
		p.setMode(ModeOAMScan)
		if p.windowTriggered {
			p.windowLine++
		}
	}
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	stat := p.bus.Read(addr.STAT)
	stat = (stat &^ 0x03) | byte(m)
	p.bus.Write(addr.STAT, stat)
}

func (p *PPU) setLY(ly int) {
	p.line = ly
	p.bus.SetLY(byte(ly))
}

// Mode reports the PPU's current rendering stage, for tests/introspection.
func (p *PPU) Mode() Mode { return p.mode }

// LY reports the current scanline, for tests/introspection.
func (p *PPU) LY() int { return p.line }

// Dot reports the current position within the 456-dot scanline.
func (p *PPU) Dot() int { return p.dot }

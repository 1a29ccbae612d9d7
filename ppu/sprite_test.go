package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/dmgcore/addr"
)

type fakeMem struct {
	data [0x10000]byte
}

func (m *fakeMem) Read(a uint16) byte  { return m.data[a] }
func (m *fakeMem) Write(a uint16, v byte) { m.data[a] = v }

func TestScanOAMEntryVisibility(t *testing.T) {
	mem := &fakeMem{}
	base := addr.OAMStart
	mem.data[base] = 20   // Y
	mem.data[base+1] = 10 // X
	mem.data[base+2] = 5  // tile
	mem.data[base+3] = 0  // flags

	var buf []Sprite
	// ly+16 must be in [Y, Y+height): Y=20, height=8 -> ly in [4,12)
	scanOAMEntry(mem, 0, 4, 0x91, &buf)
	assert.Len(t, buf, 1)
	assert.Equal(t, uint8(20), buf[0].Y)

	buf = nil
	scanOAMEntry(mem, 0, 3, 0x91, &buf)
	assert.Empty(t, buf)
}

func TestScanOAMEntryXZeroHidden(t *testing.T) {
	mem := &fakeMem{}
	base := addr.OAMStart
	mem.data[base] = 20
	mem.data[base+1] = 0 // X=0 hides the sprite per hardware quirk
	var buf []Sprite
	scanOAMEntry(mem, 0, 4, 0x91, &buf)
	assert.Empty(t, buf)
}

func TestScanOAMEntryCapsAtTen(t *testing.T) {
	mem := &fakeMem{}
	buf := make([]Sprite, 10)
	for i := range buf {
		buf[i] = Sprite{Y: 20, X: 10}
	}
	base := addr.OAMStart + 10*4
	mem.data[base] = 20
	mem.data[base+1] = 10
	scanOAMEntry(mem, 10, 4, 0x91, &buf)
	assert.Len(t, buf, 10)
}

func TestSpriteFlagAccessors(t *testing.T) {
	s := Sprite{Flags: 0xF0}
	assert.True(t, s.behindBG())
	assert.True(t, s.flipY())
	assert.True(t, s.flipX())
	assert.True(t, s.paletteOBP1())

	s2 := Sprite{Flags: 0x00}
	assert.False(t, s2.behindBG())
	assert.False(t, s2.flipY())
	assert.False(t, s2.flipX())
	assert.False(t, s2.paletteOBP1())
}

func TestSpriteHeight(t *testing.T) {
	assert.Equal(t, 8, spriteHeight(0x00))
	assert.Equal(t, 16, spriteHeight(0x04))
}

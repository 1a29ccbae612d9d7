package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileRowGetPixel(t *testing.T) {
	// Low=0b10000001, High=0b11000000 -> leftmost pixel color 3, the next
	// one 2 (high plane only), the middle pixels 0, and the rightmost 1
	// (low plane only).
	r := TileRow{Low: 0x81, High: 0xC0}
	assert.Equal(t, uint8(3), r.GetPixel(0))
	assert.Equal(t, uint8(2), r.GetPixel(1))
	assert.Equal(t, uint8(0), r.GetPixel(2))
	assert.Equal(t, uint8(0), r.GetPixel(6))
	assert.Equal(t, uint8(1), r.GetPixel(7))
}

func TestTileRowGetPixelFlipped(t *testing.T) {
	r := TileRow{Low: 0x81, High: 0x00}
	assert.Equal(t, r.GetPixel(0), r.GetPixelFlipped(7))
	assert.Equal(t, r.GetPixel(7), r.GetPixelFlipped(0))
}

func TestBGTileDataAddrUnsigned(t *testing.T) {
	assert.Equal(t, uint16(0x8000), BGTileDataAddr(0, 0, true))
	assert.Equal(t, uint16(0x8010), BGTileDataAddr(1, 0, true))
	assert.Equal(t, uint16(0x8FF0), BGTileDataAddr(255, 0, true))
}

func TestBGTileDataAddrSigned(t *testing.T) {
	// Tile index 0 in signed mode is base 0x9000.
	assert.Equal(t, uint16(0x9000), BGTileDataAddr(0, 0, false))
	// Tile index 0x80 (-128) maps to the lowest signed tile, base 0x8800.
	assert.Equal(t, uint16(0x8800), BGTileDataAddr(0x80, 0, false))
	// Tile index 0xFF (-1) sits just below 0x9000.
	assert.Equal(t, uint16(0x8FF0), BGTileDataAddr(0xFF, 0, false))
}

func TestObjTileDataAddrAlwaysUnsigned(t *testing.T) {
	assert.Equal(t, uint16(0x8000), ObjTileDataAddr(0, 0))
	assert.Equal(t, uint16(0x8FF0), ObjTileDataAddr(255, 0))
}

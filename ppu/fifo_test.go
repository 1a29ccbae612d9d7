package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelFIFOOrdering(t *testing.T) {
	var f pixelFIFO
	assert.True(t, f.empty())

	f.push(pixel{color: 1})
	f.push(pixel{color: 2})
	f.push(pixel{color: 3})

	assert.Equal(t, uint8(1), f.pop().color)
	assert.Equal(t, uint8(2), f.pop().color)
	assert.Equal(t, uint8(3), f.pop().color)
	assert.True(t, f.empty())
}

func TestPixelFIFOCapacity(t *testing.T) {
	var f pixelFIFO
	for i := 0; i < 20; i++ {
		f.push(pixel{color: uint8(i % 4)})
	}
	assert.Equal(t, 16, f.len)
}

func TestPixelFIFOClear(t *testing.T) {
	var f pixelFIFO
	f.push(pixel{color: 1})
	f.clear()
	assert.True(t, f.empty())
}

package ppu

// pixel is one queued entry in a pixel FIFO: a 2-bit color index plus the
// attributes needed to resolve BG-vs-OBJ priority at pop time.
type pixel struct {
	color    uint8
	obp1     bool // sprite only: use OBP1 instead of OBP0
	priority bool // sprite only: BG/WIN priority over this sprite pixel
}

// pixelFIFO is a small ring buffer, capacity 16 as specced in §3's data
// model for both the BG/WIN and OBJ queues.
type pixelFIFO struct {
	buf [16]pixel
	len int
}

func (f *pixelFIFO) push(p pixel) {
	if f.len >= len(f.buf) {
		return
	}
	f.buf[f.len] = p
	f.len++
}

func (f *pixelFIFO) pop() pixel {
	p := f.buf[0]
	copy(f.buf[:f.len-1], f.buf[1:f.len])
	f.len--
	return p
}

func (f *pixelFIFO) empty() bool {
	return f.len == 0
}

func (f *pixelFIFO) clear() {
	f.len = 0
}

package serial

import "github.com/valerio/dmgcore/trace"

// Buffer implements trace.Sink by accumulating every serial byte
// verbatim, with no line-buffering or logging. This is the sink a Core
// always wires in internally so SerialBuffer() (§6 "Serial byte channel")
// has raw bytes to return even when a host supplies its own trace.Sink
// (e.g. a LineLogger) for diagnostics.
type Buffer struct {
	bytes []byte
}

// NewBuffer returns an empty serial Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Message(string) {}

func (b *Buffer) SerialByte(c byte) {
	b.bytes = append(b.bytes, c)
}

func (b *Buffer) CPUState(trace.CPUState) {}

// Bytes returns every byte accumulated so far.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

var _ trace.Sink = (*Buffer)(nil)

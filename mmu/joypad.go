package mmu

import "github.com/valerio/dmgcore/bit"

// Button is one of the eight DMG joypad inputs.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// joypad tracks the button-matrix register (P1/FF00), grounded on
// jeebie/memory/mem.go's updateJoypadRegister. Supplemented per
// SPEC_FULL.md: spec.md's MMU table doesn't detail P1 semantics, but its
// post-boot image fixes FF00=0xCF, so the register needs a real backing
// model rather than a bare byte.
type joypad struct {
	buttons uint8 // bit=0 means pressed; bits 0-3 = A,B,Select,Start
	dpad    uint8 // bit=0 means pressed; bits 0-3 = Right,Left,Up,Down
	select_ uint8 // raw bits 4-5 as last written to P1
}

func newJoypad() *joypad {
	return &joypad{buttons: 0x0F, dpad: 0x0F}
}

// register computes the current P1 value from the selection bits and
// button/dpad state. Bits 6-7 always read 1; a 0 bit means "pressed".
func (j *joypad) register() byte {
	result := uint8(0xC0) | (j.select_ & 0x30)

	selectDpad := !bit.IsSet(4, j.select_)
	selectButtons := !bit.IsSet(5, j.select_)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}
	return result
}

// write accepts only the selection bits (4-5); the rest of P1 is derived.
func (j *joypad) write(value byte) {
	j.select_ = value & 0x30
}

// press returns true if pressing btn pulls one of the four input lines
// from high to low (used by the caller to decide whether to raise
// addr.Joypad). Each button shares its line with a d-pad direction
// (A/Right, B/Left, Select/Up, Start/Down), so pressing a button whose
// partner is already held returns false.
func (j *joypad) press(btn Button) bool {
	before := j.buttons & j.dpad
	j.set(btn, false)
	after := j.buttons & j.dpad
	return before&^after != 0
}

func (j *joypad) release(btn Button) {
	j.set(btn, true)
}

func (j *joypad) set(btn Button, released bool) {
	switch btn {
	case Right:
		j.dpad = bit.SetTo(0, j.dpad, released)
	case Left:
		j.dpad = bit.SetTo(1, j.dpad, released)
	case Up:
		j.dpad = bit.SetTo(2, j.dpad, released)
	case Down:
		j.dpad = bit.SetTo(3, j.dpad, released)
	case A:
		j.buttons = bit.SetTo(0, j.buttons, released)
	case B:
		j.buttons = bit.SetTo(1, j.buttons, released)
	case Select:
		j.buttons = bit.SetTo(2, j.buttons, released)
	case Start:
		j.buttons = bit.SetTo(3, j.buttons, released)
	}
}

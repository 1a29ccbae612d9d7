package mmu

// Mapper is the cartridge provider boundary (§6 "Cartridge provider").
// The mmu package treats any Mapper as a read-only dependency wired in at
// construction time; the Mapper itself decides whether writes to its ROM
// or external-RAM windows have any effect.
type Mapper interface {
	// Read returns the byte visible at addr, which is always in
	// 0x0000-0x7FFF (ROM) or 0xA000-0xBFFF (external RAM).
	Read(addr uint16) uint8
	// Write routes a write to addr (same ranges as Read). ROM-only
	// cartridges with no RAM silently ignore it.
	Write(addr uint16, value uint8)
}

// RomOnly is a Mapper for cartridges with no banking hardware: the 32KiB
// ROM image is mapped directly to 0x0000-0x7FFF, there is no external RAM,
// and all writes are ignored. This is the cartridge class spec.md commits
// to supporting fully (§9 open question).
type RomOnly struct {
	rom []byte
}

// NewRomOnly wraps a raw ROM image. Images shorter than 0x8000 bytes are
// zero-padded; longer images are truncated to the first 32KiB since a
// ROM-only cartridge cannot bank.
func NewRomOnly(rom []byte) *RomOnly {
	data := make([]byte, 0x8000)
	copy(data, rom)
	return &RomOnly{rom: data}
}

func (m *RomOnly) Read(addr uint16) uint8 {
	if addr >= 0xA000 {
		return 0xFF
	}
	return m.rom[addr]
}

func (m *RomOnly) Write(addr uint16, value uint8) {
	// ROM-only carts have no registers and no RAM: writes are inert.
}

// MBC1 implements ROM+RAM banking with both banking modes, grounded on
// jeebie's memory.MBC1 and FabianRolfMatthiasNoll's internal/cart/mbc1.go.
// Write-side behavior beyond this is explicitly out of scope (spec.md §9).
type MBC1 struct {
	rom []byte
	ram []byte

	romBank    uint8 // 5-bit register, 0 is remapped to 1
	ramOrHigh2 uint8 // RAM bank (mode 1) or ROM bank bits 5-6 (mode 0)
	ramEnabled bool
	mode       uint8 // 0 = ROM banking mode, 1 = RAM banking mode
}

// NewMBC1 constructs an MBC1 mapper over rom with ramSize bytes of
// battery-less external RAM (0 if the cartridge has none).
func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) effectiveROMBank() int {
	bank := int(m.romBank & 0x1F)
	if bank == 0 {
		bank = 1
	}
	if m.mode == 0 {
		bank |= int(m.ramOrHigh2&0x03) << 5
	}
	return bank
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.ramOrHigh2&0x03) << 5
		}
		off := bank*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.effectiveROMBank()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	default: // external RAM window
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		bank := 0
		if m.mode == 1 {
			bank = int(m.ramOrHigh2 & 0x03)
		}
		off := bank*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x1F
		m.romBank = bank
	case addr < 0x6000:
		m.ramOrHigh2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	default: // external RAM window
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		bank := 0
		if m.mode == 1 {
			bank = int(m.ramOrHigh2 & 0x03)
		}
		off := bank*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

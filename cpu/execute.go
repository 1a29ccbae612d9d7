package cpu

import "github.com/valerio/dmgcore/addr"

// Bus is the narrow read/write view Execute needs; *mmu.MMU satisfies it.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

func (c *CPU) getReg8(r Reg8) uint8 {
	switch r {
	case RegB:
		return c.r.B
	case RegC:
		return c.r.C
	case RegD:
		return c.r.D
	case RegE:
		return c.r.E
	case RegH:
		return c.r.H
	case RegL:
		return c.r.L
	case RegHLInd:
		return c.bus.Read(c.r.hl())
	default:
		return c.r.A
	}
}

func (c *CPU) setReg8(r Reg8, v uint8) {
	switch r {
	case RegB:
		c.r.B = v
	case RegC:
		c.r.C = v
	case RegD:
		c.r.D = v
	case RegE:
		c.r.E = v
	case RegH:
		c.r.H = v
	case RegL:
		c.r.L = v
	case RegHLInd:
		c.bus.Write(c.r.hl(), v)
	default:
		c.r.A = v
	}
}

func (c *CPU) getReg16(r Reg16) uint16 {
	switch r {
	case Reg16BC:
		return c.r.bc()
	case Reg16DE:
		return c.r.de()
	case Reg16HL:
		return c.r.hl()
	default:
		return c.r.SP
	}
}

func (c *CPU) setReg16(r Reg16, v uint16) {
	switch r {
	case Reg16BC:
		c.r.setBC(v)
	case Reg16DE:
		c.r.setDE(v)
	case Reg16HL:
		c.r.setHL(v)
	default:
		c.r.SP = v
	}
}

// readR16MemAddr resolves the pointer address for the r16mem group and
// post-adjusts HL for the HLI/HLD variants, per §4.3's memory-side-effect
// rule (post-increment/decrement regardless of which side HL is on).
func (c *CPU) readR16MemAddr(r Reg16Mem) uint16 {
	switch r {
	case Reg16MemBC:
		return c.r.bc()
	case Reg16MemDE:
		return c.r.de()
	case Reg16MemHLI:
		addr := c.r.hl()
		c.r.setHL(addr + 1)
		return addr
	default: // Reg16MemHLD
		addr := c.r.hl()
		c.r.setHL(addr - 1)
		return addr
	}
}

func (c *CPU) readByte(mode AddressingMode, target uint16) uint8 {
	switch mode.Kind {
	case ModeByteRegister:
		return c.getReg8(mode.R8)
	case ModeImmediateByte:
		return uint8(target)
	case ModeImmediatePointer:
		return c.bus.Read(target)
	case ModeImmediatePointerHigh:
		return c.bus.Read(0xFF00 + target)
	case ModeRegisterPointer:
		return c.bus.Read(c.readR16MemAddr(mode.R16Mem))
	case ModeRegisterPointerHigh:
		return c.bus.Read(0xFF00 + uint16(c.getReg8(mode.R8)))
	default:
		return 0
	}
}

func (c *CPU) writeByte(mode AddressingMode, target uint16, value uint8) {
	switch mode.Kind {
	case ModeByteRegister:
		c.setReg8(mode.R8, value)
	case ModeImmediatePointer:
		c.bus.Write(target, value)
	case ModeImmediatePointerHigh:
		c.bus.Write(0xFF00+target, value)
	case ModeRegisterPointer:
		c.bus.Write(c.readR16MemAddr(mode.R16Mem), value)
	case ModeRegisterPointerHigh:
		c.bus.Write(0xFF00+uint16(c.getReg8(mode.R8)), value)
	}
}

func (c *CPU) pushWord(v uint16) {
	c.r.SP--
	c.bus.Write(c.r.SP, uint8(v>>8))
	c.r.SP--
	c.bus.Write(c.r.SP, uint8(v))
}

func (c *CPU) popWord() uint16 {
	low := c.bus.Read(c.r.SP)
	c.r.SP++
	high := c.bus.Read(c.r.SP)
	c.r.SP++
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) checkCond(cond Cond) bool {
	switch cond {
	case CondNZ:
		return !c.r.flag(flagZ)
	case CondZ:
		return c.r.flag(flagZ)
	case CondNC:
		return !c.r.flag(flagC)
	default:
		return c.r.flag(flagC)
	}
}

// execute runs one already-decoded instruction and returns its M-cycle
// cost (§4.3's timing table).
func (c *CPU) execute(instr Instruction) int {
	pc := c.r.PC
	c.r.PC += instr.Size

	switch instr.Mnemonic {
	case MnemNop:
		return 1

	case MnemLD:
		if instr.Dst.Kind == ModeWordRegister {
			c.setReg16(instr.Dst.R16, instr.Target)
			return 3
		}
		v := c.readByte(instr.Src, instr.Target)
		c.writeByte(instr.Dst, instr.Target, v)
		return ldCost(instr)

	case MnemLDSPImm16ToMem:
		c.bus.Write(instr.Target, uint8(c.r.SP))
		c.bus.Write(instr.Target+1, uint8(c.r.SP>>8))
		return 5

	case MnemLDH:
		v := c.readByte(instr.Src, instr.Target)
		c.writeByte(instr.Dst, instr.Target, v)
		if instr.Src.Kind == ModeImmediatePointerHigh || instr.Dst.Kind == ModeImmediatePointerHigh {
			return 2
		}
		return 3

	case MnemLDSPHL:
		c.r.SP = c.r.hl()
		return 2

	case MnemLDHLSPe8:
		result, h, cf := addSPSigned(c.r.SP, instr.Target)
		c.r.setHL(result)
		c.r.setFlag(flagZ, false)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, h)
		c.r.setFlag(flagC, cf)
		return 3

	case MnemADDSPe8:
		result, h, cf := addSPSigned(c.r.SP, instr.Target)
		c.r.SP = result
		c.r.setFlag(flagZ, false)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, h)
		c.r.setFlag(flagC, cf)
		return 4

	case MnemINC8:
		old := c.readByte(instr.Dst, 0)
		v := old + 1
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, old&0xF == 0xF)
		if instr.Dst.Kind == ModeByteRegister && instr.Dst.R8 == RegHLInd {
			return 3
		}
		return 1

	case MnemDEC8:
		old := c.readByte(instr.Dst, 0)
		v := old - 1
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		c.r.setFlag(flagN, true)
		c.r.setFlag(flagH, v&0xF == 0xF)
		if instr.Dst.Kind == ModeByteRegister && instr.Dst.R8 == RegHLInd {
			return 3
		}
		return 1

	case MnemINC16:
		c.setReg16(instr.Dst.R16, c.getReg16(instr.Dst.R16)+1)
		return 2

	case MnemDEC16:
		c.setReg16(instr.Dst.R16, c.getReg16(instr.Dst.R16)-1)
		return 2

	case MnemADDHL:
		hl := c.r.hl()
		operand := c.getReg16(instr.Src.R16)
		result := hl + operand
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, (hl&0xFFF)+(operand&0xFFF) > 0xFFF)
		c.r.setFlag(flagC, uint32(hl)+uint32(operand) > 0xFFFF)
		c.r.setHL(result)
		return 2

	case MnemRLCA:
		c.r.A = c.rlc(c.r.A)
		c.r.setFlag(flagZ, false)
		return 1
	case MnemRRCA:
		c.r.A = c.rrc(c.r.A)
		c.r.setFlag(flagZ, false)
		return 1
	case MnemRLA:
		c.r.A = c.rl(c.r.A)
		c.r.setFlag(flagZ, false)
		return 1
	case MnemRRA:
		c.r.A = c.rr(c.r.A)
		c.r.setFlag(flagZ, false)
		return 1

	case MnemDAA:
		c.daa()
		return 1

	case MnemCPL:
		c.r.A = ^c.r.A
		c.r.setFlag(flagN, true)
		c.r.setFlag(flagH, true)
		return 1

	case MnemSCF:
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagC, true)
		return 1

	case MnemCCF:
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagC, !c.r.flag(flagC))
		return 1

	case MnemJR:
		c.r.PC = uint16(int32(c.r.PC) + int32(int8(instr.Target)))
		return 3

	case MnemJRCC:
		if c.checkCond(instr.Cond) {
			c.r.PC = uint16(int32(c.r.PC) + int32(int8(instr.Target)))
			return 3
		}
		return 2

	case MnemSTOP:
		c.stopped = true
		c.ime = imeDisabled
		c.bus.Write(addr.IF, 0)
		return 1

	case MnemHALT:
		c.halted = true
		return 1

	case MnemADD, MnemADC, MnemSUB, MnemSBC, MnemAND, MnemXOR, MnemOR, MnemCP:
		v := c.readByte(instr.Src, instr.Target)
		c.alu(instr.Mnemonic, v)
		if instr.Src.Kind == ModeImmediateByte || (instr.Src.Kind == ModeByteRegister && instr.Src.R8 == RegHLInd) {
			return 2
		}
		return 1

	case MnemRET:
		c.r.PC = c.popWord()
		return 4

	case MnemRETCC:
		if c.checkCond(instr.Cond) {
			c.r.PC = c.popWord()
			return 5
		}
		return 2

	case MnemRETI:
		c.r.PC = c.popWord()
		c.ime = imeEnabled
		return 4

	case MnemJP:
		c.r.PC = instr.Target
		return 4

	case MnemJPCC:
		if c.checkCond(instr.Cond) {
			c.r.PC = instr.Target
			return 4
		}
		return 3

	case MnemJPHL:
		c.r.PC = c.r.hl()
		return 1

	case MnemCALL:
		c.pushWord(c.r.PC)
		c.r.PC = instr.Target
		return 6

	case MnemCALLCC:
		if c.checkCond(instr.Cond) {
			c.pushWord(c.r.PC)
			c.r.PC = instr.Target
			return 6
		}
		return 3

	case MnemRST:
		c.pushWord(c.r.PC)
		c.r.PC = instr.RSTVector
		return 4

	case MnemPOP:
		v := c.popWord()
		if Reg16Stk(instr.Dst.R16) == Reg16StkAF {
			c.r.setAF(v)
		} else {
			c.setReg16(stkToPlain(instr.Dst.R16), v)
		}
		return 3

	case MnemPUSH:
		var v uint16
		if Reg16Stk(instr.Dst.R16) == Reg16StkAF {
			v = c.r.af()
		} else {
			v = c.getReg16(stkToPlain(instr.Dst.R16))
		}
		c.pushWord(v)
		return 4

	case MnemDI:
		c.ime = imeDisabled
		return 1

	case MnemEI:
		if c.ime == imeDisabled {
			c.ime = imeEnabling
		}
		return 1

	case MnemRLC:
		v := c.rlc(c.readByte(instr.Dst, 0))
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)
	case MnemRRC:
		v := c.rrc(c.readByte(instr.Dst, 0))
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)
	case MnemRL:
		v := c.rl(c.readByte(instr.Dst, 0))
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)
	case MnemRR:
		v := c.rr(c.readByte(instr.Dst, 0))
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)

	case MnemSLA:
		old := c.readByte(instr.Dst, 0)
		v := old << 1
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagC, old&0x80 != 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)

	case MnemSRA:
		old := c.readByte(instr.Dst, 0)
		v := (old >> 1) | (old & 0x80)
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagC, old&0x01 != 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)

	case MnemSWAP:
		old := c.readByte(instr.Dst, 0)
		v := old<<4 | old>>4
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagZ, v == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagC, false)
		return cbCost(instr)

	case MnemSRL:
		old := c.readByte(instr.Dst, 0)
		v := old >> 1
		c.writeByte(instr.Dst, 0, v)
		c.r.setFlag(flagC, old&0x01 != 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagZ, v == 0)
		return cbCost(instr)

	case MnemBIT:
		v := c.readByte(instr.Dst, 0)
		c.r.setFlag(flagZ, v&(1<<instr.Src.Bit) == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, true)
		return cbCost(instr)

	case MnemRES:
		v := c.readByte(instr.Dst, 0) &^ (1 << instr.Src.Bit)
		c.writeByte(instr.Dst, 0, v)
		return cbCost(instr)

	case MnemSET:
		v := c.readByte(instr.Dst, 0) | (1 << instr.Src.Bit)
		c.writeByte(instr.Dst, 0, v)
		return cbCost(instr)

	default:
		_ = pc
		return 1
	}
}

func ldCost(instr Instruction) int {
	isMem := func(m AddressingMode) bool {
		return m.Kind == ModeRegisterPointer || m.Kind == ModeImmediatePointer
	}
	if instr.Src.Kind == ModeImmediatePointer || instr.Dst.Kind == ModeImmediatePointer {
		return 4
	}
	if isMem(instr.Src) || isMem(instr.Dst) {
		return 2
	}
	if instr.Dst.Kind == ModeByteRegister && instr.Dst.R8 == RegHLInd {
		return 2
	}
	if instr.Src.Kind == ModeByteRegister && instr.Src.R8 == RegHLInd {
		return 2
	}
	if instr.Src.Kind == ModeImmediateByte {
		return 2
	}
	return 1
}

func cbCost(instr Instruction) int {
	if instr.Dst.Kind == ModeByteRegister && instr.Dst.R8 == RegHLInd {
		return 4
	}
	return 2
}

// stkToPlain maps a Reg16 carrying a Reg16Stk-encoded value (BC/DE/HL,
// never SP/AF which POP/PUSH special-case) back to the plain r16 group.
func stkToPlain(r Reg16) Reg16 { return r }

func addSPSigned(sp uint16, e8 uint16) (result uint16, half bool, carry bool) {
	offset := int8(e8)
	result = uint16(int32(sp) + int32(offset))
	low := uint8(sp)
	half = (low&0xF)+(uint8(e8)&0xF) > 0xF
	carry = uint16(low)+uint16(uint8(e8)) > 0xFF
	return result, half, carry
}

func (c *CPU) rlc(v uint8) uint8 {
	carry := v&0x80 != 0
	result := v<<1 | v>>7
	c.r.setFlag(flagC, carry)
	c.r.setFlag(flagN, false)
	c.r.setFlag(flagH, false)
	return result
}

func (c *CPU) rrc(v uint8) uint8 {
	carry := v&0x01 != 0
	result := v>>1 | v<<7
	c.r.setFlag(flagC, carry)
	c.r.setFlag(flagN, false)
	c.r.setFlag(flagH, false)
	return result
}

func (c *CPU) rl(v uint8) uint8 {
	oldCarry := uint8(0)
	if c.r.flag(flagC) {
		oldCarry = 1
	}
	carry := v&0x80 != 0
	result := v<<1 | oldCarry
	c.r.setFlag(flagC, carry)
	c.r.setFlag(flagN, false)
	c.r.setFlag(flagH, false)
	return result
}

func (c *CPU) rr(v uint8) uint8 {
	oldCarry := uint8(0)
	if c.r.flag(flagC) {
		oldCarry = 0x80
	}
	carry := v&0x01 != 0
	result := v>>1 | oldCarry
	c.r.setFlag(flagC, carry)
	c.r.setFlag(flagN, false)
	c.r.setFlag(flagH, false)
	return result
}

// alu applies one of the eight ALU-A operations, per §4.3's authoritative
// flag rules.
func (c *CPU) alu(op Mnemonic, value uint8) {
	a := c.r.A
	carryIn := uint8(0)
	if c.r.flag(flagC) {
		carryIn = 1
	}

	switch op {
	case MnemADD:
		result := uint16(a) + uint16(value)
		c.r.A = uint8(result)
		c.r.setFlag(flagZ, c.r.A == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, (a&0xF)+(value&0xF) > 0xF)
		c.r.setFlag(flagC, result > 0xFF)

	case MnemADC:
		result := uint16(a) + uint16(value) + uint16(carryIn)
		c.r.A = uint8(result)
		c.r.setFlag(flagZ, c.r.A == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, (a&0xF)+(value&0xF)+carryIn > 0xF)
		c.r.setFlag(flagC, result > 0xFF)

	case MnemSUB:
		result := a - value
		c.r.A = result
		c.r.setFlag(flagZ, result == 0)
		c.r.setFlag(flagN, true)
		c.r.setFlag(flagH, a&0xF < value&0xF)
		c.r.setFlag(flagC, a < value)

	case MnemSBC:
		result := int(a) - int(value) - int(carryIn)
		c.r.A = uint8(result)
		c.r.setFlag(flagZ, uint8(result) == 0)
		c.r.setFlag(flagN, true)
		c.r.setFlag(flagH, int(a&0xF)-int(value&0xF)-int(carryIn) < 0)
		c.r.setFlag(flagC, result < 0)

	case MnemAND:
		c.r.A = a & value
		c.r.setFlag(flagZ, c.r.A == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, true)
		c.r.setFlag(flagC, false)

	case MnemXOR:
		c.r.A = a ^ value
		c.r.setFlag(flagZ, c.r.A == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagC, false)

	case MnemOR:
		c.r.A = a | value
		c.r.setFlag(flagZ, c.r.A == 0)
		c.r.setFlag(flagN, false)
		c.r.setFlag(flagH, false)
		c.r.setFlag(flagC, false)

	case MnemCP:
		c.r.setFlag(flagZ, a == value)
		c.r.setFlag(flagN, true)
		c.r.setFlag(flagH, a&0xF < value&0xF)
		c.r.setFlag(flagC, a < value)
	}
}

// daa implements the post-adjust for BCD add/sub, per §4.3.
func (c *CPU) daa() {
	a := c.r.A
	adjust := uint8(0)
	carry := c.r.flag(flagC)

	if c.r.flag(flagN) {
		if c.r.flag(flagH) {
			adjust += 0x06
		}
		if carry {
			adjust += 0x60
		}
		a -= adjust
	} else {
		if c.r.flag(flagH) || a&0xF > 0x9 {
			adjust += 0x06
		}
		if carry || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}

	c.r.A = a
	c.r.setFlag(flagZ, a == 0)
	c.r.setFlag(flagH, false)
	c.r.setFlag(flagC, carry)
}

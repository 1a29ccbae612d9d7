package cpu

// Mnemonic identifies the operation an Instruction performs; the
// addressing modes carried alongside it supply the operands.
type Mnemonic int

const (
	MnemNop Mnemonic = iota
	MnemLD
	MnemLDH
	MnemLDSPHL
	MnemLDHLSPe8
	MnemLDSPImm16ToMem // LD (imm16), SP
	MnemINC8
	MnemDEC8
	MnemINC16
	MnemDEC16
	MnemADDHL
	MnemADDSPe8
	MnemRLCA
	MnemRRCA
	MnemRLA
	MnemRRA
	MnemDAA
	MnemCPL
	MnemSCF
	MnemCCF
	MnemJR
	MnemJRCC
	MnemSTOP
	MnemHALT
	MnemADD
	MnemADC
	MnemSUB
	MnemSBC
	MnemAND
	MnemXOR
	MnemOR
	MnemCP
	MnemRET
	MnemRETCC
	MnemRETI
	MnemJP
	MnemJPCC
	MnemJPHL
	MnemCALL
	MnemCALLCC
	MnemRST
	MnemPOP
	MnemPUSH
	MnemDI
	MnemEI
	MnemRLC
	MnemRRC
	MnemRL
	MnemRR
	MnemSLA
	MnemSRA
	MnemSWAP
	MnemSRL
	MnemBIT
	MnemRES
	MnemSET
)

// Instruction is a fully resolved, ready-to-execute operation: opcode
// decoding has already picked apart the register/immediate operands into
// addressing modes (§4.2).
type Instruction struct {
	Mnemonic Mnemonic
	Dst      AddressingMode
	Src      AddressingMode
	Cond     Cond
	Size     uint16 // bytes including opcode (and CB prefix if any)

	// Target carries a resolved immediate word/byte or absolute address
	// for modes whose payload isn't naturally one of AddressingMode's
	// register fields (imm8/imm16 literals, JR/JP/CALL targets).
	Target uint16

	// RST target / CB-group specific payloads reuse Dst/Src where
	// possible; RST keeps its vector here since it isn't a memory address
	// an AddressingMode would otherwise model.
	RSTVector uint16
}

package cpu

// operand8 resolves a 3-bit register-field operand, reading through
// (HL) when the field encodes index 6.
func (c *CPU) operand8(index uint8) uint8 {
	if index&0x07 == 6 {
		return c.readMem(c.HL())
	}
	return *c.reg8(index)
}

func (c *CPU) setOperand8(index uint8, v uint8) {
	if index&0x07 == 6 {
		c.writeMem(c.HL(), v)
		return
	}
	*c.reg8(index) = v
}

// rr16 resolves one of the four "rr" slots used by most 16-bit
// load/push/pop/arithmetic opcodes, selected by bits 5-4 of the
// opcode. thirdIsSP selects SP for the fourth slot (16-bit loads and
// arithmetic); passing false selects AF there, for the PUSH/POP family.
func (c *CPU) rr16(which uint8, thirdIsSP bool) uint16 {
	switch which & 0x03 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		if thirdIsSP {
			return c.SP
		}
		return c.AF()
	}
}

func (c *CPU) setRR16(which uint8, thirdIsSP bool, v uint16) {
	switch which & 0x03 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		if thirdIsSP {
			c.SP = v
		} else {
			c.SetAF(v)
		}
	}
}

// execute decodes and runs a single unprefixed opcode. The fully
// regular families (register-to-register loads, ALU-vs-register,
// INC/DEC r, PUSH/POP, RST) are generated by iterating their operand
// fields rather than enumerated by hand; everything else (control
// flow, 16-bit loads, and the miscellaneous opcodes) is handwritten.
func (c *CPU) execute(opcode uint8) {
	switch {
	case opcode == 0x76: // HALT, carved out of the LD r,(HL) block below
		c.execHALT()
		return
	case opcode >= 0x40 && opcode <= 0x7F: // LD r,r' / LD r,(HL) / LD (HL),r
		dst := (opcode >> 3) & 0x07
		src := opcode & 0x07
		c.setOperand8(dst, c.operand8(src))
		return
	case opcode >= 0x80 && opcode <= 0xBF: // ALU A,r / A,(HL)
		c.execALU((opcode>>3)&0x07, c.operand8(opcode&0x07))
		return
	case opcode&0xC7 == 0x04: // INC r
		r := (opcode >> 3) & 0x07
		c.setOperand8(r, c.inc8(c.operand8(r)))
		return
	case opcode&0xC7 == 0x05: // DEC r
		r := (opcode >> 3) & 0x07
		c.setOperand8(r, c.dec8(c.operand8(r)))
		return
	case opcode&0xC7 == 0x06: // LD r,n
		r := (opcode >> 3) & 0x07
		c.setOperand8(r, c.fetch())
		return
	}

	switch opcode {
	case 0x00: // NOP
	case 0x10:
		c.execSTOP()
	case 0xF3:
		c.irq.DisableImmediate()
	case 0xFB:
		c.irq.RequestEI()
	case 0x2F: // CPL
		c.A = ^c.A
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)
	case 0x37: // SCF
		c.setFlag(flagC, true)
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
	case 0x3F: // CCF
		c.setFlag(flagC, !c.flag(flagC))
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
	case 0x27:
		c.daa()
	case 0x07: // RLCA
		c.A = c.rlc(c.A)
		c.setFlag(flagZ, false)
	case 0x0F: // RRCA
		c.A = c.rrc(c.A)
		c.setFlag(flagZ, false)
	case 0x17: // RLA
		c.A = c.rl(c.A)
		c.setFlag(flagZ, false)
	case 0x1F: // RRA
		c.A = c.rr(c.A)
		c.setFlag(flagZ, false)

	case 0x01, 0x11, 0x21, 0x31: // LD rr,nn
		c.setRR16((opcode>>4)&0x03, true, c.fetch16())
	case 0xC1, 0xD1, 0xE1, 0xF1: // POP rr
		c.setRR16((opcode>>4)&0x03, false, c.pop())
	case 0xC5, 0xD5, 0xE5, 0xF5: // PUSH rr
		c.internalTick()
		c.push(c.rr16((opcode>>4)&0x03, false))
	case 0x02:
		c.writeMem(c.BC(), c.A)
	case 0x12:
		c.writeMem(c.DE(), c.A)
	case 0x22:
		c.writeMem(c.HL(), c.A)
		c.SetHL(c.HL() + 1)
	case 0x32:
		c.writeMem(c.HL(), c.A)
		c.SetHL(c.HL() - 1)
	case 0x0A:
		c.A = c.readMem(c.BC())
	case 0x1A:
		c.A = c.readMem(c.DE())
	case 0x2A:
		c.A = c.readMem(c.HL())
		c.SetHL(c.HL() + 1)
	case 0x3A:
		c.A = c.readMem(c.HL())
		c.SetHL(c.HL() - 1)
	case 0x08: // LD (nn),SP
		addr := c.fetch16()
		c.writeMem(addr, uint8(c.SP))
		c.writeMem(addr+1, uint8(c.SP>>8))
	case 0xE0:
		c.writeMem(0xFF00+uint16(c.fetch()), c.A)
	case 0xF0:
		c.A = c.readMem(0xFF00 + uint16(c.fetch()))
	case 0xE2:
		c.writeMem(0xFF00+uint16(c.C), c.A)
	case 0xF2:
		c.A = c.readMem(0xFF00 + uint16(c.C))
	case 0xEA:
		c.writeMem(c.fetch16(), c.A)
	case 0xFA:
		c.A = c.readMem(c.fetch16())
	case 0xF9: // LD SP,HL
		c.internalTick()
		c.SP = c.HL()
	case 0xE8: // ADD SP,r8
		offset := int8(c.fetch())
		c.internalTick()
		c.internalTick()
		c.SP = c.addSPSigned(offset)
	case 0xF8: // LD HL,SP+r8
		offset := int8(c.fetch())
		c.internalTick()
		c.SetHL(c.addSPSigned(offset))

	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rr
		c.internalTick()
		c.add16HL(c.rr16((opcode>>4)&0x03, true))
	case 0x03, 0x13, 0x23, 0x33: // INC rr
		c.internalTick()
		c.setRR16((opcode>>4)&0x03, true, c.rr16((opcode>>4)&0x03, true)+1)
	case 0x0B, 0x1B, 0x2B, 0x3B: // DEC rr
		c.internalTick()
		c.setRR16((opcode>>4)&0x03, true, c.rr16((opcode>>4)&0x03, true)-1)

	case 0xC6, 0xD6, 0xE6, 0xF6, 0xCE, 0xDE, 0xEE, 0xFE: // ALU A,n
		c.execALU((opcode>>3)&0x07, c.fetch())

	case 0xC3: // JP nn
		addr := c.fetch16()
		c.internalTick()
		c.PC = addr
	case 0xE9: // JP (HL), no extra internal cycle
		c.PC = c.HL()
	case 0x18: // JR r8
		offset := int8(c.fetch())
		c.internalTick()
		c.PC = uint16(int32(c.PC) + int32(offset))
	case 0xCD: // CALL nn
		addr := c.fetch16()
		c.internalTick()
		c.push(c.PC)
		c.PC = addr
	case 0xC9: // RET
		c.PC = c.pop()
		c.internalTick()
	case 0xD9: // RETI
		c.PC = c.pop()
		c.internalTick()
		c.irq.EnableImmediate()
	case 0xC2, 0xD2, 0xCA, 0xDA: // JP cc,nn
		addr := c.fetch16()
		if c.condTrue(opcode) {
			c.internalTick()
			c.PC = addr
		}
	case 0x20, 0x30, 0x28, 0x38: // JR cc,r8
		offset := int8(c.fetch())
		if c.condTrue(opcode) {
			c.internalTick()
			c.PC = uint16(int32(c.PC) + int32(offset))
		}
	case 0xC4, 0xD4, 0xCC, 0xDC: // CALL cc,nn
		addr := c.fetch16()
		if c.condTrue(opcode) {
			c.internalTick()
			c.push(c.PC)
			c.PC = addr
		}
	case 0xC0, 0xD0, 0xC8, 0xD8: // RET cc
		c.internalTick()
		if c.condTrue(opcode) {
			c.PC = c.pop()
			c.internalTick()
		}

	case 0xC7, 0xD7, 0xE7, 0xF7, 0xCF, 0xDF, 0xEF, 0xFF: // RST n
		c.internalTick()
		c.push(c.PC)
		c.PC = uint16(opcode & 0x38)

	case 0xCB:
		cb := c.fetch()
		c.executeCB(cb)

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		// unassigned opcodes: real hardware locks up permanently. Model
		// the same outcome deterministically by freezing the CPU in
		// place; Err reports it instead of silently resuming.
		c.err = &UnsupportedOpcodeError{Opcode: opcode, PC: c.PC - 1}
	}
}

// condTrue evaluates the two-bit condition field of a conditional
// branch opcode: bits 4-3 select NZ/Z/NC/C.
func (c *CPU) condTrue(opcode uint8) bool {
	switch (opcode >> 3) & 0x03 {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	default:
		return c.flag(flagC)
	}
}

// execALU runs one of the eight ALU operations (selected the same way
// as the 0x80-0xBF block and the 0xC6-0xFE immediate block) against A.
func (c *CPU) execALU(op uint8, v uint8) {
	switch op {
	case 0:
		c.A = c.add8(c.A, v, false)
	case 1:
		c.A = c.add8(c.A, v, c.flag(flagC))
	case 2:
		c.A = c.sub8(c.A, v, false)
	case 3:
		c.A = c.sub8(c.A, v, c.flag(flagC))
	case 4:
		c.A = c.and8(c.A, v)
	case 5:
		c.A = c.xor8(c.A, v)
	case 6:
		c.A = c.or8(c.A, v)
	case 7:
		c.cp8(c.A, v)
	}
}

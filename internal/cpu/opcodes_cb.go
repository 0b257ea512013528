package cpu

// executeCB decodes and runs a CB-prefixed opcode. All 256 entries
// follow one of three fully regular shapes (rotate/shift family,
// BIT b,r, RES/SET b,r), so the whole table is handled by three
// generic cases instead of 256 handwritten ones.
func (c *CPU) executeCB(opcode uint8) {
	reg := opcode & 0x07
	bitN := (opcode >> 3) & 0x07

	switch {
	case opcode < 0x40: // rotate/shift/swap family
		v := c.operand8(reg)
		switch opcode >> 3 {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		case 7:
			v = c.srl(v)
		}
		c.setOperand8(reg, v)

	case opcode < 0x80: // BIT b,r
		c.bit(bitN, c.operand8(reg))

	case opcode < 0xC0: // RES b,r
		c.setOperand8(reg, c.res(bitN, c.operand8(reg)))

	default: // SET b,r
		c.setOperand8(reg, c.set(bitN, c.operand8(reg)))
	}
}

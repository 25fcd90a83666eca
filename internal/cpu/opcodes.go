package cpu

// execute decodes and runs one unprefixed opcode, returning the instruction's
// total duration in M-cycles. The decomposition (x = op>>6, y = (op>>3)&7,
// z = op&7, p = y>>1, q = y&1) is the standard Z80/SM83 opcode-map split: it
// lets whole families (LD r,r'; ALU A,r; INC/DEC r; 16-bit pair ops) share
// one case instead of 256 hand-written ones.
func (c *CPU) execute(op byte) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch {
	case op == 0x00: // NOP
		return 1
	case op == 0x10: // STOP
		c.fetch8() // the second STOP byte, conventionally 0x00
		if c.key1 != nil && c.key1.Bit(0) {
			c.stopCountdown = 2050
		}
		return 1
	case op == 0x76: // HALT
		if c.IME {
			c.halted = true
		} else if c.irqc.Pending() != 0 {
			c.haltBug = true
		} else {
			c.halted = true
		}
		return 1
	case op == 0xF3: // DI
		c.IME = false
		c.eiDelay = 0
		return 1
	case op == 0xFB: // EI
		c.eiDelay = 2
		return 1
	case op == 0x2F: // CPL
		c.A = ^c.A
		c.setFlags(c.flag(flagZ), true, true, c.flag(flagC))
		return 1
	case op == 0x3F: // CCF
		c.setFlags(c.flag(flagZ), false, false, !c.flag(flagC))
		return 1
	case op == 0x37: // SCF
		c.setFlags(c.flag(flagZ), false, false, true)
		return 1
	case op == 0x27: // DAA
		c.daa()
		return 1
	case op == 0x07: // RLCA
		cy := c.A&0x80 != 0
		c.A = c.A<<1 | c.A>>7
		c.setFlags(false, false, false, cy)
		return 1
	case op == 0x0F: // RRCA
		cy := c.A&0x01 != 0
		c.A = c.A>>1 | c.A<<7
		c.setFlags(false, false, false, cy)
		return 1
	case op == 0x17: // RLA
		cy := c.A&0x80 != 0
		var ci byte
		if c.flag(flagC) {
			ci = 1
		}
		c.A = c.A<<1 | ci
		c.setFlags(false, false, false, cy)
		return 1
	case op == 0x1F: // RRA
		cy := c.A&0x01 != 0
		var ci byte
		if c.flag(flagC) {
			ci = 0x80
		}
		c.A = c.A>>1 | ci
		c.setFlags(false, false, false, cy)
		return 1
	case op == 0xE8: // ADD SP,i8
		off := int8(c.fetch8())
		r, h, cy := addSPSigned(c.SP, off)
		c.SP = r
		c.setFlags(false, false, h, cy)
		return 4
	case op == 0xF8: // LD HL,SP+i8
		off := int8(c.fetch8())
		r, h, cy := addSPSigned(c.SP, off)
		c.setHL(r)
		c.setFlags(false, false, h, cy)
		return 3
	case op == 0xF9: // LD SP,HL
		c.SP = c.HL()
		return 2
	case op == 0xE9: // JP (HL)
		c.PC = c.HL()
		return 1
	case op == 0xC3: // JP a16
		c.PC = c.fetch16()
		return 4
	case op == 0xCD: // CALL a16
		target := c.fetch16()
		c.push16(c.PC)
		c.PC = target
		return 6
	case op == 0xC9: // RET
		c.PC = c.pop16()
		return 4
	case op == 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		return 4
	case op == 0x18: // JR r8
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 3
	case op == 0xCB: // CB prefix
		sub := c.fetch8()
		return c.executeCB(sub)
	case op == 0xE0: // LDH (a8),A
		addr := 0xFF00 + uint16(c.fetch8())
		c.write8(addr, c.A)
		return 3
	case op == 0xF0: // LDH A,(a8)
		addr := 0xFF00 + uint16(c.fetch8())
		c.A = c.read8(addr)
		return 3
	case op == 0xE2: // LD (C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 2
	case op == 0xF2: // LD A,(C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 2
	case op == 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 4
	case op == 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 4
	case op == 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 5
	}

	// x==0 block: 16-bit loads/INC/DEC/ALU-on-HL, 8-bit INC/DEC/LD-imm,
	// relative jumps, register-pair INC/DEC/ADD.
	if x == 0 {
		switch {
		case z == 1 && q == 0: // LD rr,d16
			c.setPair(p, c.fetch16())
			return 3
		case z == 1 && q == 1: // ADD HL,rr
			c.addHL16(c.getPair(p))
			return 2
		case z == 2 && q == 0: // LD (pair),A / LDI / LDD
			switch p {
			case 0:
				c.write8(c.BC(), c.A)
			case 1:
				c.write8(c.DE(), c.A)
			case 2:
				c.write8(c.HL(), c.A)
				c.setHL(c.HL() + 1)
			case 3:
				c.write8(c.HL(), c.A)
				c.setHL(c.HL() - 1)
			}
			return 2
		case z == 2 && q == 1: // LD A,(pair) / LDI / LDD
			switch p {
			case 0:
				c.A = c.read8(c.BC())
			case 1:
				c.A = c.read8(c.DE())
			case 2:
				c.A = c.read8(c.HL())
				c.setHL(c.HL() + 1)
			case 3:
				c.A = c.read8(c.HL())
				c.setHL(c.HL() - 1)
			}
			return 2
		case z == 3 && q == 0: // INC rr
			c.setPair(p, c.getPair(p)+1)
			return 2
		case z == 3 && q == 1: // DEC rr
			c.setPair(p, c.getPair(p)-1)
			return 2
		case z == 4: // INC r
			if y == 6 {
				c.write8(c.HL(), c.inc8(c.read8(c.HL())))
				return 3
			}
			c.setReg8(y, c.inc8(c.getReg8(y)))
			return 1
		case z == 5: // DEC r
			if y == 6 {
				c.write8(c.HL(), c.dec8(c.read8(c.HL())))
				return 3
			}
			c.setReg8(y, c.dec8(c.getReg8(y)))
			return 1
		case z == 6: // LD r,d8
			v := c.fetch8()
			if y == 6 {
				c.write8(c.HL(), v)
				return 3
			}
			c.setReg8(y, v)
			return 2
		case z == 0 && y >= 4: // JR cc,r8; NOP/LD(a16),SP/STOP/JR matched above
			off := int8(c.fetch8())
			if c.condTaken(y - 4) {
				c.PC = uint16(int32(c.PC) + int32(off))
				return 3
			}
			return 2
		}
	}

	// x==1: LD r,r' (0x76 already handled as HALT above).
	if x == 1 {
		if z == 6 {
			return c.ldRHL(y)
		}
		if y == 6 {
			c.write8(c.HL(), c.getReg8(z))
			return 2
		}
		c.setReg8(y, c.getReg8(z))
		return 1
	}

	// x==2: ALU A,r.
	if x == 2 {
		if z == 6 {
			c.alu8(y, c.read8(c.HL()))
			return 2
		}
		c.alu8(y, c.getReg8(z))
		return 1
	}

	// x==3: returns, pops, pushes, calls, rsts, ALU A,d8, and the odds.
	if x == 3 {
		switch {
		case z == 0 && y < 4: // RET cc
			if c.condTaken(y) {
				c.PC = c.pop16()
				return 5
			}
			return 2
		case z == 1 && q == 0: // POP rr
			c.setPairPop(p, c.pop16())
			return 3
		case z == 2 && y < 4: // JP cc,a16
			target := c.fetch16()
			if c.condTaken(y) {
				c.PC = target
				return 4
			}
			return 3
		case z == 4 && y < 4: // CALL cc,a16
			target := c.fetch16()
			if c.condTaken(y) {
				c.push16(c.PC)
				c.PC = target
				return 6
			}
			return 3
		case z == 5 && q == 0: // PUSH rr
			c.push16(c.getPairPush(p))
			return 4
		case z == 6: // ALU A,d8
			c.alu8(y, c.fetch8())
			return 2
		case z == 7: // RST
			c.push16(c.PC)
			c.PC = uint16(y) * 8
			return 4
		}
	}

	errInvalidOpcode(op)
	return 1
}

// ldRHL handles the z==6 column of the x==1 block: LD r,(HL) when y!=6
// (y==6,z==6 is 0x76 HALT, handled before we ever reach here).
func (c *CPU) ldRHL(y byte) int {
	c.setReg8(y, c.read8(c.HL()))
	return 2
}

// condTaken evaluates the 2-bit condition code used by JR/JP/CALL/RET cc:
// 0=NZ 1=Z 2=NC 3=C.
func (c *CPU) condTaken(cc byte) bool {
	switch cc & 3 {
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

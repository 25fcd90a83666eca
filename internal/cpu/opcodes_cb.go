package cpu

// executeCB decodes and runs one CB-prefixed opcode, returning the total
// M-cycles for the whole two-byte instruction (the 0xCB fetch included).
// x = op>>6 selects the group (0=rotate/shift/swap, 1=BIT, 2=RES, 3=SET),
// y = (op>>3)&7 is the sub-op (group 0) or bit index (groups 1-3), z = op&7
// is the operand register (6 = (HL)).
func (c *CPU) executeCB(op byte) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	get := func() byte {
		if z == 6 {
			return c.read8(c.HL())
		}
		return c.getReg8(z)
	}
	set := func(v byte) {
		if z == 6 {
			c.write8(c.HL(), v)
			return
		}
		c.setReg8(z, v)
	}

	switch x {
	case 0:
		v := get()
		var r byte
		switch y {
		case 0: // RLC
			cy := v&0x80 != 0
			r = v<<1 | v>>7
			c.setFlags(r == 0, false, false, cy)
		case 1: // RRC
			cy := v&0x01 != 0
			r = v>>1 | v<<7
			c.setFlags(r == 0, false, false, cy)
		case 2: // RL
			cy := v&0x80 != 0
			var ci byte
			if c.flag(flagC) {
				ci = 1
			}
			r = v<<1 | ci
			c.setFlags(r == 0, false, false, cy)
		case 3: // RR
			cy := v&0x01 != 0
			var ci byte
			if c.flag(flagC) {
				ci = 0x80
			}
			r = v>>1 | ci
			c.setFlags(r == 0, false, false, cy)
		case 4: // SLA
			cy := v&0x80 != 0
			r = v << 1
			c.setFlags(r == 0, false, false, cy)
		case 5: // SRA
			cy := v&0x01 != 0
			r = v>>1 | v&0x80
			c.setFlags(r == 0, false, false, cy)
		case 6: // SWAP
			r = v<<4 | v>>4
			c.setFlags(r == 0, false, false, false)
		case 7: // SRL
			cy := v&0x01 != 0
			r = v >> 1
			c.setFlags(r == 0, false, false, cy)
		}
		set(r)
		if z == 6 {
			return 4
		}
		return 2
	case 1: // BIT y,r -- read-only, no write-back
		v := get()
		c.setFlags(v&(1<<y) == 0, false, true, c.flag(flagC))
		if z == 6 {
			return 3
		}
		return 2
	case 2: // RES y,r
		set(get() &^ (1 << y))
		if z == 6 {
			return 4
		}
		return 2
	default: // SET y,r
		set(get() | 1<<y)
		if z == 6 {
			return 4
		}
		return 2
	}
}

package ppu

// tileRow decodes one 8-pixel row of a tile into 2-bit color indices,
// reading from the given VRAM bank. tileData8000 selects unsigned 0x8000
// addressing vs. signed 0x8800 addressing (LCDC bit 4); fineY is the row
// (0-7) within the tile, already flipped by the caller if needed.
func (p *PPU) tileRow(bank byte, tileNum byte, tileData8000 bool, fineY byte, xflip bool) [8]byte {
	var base uint16
	if tileData8000 {
		base = uint16(tileNum)*16 + uint16(fineY)*2
	} else {
		base = uint16(0x1000+int16(int8(tileNum))*16) + uint16(fineY)*2
	}
	lo := p.vram[bank][base]
	hi := p.vram[bank][base+1]
	var out [8]byte
	for px := 0; px < 8; px++ {
		bit := 7 - byte(px)
		ci := (hi>>bit)&1<<1 | (lo>>bit)&1
		out[px] = ci
	}
	if xflip {
		out[0], out[1], out[2], out[3], out[4], out[5], out[6], out[7] =
			out[7], out[6], out[5], out[4], out[3], out[2], out[1], out[0]
	}
	return out
}

// tileAttr decodes a CGB background-map attribute byte (stored in VRAM
// bank 1 at the same tile-map address as the tile index in bank 0).
type tileAttr struct {
	palette  byte
	bank     byte
	xflip    bool
	yflip    bool
	priority bool // BG-over-sprite priority, independent of LCDC bit0
}

func decodeTileAttr(raw byte) tileAttr {
	return tileAttr{
		palette:  raw & 0x07,
		bank:     (raw >> 3) & 0x01,
		xflip:    raw&0x20 != 0,
		yflip:    raw&0x40 != 0,
		priority: raw&0x80 != 0,
	}
}

package ppu

// dmgShades are the four classic green-tinted grays, index 0 = lightest.
var dmgShades = [4]Pixel{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

// dmgColor applies a DMG monochrome palette byte (BGP/OBP0/OBP1) to a raw
// 2-bit color index, then resolves it to RGB.
func dmgColor(palette byte, index byte) Pixel {
	shade := (palette >> (index * 2)) & 0x03
	return dmgShades[shade]
}

// cgbColor reads one of the 4 colors (2 bytes, little-endian RGB555) from a
// 64-byte CGB palette RAM block.
func cgbColor(ram *[64]byte, paletteIdx, colorIdx byte) Pixel {
	off := int(paletteIdx&0x07)*8 + int(colorIdx&0x03)*2
	lo, hi := ram[off], ram[off+1]
	word := uint16(lo) | uint16(hi)<<8
	r5 := byte(word & 0x1F)
	g5 := byte((word >> 5) & 0x1F)
	b5 := byte((word >> 10) & 0x1F)
	scale := func(c5 byte) byte { return c5<<3 | c5>>2 }
	return Pixel{scale(r5), scale(g5), scale(b5)}
}

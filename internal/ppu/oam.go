package ppu

// sprite is one decoded OAM entry (4 bytes: Y, X, tile, attributes).
type sprite struct {
	y, x, tile, attr byte
	oamIndex         int
}

func (p *PPU) spriteHeight() int {
	if p.lcdc&0x04 != 0 {
		return 16
	}
	return 8
}

// scanOAM selects up to 10 sprites visible on scanline ly, in priority
// order: DMG breaks ties by X then OAM index, CGB by OAM index only.
func (p *PPU) scanOAM(ly byte) []sprite {
	height := p.spriteHeight()
	var hits []sprite
	for i := 0; i < 40 && len(hits) < 10; i++ {
		base := i * 4
		y := p.oam[base]
		x := p.oam[base+1]
		top := int(y) - 16
		if x == 0 || int(ly) < top || int(ly) >= top+height {
			continue
		}
		hits = append(hits, sprite{
			y:        y,
			x:        x,
			tile:     p.oam[base+2],
			attr:     p.oam[base+3],
			oamIndex: i,
		})
	}
	if !p.cgb {
		for i := 1; i < len(hits); i++ {
			j := i
			for j > 0 && (hits[j].x < hits[j-1].x ||
				(hits[j].x == hits[j-1].x && hits[j].oamIndex < hits[j-1].oamIndex)) {
				hits[j], hits[j-1] = hits[j-1], hits[j]
				j--
			}
		}
	}
	return hits
}

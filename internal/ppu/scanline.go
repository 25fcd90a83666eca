package ppu

// bgPixel is one resolved background/window pixel together with the
// information sprite compositing needs to apply OBJ-to-BG priority.
type bgPixel struct {
	colorIdx byte // 0-3, raw index before palette lookup
	priority bool // CGB BG-to-OAM priority bit, or DMG "color 0 loses" rule
	palette  byte // CGB BG palette index (0-7); unused in DMG mode
}

// renderScanline composites background, window, and sprites for p.ly into
// p.frame[p.ly]. It runs once per scanline, at the Drawing-to-HBlank
// transition, rather than emulating the real per-dot pixel FIFO: the
// visible result is identical since nothing observable happens mid-line.
func (p *PPU) renderScanline() {
	line := p.ly
	var bg [ScreenW]bgPixel

	bgWinEnabled := p.cgb || p.lcdc&0x01 != 0
	if bgWinEnabled {
		p.renderBackground(line, &bg)
	}
	if p.lcdc&0x20 != 0 && p.wy <= line && (p.cgb || p.lcdc&0x01 != 0) {
		if p.renderWindow(&bg) {
			p.winLine++
		}
	}

	var out [ScreenW]Pixel
	for x := 0; x < ScreenW; x++ {
		out[x] = p.resolveBG(bg[x])
	}
	if p.lcdc&0x02 != 0 {
		p.renderSprites(line, &bg, &out)
	}
	p.frame[line] = out
}

func (p *PPU) resolveBG(px bgPixel) Pixel {
	if p.cgb {
		return cgbColor(&p.bgPalette, px.palette, px.colorIdx)
	}
	return dmgColor(p.bgp, px.colorIdx)
}

func (p *PPU) renderBackground(line byte, bg *[ScreenW]bgPixel) {
	tileMapBase := uint16(0x1800)
	if p.lcdc&0x08 != 0 {
		tileMapBase = 0x1C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	y := line + p.scy
	tileRowIdx := y / 8
	fineY := y % 8

	for x := 0; x < ScreenW; x++ {
		sx := byte(x) + p.scx
		tileColIdx := sx / 8
		fineX := sx % 8

		mapOff := tileMapBase + uint16(tileRowIdx)*32 + uint16(tileColIdx)
		tileNum := p.vram[0][mapOff]

		var attr tileAttr
		if p.cgb {
			attr = decodeTileAttr(p.vram[1][mapOff])
		}

		fy := fineY
		if attr.yflip {
			fy = 7 - fy
		}
		row := p.tileRow(attr.bank, tileNum, tileData8000, fy, attr.xflip)
		ci := row[fineX]

		bg[x] = bgPixel{colorIdx: ci, priority: attr.priority, palette: attr.palette}
	}
}

// renderWindow composites the window into bg using p.winLine as the
// window's own tile row, and reports whether it actually drew anything
// (false when WX places the window entirely off the right edge). The
// caller only advances p.winLine when this returns true, so a window
// disabled for part of a frame resumes its tile row where it left off.
func (p *PPU) renderWindow(bg *[ScreenW]bgPixel) bool {
	wx := int(p.wx) - 7
	if wx >= ScreenW {
		return false
	}
	tileMapBase := uint16(0x1800)
	if p.lcdc&0x40 != 0 {
		tileMapBase = 0x1C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	wy := byte(p.winLine)
	tileRowIdx := wy / 8
	fineY := wy % 8

	for x := wx; x < ScreenW; x++ {
		if x < 0 {
			continue
		}
		wxPix := byte(x - wx)
		tileColIdx := wxPix / 8
		fineX := wxPix % 8

		mapOff := tileMapBase + uint16(tileRowIdx)*32 + uint16(tileColIdx)
		tileNum := p.vram[0][mapOff]

		var attr tileAttr
		if p.cgb {
			attr = decodeTileAttr(p.vram[1][mapOff])
		}

		fy := fineY
		if attr.yflip {
			fy = 7 - fy
		}
		row := p.tileRow(attr.bank, tileNum, tileData8000, fy, attr.xflip)
		ci := row[fineX]

		bg[x] = bgPixel{colorIdx: ci, priority: attr.priority, palette: attr.palette}
	}
	return true
}

func (p *PPU) renderSprites(line byte, bg *[ScreenW]bgPixel, out *[ScreenW]Pixel) {
	hits := p.scanOAM(line)
	height := p.spriteHeight()

	// Later entries in hits are lower priority; draw them first so earlier
	// (higher-priority) sprites overwrite on X overlap.
	for i := len(hits) - 1; i >= 0; i-- {
		s := hits[i]
		top := int(s.y) - 16
		row := byte(int(line) - top)
		if s.attr&0x40 != 0 { // Y-flip
			row = byte(height-1) - row
		}
		tile := s.tile
		if height == 16 {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		bank := byte(0)
		if p.cgb && s.attr&0x08 != 0 {
			bank = 1
		}
		xflip := s.attr&0x20 != 0
		pixels := p.tileRow(bank, tile, true, row, xflip)

		behindBG := s.attr&0x80 != 0
		var palIdx byte
		if p.cgb {
			palIdx = s.attr & 0x07
		} else if s.attr&0x10 != 0 {
			palIdx = 1
		}

		left := int(s.x) - 8
		for px := 0; px < 8; px++ {
			sx := left + px
			if sx < 0 || sx >= ScreenW {
				continue
			}
			ci := pixels[px]
			if ci == 0 {
				continue // transparent
			}
			bgPx := bg[sx]
			if bgPx.priority && bgPx.colorIdx != 0 {
				continue // CGB BG-to-OAM priority
			}
			if behindBG && bgPx.colorIdx != 0 {
				continue // sprite behind non-zero BG color
			}
			if p.cgb {
				out[sx] = cgbColor(&p.objPalette, palIdx, ci)
			} else if palIdx == 1 {
				out[sx] = dmgColor(p.obp1, ci)
			} else {
				out[sx] = dmgColor(p.obp0, ci)
			}
		}
	}
}

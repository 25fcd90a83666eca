package ppu

import (
	"testing"

	"github.com/pcineverdies/gameboy-emulator/internal/bus"
	"github.com/pcineverdies/gameboy-emulator/internal/irq"
)

func newTestPPU(cgb bool) *PPU {
	p := New(irq.New(), cgb)
	p.lcdc = 0x80 // LCD on
	return p
}

func TestModeTimingWithinScanline(t *testing.T) {
	p := newTestPPU(false)
	var b *bus.Bus

	for i := 0; i < 79; i++ {
		p.Step(b)
	}
	if mode := p.stat & 0x03; mode != 2 {
		t.Fatalf("expected mode 2 (OAM scan) at dot 79, got %d", mode)
	}
	for i := 0; i < 173; i++ {
		p.Step(b)
	}
	if mode := p.stat & 0x03; mode != 0 {
		t.Fatalf("expected mode 0 (HBlank) at dot 252, got %d", mode)
	}
}

func TestVBlankAfter144Lines(t *testing.T) {
	p := newTestPPU(false)
	var b *bus.Bus
	for line := 0; line < 144; line++ {
		for i := 0; i < 456; i++ {
			p.Step(b)
		}
	}
	if p.ly != 144 {
		t.Fatalf("expected LY=144, got %d", p.ly)
	}
	if mode := p.stat & 0x03; mode != 1 {
		t.Fatalf("expected mode 1 (VBlank), got %d", mode)
	}
	if p.irqc.IF.Get()&(1<<irq.VBlank) == 0 {
		t.Fatalf("expected VBlank interrupt requested")
	}
}

func TestStatLineOnlyFiresOnRisingEdge(t *testing.T) {
	p := newTestPPU(false)
	p.irqc.IE.Set(0xFF)
	p.stat = 1 << 5 // enable OAM-mode STAT interrupt
	p.setMode(2)
	if p.irqc.Pending()&(1<<irq.LCDSTAT) == 0 {
		t.Fatalf("expected LCDSTAT on rising edge into mode 2")
	}
	p.irqc.Clear(irq.LCDSTAT)
	p.setMode(2) // line stays high, must not re-fire
	if p.irqc.Pending()&(1<<irq.LCDSTAT) != 0 {
		t.Fatalf("STAT line should not re-request while still asserted")
	}
}

func TestScanOAMLimitsToTenSprites(t *testing.T) {
	p := newTestPPU(false)
	for i := 0; i < 40; i++ {
		base := i * 4
		p.oam[base] = 32 // y=32 -> covers screen line 16
		p.oam[base+1] = byte(i)
		p.oam[base+2] = byte(i)
	}
	hits := p.scanOAM(16)
	if len(hits) != 10 {
		t.Fatalf("expected 10 sprites selected, got %d", len(hits))
	}
}

func TestScanOAMExcludesXZero(t *testing.T) {
	p := newTestPPU(false)
	p.oam[0], p.oam[1], p.oam[2] = 32, 0, 0  // y=32 covers line 16, x=0: fully off-screen
	p.oam[4], p.oam[5], p.oam[6] = 32, 50, 1 // a second, visible sprite

	hits := p.scanOAM(16)
	if len(hits) != 1 {
		t.Fatalf("expected only the X>0 sprite to be selected, got %d hits", len(hits))
	}
	if hits[0].x != 50 {
		t.Fatalf("expected the surviving sprite's X=50, got %d", hits[0].x)
	}
}

func TestWindowLineCounterIncrementsOnlyWhenDrawn(t *testing.T) {
	p := newTestPPU(false)
	p.lcdc = 0x80 | 0x01 | 0x20 // LCD, BG, window on
	p.wy = 10
	p.wx = 7 // window X start = 0

	for line := byte(0); line < 10; line++ {
		p.ly = line
		p.renderScanline()
	}
	if p.winLine != 0 {
		t.Fatalf("winLine should stay 0 before WY is reached, got %d", p.winLine)
	}

	p.ly = 10
	p.renderScanline()
	if p.winLine != 1 {
		t.Fatalf("winLine should be 1 after the first window-drawing scanline, got %d", p.winLine)
	}

	p.ly = 11
	p.renderScanline()
	if p.winLine != 2 {
		t.Fatalf("winLine should be 2 after the second window-drawing scanline, got %d", p.winLine)
	}
}

func TestWindowLineSurvivesDisableToggle(t *testing.T) {
	p := newTestPPU(false)
	p.lcdc = 0x80 | 0x01 | 0x20
	p.wy = 0
	p.wx = 7

	p.ly = 0
	p.renderScanline() // winLine -> 1

	p.lcdc &^= 0x20 // window disabled for this line only
	p.ly = 1
	p.renderScanline() // no draw, winLine unchanged

	p.lcdc |= 0x20 // re-enabled
	p.ly = 2
	p.renderScanline() // resumes from where it left off, winLine -> 2

	if p.winLine != 2 {
		t.Fatalf("winLine = %d, want 2 (resumed after the mid-frame disable, not reset)", p.winLine)
	}
}

func TestWindowNotVisibleWhenWXTooLarge(t *testing.T) {
	p := newTestPPU(false)
	p.lcdc = 0x80 | 0x01 | 0x20
	p.wy = 0
	p.wx = 200 // WX-7 >= ScreenW: window produces no pixels on any line

	for line := byte(0); line < 5; line++ {
		p.ly = line
		p.renderScanline()
	}
	if p.winLine != 0 {
		t.Fatalf("winLine should remain 0 when WX places the window off-screen, got %d", p.winLine)
	}
}

func TestDMGPaletteResolution(t *testing.T) {
	c := dmgColor(0xE4, 2) // 0b11_10_01_00, index 2 -> bits 5:4 = 10 = shade 2
	if c != dmgShades[2] {
		t.Fatalf("expected shade 2, got %+v", c)
	}
}

func TestCGBPaletteResolution(t *testing.T) {
	var ram [64]byte
	ram[2] = 0x1F // low byte of color 1, palette 0: R5=31,G5=0,B5=0
	ram[3] = 0x00
	c := cgbColor(&ram, 0, 1)
	if c.R != 0xFF || c.G != 0 || c.B != 0 {
		t.Fatalf("expected pure red, got %+v", c)
	}
}

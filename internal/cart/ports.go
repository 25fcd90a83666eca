package cart

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// A Cartridge occupies two disjoint address windows (ROM at 0x0000-0x7FFF,
// external RAM at 0xA000-0xBFFF) plus, for MBC3, a real-time RTC tick that
// has no address at all. The bus only understands one contiguous range per
// component, so the machine package registers separate adapters sharing the
// same underlying Cartridge instead of one. The ROM window's adapter is
// machine.bootPort, since it also overlays the boot ROM; RAMPort and Ticker
// cover the other two.

// RAMPort maps external RAM at 0xA000-0xBFFF, translating the bus's
// range-relative offset back to the absolute address Cartridge expects.
type RAMPort struct{ Cart Cartridge }

func (p RAMPort) Read(offset uint16) byte     { return p.Cart.Read(0xA000 + offset) }
func (p RAMPort) Write(offset uint16, v byte) { p.Cart.Write(0xA000+offset, v) }
func (p RAMPort) Step(*bus.Bus)               {}

// Ticker drives a Cartridge's Step (MBC3's RTC counter; a no-op for every
// other controller) without occupying any address range.
type Ticker struct{ Cart Cartridge }

func (t Ticker) Read(uint16) byte     { return 0xFF }
func (t Ticker) Write(uint16, byte)   {}
func (t Ticker) Step(b *bus.Bus)      { t.Cart.Step(b) }

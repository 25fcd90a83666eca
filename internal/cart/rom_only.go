package cart

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// ROMOnly is a cartridge with no MBC and no external RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly { return &ROMOnly{rom: rom} }

func (c *ROMOnly) Read(addr uint16) byte {
	if addr < 0x8000 && int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0xFF
}

func (c *ROMOnly) Write(uint16, byte) {}
func (c *ROMOnly) Step(*bus.Bus)      {}

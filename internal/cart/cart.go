// Package cart implements the cartridge slot: header parsing and the memory
// bank controllers (ROM-only, MBC1, MBC3 with RTC, MBC5) that the bus maps
// into 0x0000-0x7FFF and 0xA000-0xBFFF.
package cart

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// Cartridge is the minimal interface the bus needs for ROM/external-RAM
// banking. It is also a bus.Component so MBC3's RTC can tick on its own
// schedule without the bus knowing anything special about cartridges.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	Step(b *bus.Bus)
}

// Battery is implemented by cartridges whose external RAM (and, for MBC3,
// RTC registers) must survive a restart. RAM returns a snapshot suitable for
// writing straight to a "<rom>.save" sidecar; LoadRAM restores one.
type Battery interface {
	HasBattery() bool
	RAM() []byte
	// LoadRAM restores a sidecar snapshot previously produced by RAM. It
	// reports false and leaves RAM untouched (still zeroed from New) if data
	// isn't exactly the expected size, so a corrupt or stale .save file is
	// rejected rather than silently truncated into cartridge RAM.
	LoadRAM(data []byte) bool
	// Dirty reports whether RAM has changed since the last Flushed call.
	Dirty() bool
	Flushed()
}

// New picks an implementation based on the ROM header's cartridge-type
// byte. Unknown types fall back to ROM-only so homebrew and test ROMs with
// nonstandard headers still load.
func New(rom []byte) Cartridge {
	h, err := ParseHeader(rom)
	if err != nil {
		return NewROMOnly(rom)
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom)
	case 0x01, 0x02:
		return NewMBC1(rom, h.RAMSizeBytes, false)
	case 0x03:
		return NewMBC1(rom, h.RAMSizeBytes, true)
	case 0x0F, 0x10:
		return NewMBC3(rom, h.RAMSizeBytes, true, true)
	case 0x11:
		return NewMBC3(rom, h.RAMSizeBytes, false, false)
	case 0x12:
		return NewMBC3(rom, h.RAMSizeBytes, false, false)
	case 0x13:
		return NewMBC3(rom, h.RAMSizeBytes, true, false)
	case 0x19, 0x1A:
		return NewMBC5(rom, h.RAMSizeBytes, false)
	case 0x1B:
		return NewMBC5(rom, h.RAMSizeBytes, true)
	case 0x1C, 0x1D:
		return NewMBC5(rom, h.RAMSizeBytes, false)
	case 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes, true)
	default:
		return NewROMOnly(rom)
	}
}

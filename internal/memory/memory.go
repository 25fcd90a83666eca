// Package memory provides the generic leaf components of the bus: plain RAM
// blocks and single-byte registers with a reset value and a write mask.
// Everything else (WRAM banking, cartridge RAM, PPU VRAM/OAM) is built on
// top of these two primitives.
package memory

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// RAM is a flat, unbanked block of bytes. It satisfies bus.Component with a
// no-op Step since it is always registered with Freq 0 (passive).
type RAM struct {
	data []byte
}

// NewRAM allocates a zero-initialized block of the given size.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

func (r *RAM) Read(offset uint16) byte {
	if int(offset) >= len(r.data) {
		return 0xFF
	}
	return r.data[offset]
}

func (r *RAM) Write(offset uint16, value byte) {
	if int(offset) >= len(r.data) {
		return
	}
	r.data[offset] = value
}

func (r *RAM) Step(*bus.Bus) {}

// Len reports the block size in bytes.
func (r *RAM) Len() int { return len(r.data) }

// Raw exposes the backing slice for bulk access (save states, DMA sources).
func (r *RAM) Raw() []byte { return r.data }

// Register is a single byte with a reset value and a write mask: bits
// outside the mask are pinned to their reset-time value and cannot be
// changed by bus writes (they model the fixed/unused bits hardware read
// back as constant).
type Register struct {
	value byte
	mask  byte
	fixed byte // bits outside mask, captured from the reset value
}

// NewRegister creates a register whose writable bits are given by
// writeMask; all other bits permanently read back as they are in init.
func NewRegister(init, writeMask byte) *Register {
	return &Register{
		value: init & writeMask,
		mask:  writeMask,
		fixed: init &^ writeMask,
	}
}

func (r *Register) Read(uint16) byte { return r.fixed | (r.value & r.mask) }

func (r *Register) Write(_ uint16, value byte) {
	r.value = value & r.mask
}

func (r *Register) Step(*bus.Bus) {}

// Get returns the full current byte (fixed bits included).
func (r *Register) Get() byte { return r.fixed | (r.value & r.mask) }

// Set forces the writable bits directly, bypassing the bus — used by
// peripherals that need to update a register they also own (e.g. the PPU
// setting STAT's mode bits).
func (r *Register) Set(value byte) { r.value = value & r.mask }

// SetBit sets or clears a single bit directly, regardless of the write mask
// (used for interrupt-flag-style registers where hardware, not software,
// owns certain bits).
func (r *Register) SetBit(bit uint, v bool) {
	full := r.fixed | r.value
	if v {
		full |= 1 << bit
	} else {
		full &^= 1 << bit
	}
	r.value = full & r.mask
	r.fixed = full &^ r.mask
}

// Bit reports whether a given bit is currently set.
func (r *Register) Bit(bit uint) bool {
	return (r.Get()>>bit)&1 != 0
}

// Package bus implements the address-mapped, clock-fanned-out core of the
// emulator: a single arena that owns every peripheral and sequences them by
// T-cycle. Peripherals never hold owning references to each other; the ones
// that need sibling state (PPU direct VRAM access, cartridge boot-overlay
// lookups) take a *Bus back-reference at step time instead.
package bus

import "fmt"

// FastHz is the bus's own tick rate: twice the DMG T-cycle rate (2^23 Hz).
// Running the bus at double the real T-cycle rate lets a single integer
// divisor express both a component's normal frequency and its doubled
// frequency in CGB double-speed mode, without ever needing a fractional
// divisor.
const FastHz uint64 = 8388608

// NativeHz is the real Game Boy T-cycle rate components are specified
// against (the divisor any Spec.Freq should usually be some power-of-two
// fraction of).
const NativeHz uint64 = 4194304

// Component is anything the Bus can address and/or clock. Implementations
// are expected to be cheap to call: Step must return promptly, per the
// single-threaded cooperative scheduling model (see spec §5).
type Component interface {
	// Read returns the byte at offset, an address already translated to be
	// relative to this component's Init address.
	Read(offset uint16) byte
	// Write stores value at offset.
	Write(offset uint16, value byte)
	// Step advances the component by one of its own clock ticks. bus is
	// provided so a component can recurse into Read/Write on other
	// components (e.g. OAM DMA reading cartridge ROM).
	Step(bus *Bus)
}

// Spec describes how a Component is wired onto the bus.
type Spec struct {
	Name string
	// Init and Size describe the addressable range [Init, Init+Size). A
	// Size of zero means the component is not addressable (e.g. the CPU).
	Init uint16
	Size uint16
	// Freq is the component's step frequency in Hz at normal (single)
	// speed. Zero means passive: Step is never called.
	Freq uint64
	// SpeedScaled marks components whose frequency doubles while the bus
	// is in CGB double-speed mode (CPU, Timer). PPU/APU/HDMA/
	// Joypad/Cartridge run at a fixed real-time rate regardless of CPU
	// speed and leave this false.
	SpeedScaled bool
}

type entry struct {
	spec     Spec
	comp     Component
	divisor  uint64 // FastHz / Freq at normal speed
}

// Bus is the arena that owns every attached Component and fans out Step
// calls by T-cycle. It is the only thing in the emulator holding onto
// component pointers; everything else reaches a sibling through the Bus.
type Bus struct {
	entries []entry
	cycle   uint64

	doubleSpeed bool

	// cpuPaused is set by the HDMA component while a general-purpose or
	// HBlank transfer has the CPU halted (HDMA5 bit 7 low). The CPU
	// component consults this at the top of its own Step.
	cpuPaused bool
}

// New returns an empty Bus. Components are wired in with Add.
func New() *Bus {
	return &Bus{}
}

// Add registers a component. It fails if the component's addressable range
// overlaps an already-registered one, or if its declared frequency does not
// evenly divide FastHz.
func (b *Bus) Add(c Component, spec Spec) error {
	if spec.Size != 0 {
		newEnd := uint32(spec.Init) + uint32(spec.Size)
		for _, e := range b.entries {
			if e.spec.Size == 0 {
				continue
			}
			existingEnd := uint32(e.spec.Init) + uint32(e.spec.Size)
			if uint32(spec.Init) < existingEnd && uint32(e.spec.Init) < newEnd {
				return fmt.Errorf("bus: %q range [%#04x,%#04x) overlaps %q [%#04x,%#04x)",
					spec.Name, spec.Init, newEnd, e.spec.Name, e.spec.Init, existingEnd)
			}
		}
	}
	var divisor uint64
	if spec.Freq != 0 {
		if FastHz%spec.Freq != 0 {
			return fmt.Errorf("bus: %q frequency %d Hz does not divide bus frequency %d Hz", spec.Name, spec.Freq, FastHz)
		}
		divisor = FastHz / spec.Freq
		if spec.SpeedScaled && divisor%2 != 0 {
			return fmt.Errorf("bus: %q is speed-scaled but its divisor %d is not even", spec.Name, divisor)
		}
	}
	b.entries = append(b.entries, entry{spec: spec, comp: c, divisor: divisor})
	return nil
}

// Read routes a CPU-visible address to the first component whose range
// contains it. Unmapped addresses read back as 0xFF, matching the floating
// bus behavior of real hardware.
func (b *Bus) Read(addr uint16) byte {
	for _, e := range b.entries {
		if e.spec.Size == 0 {
			continue
		}
		if addr >= e.spec.Init && uint32(addr) < uint32(e.spec.Init)+uint32(e.spec.Size) {
			return e.comp.Read(addr - e.spec.Init)
		}
	}
	return 0xFF
}

// Write routes a CPU-visible address to the first component whose range
// contains it. Unmapped addresses are silently dropped.
func (b *Bus) Write(addr uint16, value byte) {
	for _, e := range b.entries {
		if e.spec.Size == 0 {
			continue
		}
		if addr >= e.spec.Init && uint32(addr) < uint32(e.spec.Init)+uint32(e.spec.Size) {
			e.comp.Write(addr-e.spec.Init, value)
			return
		}
	}
}

// Step advances the global cycle counter by one fast tick and invokes Step
// on every component whose divisor divides evenly into it.
func (b *Bus) Step() {
	b.cycle++
	for i := range b.entries {
		e := &b.entries[i]
		if e.spec.Freq == 0 {
			continue
		}
		div := e.divisor
		if e.spec.SpeedScaled && b.doubleSpeed {
			div /= 2
		}
		if div == 0 {
			div = 1
		}
		if b.cycle%div == 0 {
			e.comp.Step(b)
		}
	}
}

// Cycle returns the current fast-tick counter, mostly useful for tests.
func (b *Bus) Cycle() uint64 { return b.cycle }

// DoubleSpeed reports whether the bus is currently running CGB components in
// double-speed mode.
func (b *Bus) DoubleSpeed() bool { return b.doubleSpeed }

// SetDoubleSpeed is called by the CPU after a STOP-driven speed switch
// completes.
func (b *Bus) SetDoubleSpeed(v bool) { b.doubleSpeed = v }

// CPUPaused reports whether an HDMA transfer currently holds the CPU.
func (b *Bus) CPUPaused() bool { return b.cpuPaused }

// SetCPUPaused is called by the HDMA component.
func (b *Bus) SetCPUPaused(v bool) { b.cpuPaused = v }

// Package irq holds the two interrupt-control registers (IE, IF) shared by
// every component that can request an interrupt and by the CPU that
// dispatches them. Bit order is fixed by hardware: VBlank, LCD STAT, Timer,
// Serial, Joypad, lowest bit first and highest priority.
package irq

import "github.com/pcineverdies/gameboy-emulator/internal/memory"

// Interrupt bit indices, also the dispatch priority order (lowest first).
const (
	VBlank = 0
	LCDSTAT = 1
	Timer   = 2
	Serial  = 3
	Joypad  = 4
)

// Controller wraps the IE (0xFFFF) and IF (0xFF0F) registers. Both are also
// registered directly on the bus as addressable components; Controller is
// the non-owning handle every other component uses to request or inspect
// interrupts without going through a full bus address decode.
type Controller struct {
	IE *memory.Register
	IF *memory.Register
}

// New constructs fresh IE/IF registers at their documented reset values.
// IF's top three bits always read back as 1.
func New() *Controller {
	return &Controller{
		IE: memory.NewRegister(0x00, 0xFF),
		IF: memory.NewRegister(0xE0, 0x1F),
	}
}

// Request sets the IF bit for the given interrupt source.
func (c *Controller) Request(bit uint) { c.IF.SetBit(bit, true) }

// Clear clears the IF bit for the given interrupt source (done by the CPU
// on dispatch, or by software writing IF directly).
func (c *Controller) Clear(bit uint) { c.IF.SetBit(bit, false) }

// Pending returns the IE & IF mask restricted to the five real bits; any
// nonzero bit here means an interrupt is latched and enabled.
func (c *Controller) Pending() byte {
	return c.IE.Get() & c.IF.Get() & 0x1F
}

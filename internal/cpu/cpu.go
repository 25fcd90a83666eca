// Package cpu implements the Sharp LR35902-class interpreter: register
// file, full opcode decode (including the CB-prefixed page), ALU flag
// semantics, HALT/STOP/EI-delay quirks, and interrupt dispatch.
//
// The CPU is a bus.Component stepped once per M-cycle (spec §4.2 describes
// a named micro-state enum per M-cycle; this implementation decodes and
// fully executes an instruction on the M-cycle its opcode is fetched, then
// reports the remaining M-cycles as idle Step calls — see DESIGN.md. The
// instruction's M-cycle count is kept, but all of its memory accesses happen
// on its first M-cycle, at far less code than a literal STATE_1..STATE_I_5
// switch).
package cpu

import (
	"fmt"

	"github.com/pcineverdies/gameboy-emulator/internal/bus"
	"github.com/pcineverdies/gameboy-emulator/internal/irq"
	"github.com/pcineverdies/gameboy-emulator/internal/memory"
)

// CPU is the SM83 register file plus the bus/IRQ handles it needs to fetch,
// decode, execute, and service interrupts.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16

	IME bool

	halted  bool
	haltBug bool

	// eiDelay counts down from 2 to 0 after EI; IME only becomes true when
	// it reaches zero, so the instruction immediately following EI still
	// runs with interrupts disabled (spec §4.2).
	eiDelay int

	// remaining is the count of idle Step calls left before the next
	// fetch/decode/execute, i.e. (instruction M-cycles - 1).
	remaining int

	// stopCountdown counts the 2050 M-cycle wait after a CGB speed-switch
	// STOP, zero otherwise.
	stopCountdown int

	bus  *bus.Bus
	irqc *irq.Controller
	key1 *memory.Register // CGB KEY1 register; nil on the classic tier

	// Trace, if set, is called with the PC and opcode of every instruction
	// fetch (not interrupts, not idle cycles). The tests use it to count
	// fetches; cmd/gbemu does not set it.
	Trace func(pc uint16, op byte)
}

// New constructs a CPU wired to bus for memory access and irqc for
// interrupt bookkeeping. key1 is nil for the classic tier.
func New(b *bus.Bus, irqc *irq.Controller, key1 *memory.Register) *CPU {
	return &CPU{bus: b, irqc: irqc, key1: key1, SP: 0xFFFE}
}

// ResetPostBoot sets the registers to the documented DMG post-boot-ROM
// state, for running without a boot ROM image (spec §1(d), §9 Open
// Question on boot ROM bytes).
func (c *CPU) ResetPostBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP, c.PC = 0xFFFE, 0x0100
	c.IME = false
	c.halted, c.haltBug = false, false
	c.eiDelay, c.remaining, c.stopCountdown = 0, 0, 0
}

// ResetWithBootROM leaves PC at 0 so execution starts at the overlayed boot
// ROM; registers are left at their Go zero values, matching real hardware
// power-on state closely enough for boot code that initializes them itself.
func (c *CPU) ResetWithBootROM() {
	c.PC = 0x0000
	c.SP = 0xFFFE
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

// fetchOpcode is used only for the first byte of a new instruction: it
// honors the halt bug by skipping the PC increment exactly once.
func (c *CPU) fetchOpcode() byte {
	op := c.bus.Read(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	return op
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read8(addr)) | uint16(c.read8(addr+1))<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// Read and Write complete bus.Component; the CPU is registered with Size 0,
// so the bus never routes an address to it.
func (c *CPU) Read(uint16) byte   { return 0xFF }
func (c *CPU) Write(uint16, byte) {}

// Step implements bus.Component. It is invoked once per CPU M-cycle (see
// package doc and DESIGN.md for the frequency math).
func (c *CPU) Step(b *bus.Bus) {
	// 1. HDMA (color tier) can pause the CPU entirely.
	if b.CPUPaused() {
		return
	}

	// 2. STOP speed-switch wait.
	if c.stopCountdown > 0 {
		c.stopCountdown--
		if c.stopCountdown == 0 {
			next := !b.DoubleSpeed()
			b.SetDoubleSpeed(next)
			if c.key1 != nil {
				c.key1.SetBit(7, next)
				c.key1.SetBit(0, false)
			}
		}
		return
	}

	// 3. Idle M-cycles left over from the last instruction.
	if c.remaining > 0 {
		c.remaining--
		return
	}

	// 4. EI delay: IME becomes true only once the countdown reaches zero,
	// so the instruction right after EI still runs with IME false.
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	// 5. HALT: stay halted (1 idle M-cycle) until an interrupt is pending,
	// regardless of IME; IME alone decides whether that pending interrupt
	// gets serviced or just wakes the CPU back into the instruction stream.
	if c.halted {
		if c.irqc.Pending() == 0 {
			return
		}
		c.halted = false
	}

	// 6. Interrupt dispatch takes priority over fetching a new opcode.
	if c.IME && c.irqc.Pending() != 0 {
		c.dispatchInterrupt()
		return
	}

	// 7. Fetch, decode, execute one full instruction; charge the leftover
	// M-cycles as idle Step calls.
	pc := c.PC
	op := c.fetchOpcode()
	if c.Trace != nil {
		c.Trace(pc, op)
	}
	mCycles := c.execute(op)
	if mCycles < 1 {
		mCycles = 1
	}
	c.remaining = mCycles - 1
}

// dispatchInterrupt services the lowest-numbered pending interrupt. Real
// hardware spreads this over 5 M-cycles (2 idle, 2 push, 1 jump); this
// implementation performs the state change on the M-cycle dispatch begins
// and reports the remaining 4 as idle Step calls.
func (c *CPU) dispatchInterrupt() {
	c.halted = false
	c.IME = false
	pending := c.irqc.Pending()
	bit := uint(5)
	for i := uint(0); i < 5; i++ {
		if pending&(1<<i) != 0 {
			bit = i
			break
		}
	}
	c.push16(c.PC)
	if bit == 5 {
		// Cancelled between latch and dispatch: jump to 0x0000 instead.
		c.PC = 0x0000
	} else {
		c.irqc.Clear(bit)
		c.PC = 0x40 + uint16(bit)*8
	}
	c.remaining = 4
}

// errInvalidOpcode is raised for the 11 unused opcode bytes. Real hardware
// locks up; this is treated as a fatal emulator-side error per spec §7.
func errInvalidOpcode(op byte) {
	panic(fmt.Sprintf("cpu: invalid opcode 0x%02X", op))
}

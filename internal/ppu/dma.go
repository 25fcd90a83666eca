package ppu

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// DMAPort is the OAM DMA trigger register at 0xFF46. Writing it starts a
// transfer; actual byte copying happens once per M-cycle in Step, driven at
// a fixed real-time rate so the transfer takes the same wall-clock time in
// CGB double-speed mode as at normal speed.
type DMAPort struct {
	P      *PPU
	source byte
}

func (d *DMAPort) Read(uint16) byte { return d.source }

func (d *DMAPort) Write(_ uint16, value byte) {
	d.source = value
	d.P.StartOAMDMA(uint16(value) << 8)
}

func (d *DMAPort) Step(b *bus.Bus) { d.P.StepOAMDMA(b) }

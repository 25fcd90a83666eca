// Package serial implements SB/SC (0xFF01-0xFF02). No link cable is ever
// attached, so a requested transfer completes synchronously: the incoming
// byte is treated as 0xFF (a disconnected pull-up) and the Serial interrupt
// fires immediately instead of after the real ~8-bit shift-clock delay.
package serial

import (
	"io"

	"github.com/pcineverdies/gameboy-emulator/internal/bus"
	"github.com/pcineverdies/gameboy-emulator/internal/irq"
)

// Serial is a bus.Component mapped at 0xFF01-0xFF02.
type Serial struct {
	sb byte
	sc byte

	irqc *irq.Controller
	sw   io.Writer // optional debug sink; SB is echoed to it on every transfer
}

func New(irqc *irq.Controller) *Serial { return &Serial{irqc: irqc} }

// SetSerialWriter attaches an optional debug sink that every transferred SB
// byte is echoed to (e.g. -trace wiring a test ROM's serial-port text
// output to stdout). Passing nil detaches it.
func (s *Serial) SetSerialWriter(w io.Writer) { s.sw = w }

func (s *Serial) Read(offset uint16) byte {
	if offset == 0 {
		return s.sb
	}
	return 0x7E | s.sc&0x81 // bits 6-1 always read back as 1
}

func (s *Serial) Write(offset uint16, value byte) {
	if offset == 0 {
		s.sb = value
		return
	}
	s.sc = value & 0x81
	if s.sc&0x80 != 0 && s.sc&0x01 != 0 {
		// Internal-clock transfer requested with nothing on the line: shift
		// in all-ones and finish immediately.
		if s.sw != nil {
			s.sw.Write([]byte{s.sb})
		}
		s.sb = 0xFF
		s.sc &^= 0x80
		s.irqc.Request(irq.Serial)
	}
}

func (s *Serial) Step(*bus.Bus) {}

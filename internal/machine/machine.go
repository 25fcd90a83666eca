// Package machine wires every component onto a single Bus in the fixed
// order hardware's address decode implies, and drives the cooperative
// step loop a host frontend calls once per frame.
package machine

import (
	"errors"
	"io"

	"github.com/pcineverdies/gameboy-emulator/internal/apu"
	"github.com/pcineverdies/gameboy-emulator/internal/audio"
	"github.com/pcineverdies/gameboy-emulator/internal/bus"
	"github.com/pcineverdies/gameboy-emulator/internal/cart"
	"github.com/pcineverdies/gameboy-emulator/internal/cpu"
	"github.com/pcineverdies/gameboy-emulator/internal/hdma"
	"github.com/pcineverdies/gameboy-emulator/internal/input"
	"github.com/pcineverdies/gameboy-emulator/internal/irq"
	"github.com/pcineverdies/gameboy-emulator/internal/joypad"
	"github.com/pcineverdies/gameboy-emulator/internal/memory"
	"github.com/pcineverdies/gameboy-emulator/internal/ppu"
	"github.com/pcineverdies/gameboy-emulator/internal/serial"
	"github.com/pcineverdies/gameboy-emulator/internal/timer"
	"github.com/pcineverdies/gameboy-emulator/internal/video"
	"github.com/pcineverdies/gameboy-emulator/internal/wram"
)

// mCycleHz is the M-cycle (4 T-cycle) real-time rate every SpeedScaled
// component is specified against.
const mCycleHz = bus.NativeHz / 4

// flushThreshold is the number of battery-RAM writes after which NeedsFlush
// reports true (spec §12). Machine itself never writes the save file, and
// cmd/gbemu does not poll NeedsFlush: it saves only on shutdown.
const flushThreshold = 500_000

// countingRAMPort wraps cart.RAMPort so Machine can track how many
// external-RAM writes have happened since the last flush, without the bus
// needing any write-tap mechanism of its own.
type countingRAMPort struct {
	cart.RAMPort
	m *Machine
}

func (p countingRAMPort) Write(offset uint16, v byte) {
	p.RAMPort.Write(offset, v)
	p.m.saveWrites++
}

// Machine owns the bus and every peripheral, plus the host-facing sink/
// source handles and the save-file bookkeeping spec §6/§12 describe.
type Machine struct {
	bus  *bus.Bus
	irqc *irq.Controller
	cpu  *cpu.CPU
	cart cart.Cartridge
	ppu  *ppu.PPU
	apu  *apu.APU
	tim  *timer.Timer
	pad  *joypad.Joypad
	ser  *serial.Serial
	hd   *hdma.HDMA // nil on the classic tier

	bootEnabled bool

	Config Config
	Flags  RuntimeFlags

	saveWrites int
}

// New parses rom's header, builds the matching cartridge controller, wires
// every component onto a fresh bus in hardware's fixed address-decode
// order, and resets the CPU either into the supplied boot ROM or straight
// to the documented post-boot state.
func New(cfg Config, rom []byte) (*Machine, error) {
	if len(rom) == 0 {
		return nil, errors.New("machine: empty ROM image")
	}

	m := &Machine{Config: cfg, Flags: RuntimeFlags{Volume: 10}}
	m.irqc = irq.New()
	m.cart = cart.New(rom)
	m.ppu = ppu.New(m.irqc, cfg.CGB)
	m.apu = apu.New(cfg.SampleRate)
	m.tim = timer.New(m.irqc)
	m.pad = joypad.New(m.irqc)
	m.ser = serial.New(m.irqc)
	w := wram.New(cfg.CGB)

	var key1 *memory.Register
	if cfg.CGB {
		key1 = memory.NewRegister(0x7E, 0x01)
		m.hd = hdma.New()
	}

	m.bus = bus.New()
	m.bootEnabled = len(cfg.BootROM) >= 0x100

	// Registration order: cartridge ROM (with the boot overlay), RAM and
	// RTC, WRAM + echo, the PPU's VRAM/OAM/register/DMA/palette ports, APU,
	// timer, joypad, serial, interrupt-flag register, boot-disable, HRAM,
	// IE register, SVBK, then HDMA and KEY1 on the color tier, and last the
	// CPU (which has no address range of its own).
	type adder struct {
		c    bus.Component
		spec bus.Spec
	}
	romOverlay := &bootPort{rom: cfg.BootROM, cart: m.cart, enabled: &m.bootEnabled}
	adds := []adder{
		{romOverlay, bus.Spec{Name: "cart-rom", Init: 0x0000, Size: 0x8000}},
		{countingRAMPort{cart.RAMPort{Cart: m.cart}, m}, bus.Spec{Name: "cart-ram", Init: 0xA000, Size: 0x2000}},
		{cart.Ticker{Cart: m.cart}, bus.Spec{Name: "cart-rtc", Freq: 1}},

		{wram.MainPort{W: w}, bus.Spec{Name: "wram", Init: 0xC000, Size: 0x2000}},
		{wram.EchoPort{W: w}, bus.Spec{Name: "wram-echo", Init: 0xE000, Size: 0x1E00}},

		{m.ppu, bus.Spec{Name: "vram", Init: 0x8000, Size: 0x2000, Freq: bus.NativeHz}},
		{ppu.OAMPort{P: m.ppu}, bus.Spec{Name: "oam", Init: 0xFE00, Size: 0xA0}},
		{ppu.RegPort{P: m.ppu, Base: 0xFF40}, bus.Spec{Name: "ppu-regs-lo", Init: 0xFF40, Size: 6}},
		{&ppu.DMAPort{P: m.ppu}, bus.Spec{Name: "oam-dma", Init: 0xFF46, Size: 1, Freq: mCycleHz}},
		{ppu.RegPort{P: m.ppu, Base: 0xFF47}, bus.Spec{Name: "ppu-regs-hi", Init: 0xFF47, Size: 5}},
		{ppu.VBKPort{P: m.ppu}, bus.Spec{Name: "vbk", Init: 0xFF4F, Size: 1}},
		{ppu.CGBPalettePort{P: m.ppu}, bus.Spec{Name: "cgb-palettes", Init: 0xFF68, Size: 4}},

		{m.apu, bus.Spec{Name: "apu", Init: 0xFF10, Size: 0x30, Freq: bus.NativeHz}},

		{m.tim, bus.Spec{Name: "timer", Init: 0xFF04, Size: 4, Freq: mCycleHz, SpeedScaled: true}},

		{m.pad, bus.Spec{Name: "joypad", Init: 0xFF00, Size: 1}},

		{m.ser, bus.Spec{Name: "serial", Init: 0xFF01, Size: 2}},

		{m.irqc.IF, bus.Spec{Name: "if", Init: 0xFF0F, Size: 1}},

		{&bootDisable{enabled: &m.bootEnabled}, bus.Spec{Name: "boot-disable", Init: 0xFF50, Size: 1}},

		{memory.NewRAM(0x7F), bus.Spec{Name: "hram", Init: 0xFF80, Size: 0x7F}},

		{m.irqc.IE, bus.Spec{Name: "ie", Init: 0xFFFF, Size: 1}},

		{wram.SVBKPort{W: w}, bus.Spec{Name: "svbk", Init: 0xFF70, Size: 1}},
	}
	if cfg.CGB {
		adds = append(adds,
			adder{m.hd, bus.Spec{Name: "hdma", Init: 0xFF51, Size: 5, Freq: mCycleHz}},
			adder{key1, bus.Spec{Name: "key1", Init: 0xFF4D, Size: 1}},
		)
	}

	for _, a := range adds {
		if a.c == nil {
			continue
		}
		if err := m.bus.Add(a.c, a.spec); err != nil {
			return nil, err
		}
	}

	m.cpu = cpu.New(m.bus, m.irqc, key1)
	if err := m.bus.Add(m.cpu, bus.Spec{Name: "cpu", Freq: mCycleHz, SpeedScaled: true}); err != nil {
		return nil, err
	}

	if m.bootEnabled {
		m.cpu.ResetWithBootROM()
	} else {
		m.cpu.ResetPostBoot()
		m.bootEnabled = false
	}

	return m, nil
}

// SetSerialWriter attaches an optional debug sink every byte shifted out
// over SB is echoed to (spec §12's serial-stub fidelity note); used by
// cmd/gbemu's -trace flag.
func (m *Machine) SetSerialWriter(w io.Writer) { m.ser.SetSerialWriter(w) }

// LoadSave restores battery-backed RAM from a "<rom>.save" sidecar's raw
// bytes, per spec §6. It reports false if the cartridge has no battery, or
// if data is the wrong size to be that cartridge's save file; cartridge RAM
// is left zeroed (as New left it) rather than partially overwritten, so the
// caller can warn without the emulator ever crashing on a stale sidecar.
func (m *Machine) LoadSave(data []byte) bool {
	b, ok := m.cart.(cart.Battery)
	if !ok || !b.HasBattery() {
		return false
	}
	return b.LoadRAM(data)
}

// SaveData returns the current battery-RAM snapshot ready to write to the
// sidecar file, and whether the cartridge has a battery at all.
func (m *Machine) SaveData() ([]byte, bool) {
	b, ok := m.cart.(cart.Battery)
	if !ok || !b.HasBattery() {
		return nil, false
	}
	return b.RAM(), true
}

// Flush marks the current battery snapshot as durably written, resetting
// the write counter; the frontend calls this right after it writes
// SaveData's bytes to disk. cmd/gbemu does so only on shutdown.
func (m *Machine) Flush() {
	if b, ok := m.cart.(cart.Battery); ok {
		b.Flushed()
	}
	m.saveWrites = 0
}

// NeedsFlush reports whether enough battery-RAM writes have accumulated
// since the last Flush to warrant proactively saving (spec §12's
// ~500k-write threshold).
func (m *Machine) NeedsFlush() bool {
	b, ok := m.cart.(cart.Battery)
	return ok && b.HasBattery() && b.Dirty() && m.saveWrites >= flushThreshold
}

// StepFrame runs the bus one fast tick at a time until the PPU completes a
// frame or the runtime flags request an exit, implementing spec §5's
// single-threaded cooperative scheduling loop.
func (m *Machine) StepFrame() (frame [ppu.ScreenH][ppu.ScreenW]ppu.Pixel, ready bool) {
	for !m.Flags.ExitRequested {
		m.bus.SetDoubleSpeed(m.Flags.DoubleSpeed)
		m.bus.Step()
		m.Flags.DoubleSpeed = m.bus.DoubleSpeed()
		if f, ok := m.ppu.Frame(); ok {
			return f, true
		}
	}
	return frame, false
}

// Present converts a completed frame to the packed sink format and hands
// it to sink, so a frontend holding a video.Sink never needs to know about
// ppu.Pixel.
func (m *Machine) Present(sink video.Sink, f [ppu.ScreenH][ppu.ScreenW]ppu.Pixel) {
	buf := make([]uint32, video.Width*video.Height)
	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			p := f[y][x]
			buf[y*video.Width+x] = 0xFF000000 | uint32(p.R)<<16 | uint32(p.G)<<8 | uint32(p.B)
		}
	}
	sink.Present(buf)
}

// DrainAudio pulls every sample the APU has accumulated and queues it onto
// sink, applying RuntimeFlags.Volume as a host-side amplification factor
// (spec §9: volume is an amplification knob, not part of the mix itself).
func (m *Machine) DrainAudio(sink audio.Sink) {
	samples := m.apu.PullStereo(1 << 16)
	if len(samples) == 0 {
		return
	}
	if m.Flags.Volume != 10 {
		scale := float64(m.Flags.Volume) / 10.0
		for i, s := range samples {
			samples[i] = clampI16(float64(s) * scale)
		}
	}
	sink.Queue(samples)
}

func clampI16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// PollInput reads every console button plus the volume/exit hotkeys from
// src and applies them: buttons go to the Joypad component, hotkeys adjust
// RuntimeFlags directly without ever reaching the bus (spec §12).
func (m *Machine) PollInput(src input.Source) {
	var mask byte
	if src.IsPressed(input.Right) {
		mask |= joypad.Right
	}
	if src.IsPressed(input.Left) {
		mask |= joypad.Left
	}
	if src.IsPressed(input.Up) {
		mask |= joypad.Up
	}
	if src.IsPressed(input.Down) {
		mask |= joypad.Down
	}
	if src.IsPressed(input.A) {
		mask |= joypad.A
	}
	if src.IsPressed(input.B) {
		mask |= joypad.B
	}
	if src.IsPressed(input.Select) {
		mask |= joypad.Select
	}
	if src.IsPressed(input.Start) {
		mask |= joypad.Start
	}
	m.pad.SetState(mask)

	if src.IsPressed(input.Exit) {
		m.Flags.ExitRequested = true
	}
	if src.IsPressed(input.VolumeUp) && m.Flags.Volume < 10 {
		m.Flags.Volume++
	}
	if src.IsPressed(input.VolumeDown) && m.Flags.Volume > 0 {
		m.Flags.Volume--
	}
}

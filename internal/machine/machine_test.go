package machine

import (
	"testing"

	"github.com/pcineverdies/gameboy-emulator/internal/irq"
	"github.com/pcineverdies/gameboy-emulator/internal/ppu"
)

// newTestROM builds a minimal valid cartridge image: cartType/ROMSizeCode
// set so cart.New dispatches correctly, program bytes placed at the
// post-boot entry point 0x0100, everything else (logo, checksums) left
// zeroed since nothing in this tree validates them.
func newTestROM(size int, cartType byte, romSizeCode byte, program []byte) []byte {
	rom := make([]byte, size)
	copy(rom[0x0100:], program)
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	return rom
}

func newTestMachine(t *testing.T, rom []byte) *Machine {
	t.Helper()
	m, err := New(Config{SampleRate: 48000}, rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// stepCPU steps the bus until the CPU has fetched n opcodes.
func stepCPU(m *Machine, n int) {
	fetched := 0
	m.cpu.Trace = func(uint16, byte) { fetched++ }
	for fetched < n {
		m.bus.Step()
	}
	m.cpu.Trace = nil
}

func TestLoadStoreLoop(t *testing.T) {
	// LD A,0x42; LD (0xC000),A; JR -2 (spins on itself forever).
	prog := []byte{0x3E, 0x42, 0xEA, 0x00, 0xC0, 0x18, 0xFE}
	rom := newTestROM(0x8000, 0x00, 0x00, prog)
	m := newTestMachine(t, rom)

	stepCPU(m, 3) // LD A,d8; LD (a16),A; first JR
	if got := m.bus.Read(0xC000); got != 0x42 {
		t.Fatalf("WRAM[0xC000] = %#x, want 0x42", got)
	}

	pc1 := m.cpu.PC
	stepCPU(m, 1)
	if m.cpu.PC != pc1 {
		t.Fatalf("PC should keep landing back on the JR at %#x, got %#x", pc1, m.cpu.PC)
	}
}

func TestSerialTransferRaisesIRQ(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, nil)
	m := newTestMachine(t, rom)

	m.bus.Write(0xFFFF, 0xFF) // IE: enable everything
	m.bus.Write(0xFF01, 0x55) // SB
	m.bus.Write(0xFF02, 0x81) // SC: internal clock, start transfer

	if m.irqc.Pending()&(1<<irq.Serial) == 0 {
		t.Fatalf("expected Serial interrupt pending after a synchronous transfer")
	}
	if sc := m.bus.Read(0xFF02); sc&0x80 != 0 {
		t.Fatalf("SC transfer-start bit should clear once the transfer completes, got %#x", sc)
	}
	if sb := m.bus.Read(0xFF01); sb != 0xFF {
		t.Fatalf("SB should read back 0xFF (disconnected line), got %#x", sb)
	}
}

func TestTimerOverflowRaisesIRQ(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, nil)
	m := newTestMachine(t, rom)

	m.bus.Write(0xFF05, 0xFF) // TIMA, one increment from overflow
	m.bus.Write(0xFF06, 0x7E) // TMA reload value
	m.bus.Write(0xFF07, 0x05) // enable, select 262144 Hz (fastest)
	m.bus.Write(0xFF0F, 0x00) // clear IF

	fired := false
	for i := 0; i < 20000 && !fired; i++ {
		m.bus.Step()
		if m.bus.Read(0xFF0F)&0x04 != 0 {
			fired = true
		}
	}
	if !fired {
		t.Fatalf("timer never requested its interrupt")
	}
	if got := m.bus.Read(0xFF05); got != 0x7E {
		t.Fatalf("TIMA = %#x after reload, want TMA's 0x7E", got)
	}
}

func TestMBC1BankSwitch(t *testing.T) {
	const bankSize = 0x4000
	const banks = 8
	rom := make([]byte, bankSize*banks)
	for b := 0; b < banks; b++ {
		rom[b*bankSize] = byte(b) // marker at the start of each bank
	}
	rom[0x0147] = 0x01 // MBC1, no RAM, no battery
	rom[0x0148] = 0x02 // 128KB / 8 banks

	m := newTestMachine(t, rom)

	for bank := 1; bank < banks; bank++ {
		m.bus.Write(0x2000, byte(bank)) // select ROM bank (low 5 bits)
		if got := m.bus.Read(0x4000); got != byte(bank) {
			t.Fatalf("bank %d: ROM[0x4000] = %#x, want %#x", bank, got, bank)
		}
	}

	// Bank 0 aliases to bank 1 in the switchable window (MBC1 quirk).
	m.bus.Write(0x2000, 0x00)
	if got := m.bus.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 0 should alias to bank 1, got marker %#x", got)
	}
}

func TestSaveRoundTripAndSizeMismatch(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x03 // MBC1+RAM+battery
	rom[0x0148] = 0x00
	rom[0x0149] = 0x02 // 8KB RAM

	m := newTestMachine(t, rom)
	m.bus.Write(0x0000, 0x0A) // enable cartridge RAM
	m.bus.Write(0xA000, 0x77)

	data, ok := m.SaveData()
	if !ok || len(data) != 8*1024 {
		t.Fatalf("SaveData: ok=%v len=%d, want ok=true len=8192", ok, len(data))
	}

	m2 := newTestMachine(t, rom)
	if !m2.LoadSave(data) {
		t.Fatalf("LoadSave rejected a correctly-sized save")
	}
	m2.bus.Write(0x0000, 0x0A)
	if got := m2.bus.Read(0xA000); got != 0x77 {
		t.Fatalf("restored RAM byte = %#x, want 0x77", got)
	}

	m3 := newTestMachine(t, rom)
	if m3.LoadSave(make([]byte, 100)) {
		t.Fatalf("LoadSave accepted a save file of the wrong size")
	}
	m3.bus.Write(0x0000, 0x0A)
	if got := m3.bus.Read(0xA000); got != 0 {
		t.Fatalf("RAM should stay zeroed after a rejected load, got %#x", got)
	}
}

func TestPPUFirstFrameUsesBGP(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, nil)
	m := newTestMachine(t, rom)

	// VRAM and OAM are left zeroed, so every BG pixel resolves to color
	// index 0; BGP maps index 0 to shade 0 (lightest).
	m.bus.Write(0xFF47, 0xE4) // BGP: 11 10 01 00
	m.bus.Write(0xFF40, 0x91) // LCDC: LCD on, BG on, BG tile data at 0x8000

	frame, ready := m.StepFrame()
	if !ready {
		t.Fatalf("expected a completed frame")
	}
	want := ppu.Pixel{R: 0xE0, G: 0xF8, B: 0xD0} // lightest DMG shade
	if frame[0][0] != want {
		t.Fatalf("frame[0][0] = %+v, want lightest shade %+v", frame[0][0], want)
	}
}

func TestChannel1TriggerProducesSamples(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, nil)
	m := newTestMachine(t, rom)

	m.bus.Write(0xFF11, 0x80) // NR11: duty 2 (1000 0111 pattern), starts high at phase 0
	m.bus.Write(0xFF12, 0xF0) // NR12: max volume, no envelope sweep
	m.bus.Write(0xFF13, 0x00) // NR13: frequency low byte
	m.bus.Write(0xFF14, 0xC7) // NR14: trigger, length enable, freq high bits

	for i := 0; i < 4000; i++ {
		m.bus.Step()
	}

	samples := m.apu.PullStereo(256)
	if len(samples) == 0 {
		t.Fatalf("expected channel 1 to have produced samples after triggering")
	}
	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected a non-silent waveform from a triggered, max-volume channel")
	}
}

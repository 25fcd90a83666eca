package cart

import "testing"

func fakeROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = byte(b) // first byte of each bank identifies it
	}
	return rom
}

func TestMBC1BankSwitchROM(t *testing.T) {
	m := NewMBC1(fakeROM(4), 0, false)
	m.Write(0x2000, 0x02) // select ROM bank 2
	if got := m.Read(0x4000); got != 2 {
		t.Fatalf("bank 2 byte = %d, want 2", got)
	}
}

func TestMBC1Bank0RemapsToBank1(t *testing.T) {
	m := NewMBC1(fakeROM(4), 0, false)
	m.Write(0x2000, 0x00) // requesting bank 0 aliases to bank 1
	if got := m.Read(0x4000); got != 1 {
		t.Fatalf("bank select 0 gave byte %d, want 1 (aliased)", got)
	}
}

func TestMBC1RAMRequiresEnable(t *testing.T) {
	m := NewMBC1(fakeROM(2), 0x2000, true)
	m.Write(0xA000, 0x42)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("RAM read before enable = %#x, want 0xFF", got)
	}
	m.Write(0x0000, 0x0A) // enable
	m.Write(0xA000, 0x42)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM read after enable = %#x, want 0x42", got)
	}
	if !m.Dirty() {
		t.Fatalf("expected RAM write to mark the battery dirty")
	}
}

func TestMBC1SaveRoundTrip(t *testing.T) {
	m := NewMBC1(fakeROM(2), 0x2000, true)
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0xA000, 0x99)

	saved := m.RAM()
	m2 := NewMBC1(fakeROM(2), 0x2000, true)
	if !m2.LoadRAM(saved) {
		t.Fatalf("LoadRAM rejected a correctly-sized save")
	}
	m2.Write(0x0000, 0x0A)
	if got := m2.Read(0xA000); got != 0x99 {
		t.Fatalf("restored RAM byte = %#x, want 0x99", got)
	}
}

func TestMBC1LoadRAMRejectsWrongSize(t *testing.T) {
	m := NewMBC1(fakeROM(2), 0x2000, true)
	if m.LoadRAM(make([]byte, 0x1000)) {
		t.Fatalf("LoadRAM accepted a save file of the wrong size")
	}
	m.Write(0x0000, 0x0A)
	if got := m.Read(0xA000); got != 0 {
		t.Fatalf("RAM should stay zeroed after a rejected load, got %#x", got)
	}
}

func TestMBC1RAMBankingMode1(t *testing.T) {
	m := NewMBC1(fakeROM(2), 4*0x2000, true)
	m.Write(0x0000, 0x0A)
	m.Write(0x6000, 0x01) // mode 1: RAM banking
	m.Write(0x4000, 0x02) // RAM bank 2
	m.Write(0xA000, 0x55)
	m.Write(0x4000, 0x00) // back to RAM bank 0
	if got := m.Read(0xA000); got == 0x55 {
		t.Fatalf("bank 0 should not see bank 2's write")
	}
	m.Write(0x4000, 0x02)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("RAM bank 2 = %#x, want 0x55", got)
	}
}

package cart

import "testing"

func TestMBC5BankSwitchROM(t *testing.T) {
	m := NewMBC5(fakeROM(4), 0, false)
	m.Write(0x2000, 0x02) // select ROM bank 2 (low 8 bits)
	if got := m.Read(0x4000); got != 2 {
		t.Fatalf("bank 2 byte = %d, want 2", got)
	}
}

func TestMBC5Bank0IsNotRemapped(t *testing.T) {
	m := NewMBC5(fakeROM(4), 0, false)
	m.Write(0x2000, 0x00) // unlike MBC1, bank 0 here is legal as-is
	if got := m.Read(0x4000); got != 0 {
		t.Fatalf("bank 0 byte = %d, want 0 (no remap quirk on MBC5)", got)
	}
}

func TestMBC5SaveRoundTrip(t *testing.T) {
	m := NewMBC5(fakeROM(2), 0x2000, true)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0xAB)

	saved := m.RAM()
	m2 := NewMBC5(fakeROM(2), 0x2000, true)
	if !m2.LoadRAM(saved) {
		t.Fatalf("LoadRAM rejected a correctly-sized save")
	}
	m2.Write(0x0000, 0x0A)
	if got := m2.Read(0xA000); got != 0xAB {
		t.Fatalf("restored RAM byte = %#x, want 0xAB", got)
	}
}

func TestMBC5LoadRAMRejectsWrongSize(t *testing.T) {
	m := NewMBC5(fakeROM(2), 0x2000, true)
	if m.LoadRAM(make([]byte, 0x4000)) {
		t.Fatalf("LoadRAM accepted a save file of the wrong size")
	}
	m.Write(0x0000, 0x0A)
	if got := m.Read(0xA000); got != 0 {
		t.Fatalf("RAM should stay zeroed after a rejected load, got %#x", got)
	}
}

package cart

import "github.com/pcineverdies/gameboy-emulator/internal/bus"

// MBC1 implements ROM banking up to 2MB and RAM banking up to 32KB,
// including the mode-1 quirk where the high two bank bits select the bank
// seen in the 0x0000-0x3FFF region as well as the RAM bank.
type MBC1 struct {
	rom []byte
	ram []byte

	battery    bool
	romBankLow5 byte
	bank2       byte // RAM bank in mode 1, or ROM bank bits 5-6 in mode 0
	ramEnabled  bool
	mode        byte // 0 = ROM banking, 1 = RAM banking

	dirty bool
}

func NewMBC1(rom []byte, ramSize int, battery bool) *MBC1 {
	m := &MBC1{rom: rom, battery: battery, romBankLow5: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) romBank() int {
	bank := int(m.romBankLow5)
	if m.mode == 0 {
		bank |= int(m.bank2) << 5
	}
	// Banks 0x00, 0x20, 0x40, 0x60 for the low-5 field alias to the next
	// bank up (the MBC1 "can't select bank 0" quirk).
	if m.romBankLow5 == 0 {
		bank |= 1
	}
	return bank
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2) << 5
		}
		off := bank*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.romBank()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		ramBank := 0
		if m.mode == 1 {
			ramBank = int(m.bank2)
		}
		off := ramBank*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		ramBank := 0
		if m.mode == 1 {
			ramBank = int(m.bank2)
		}
		off := ramBank*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
			m.dirty = true
		}
	}
}

func (m *MBC1) Step(*bus.Bus) {}

func (m *MBC1) HasBattery() bool { return m.battery && len(m.ram) > 0 }
func (m *MBC1) RAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}
func (m *MBC1) LoadRAM(data []byte) bool {
	if len(data) != len(m.ram) {
		return false
	}
	copy(m.ram, data)
	return true
}
func (m *MBC1) Dirty() bool         { return m.dirty }
func (m *MBC1) Flushed()            { m.dirty = false }

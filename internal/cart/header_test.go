package cart

import "testing"

func minimalROM(cartType, romSizeCode, ramSizeCode byte, title string) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:0x0144], title)
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	return rom
}

func TestParseHeaderFields(t *testing.T) {
	rom := minimalROM(0x13, 0x02, 0x03, "POKEMON")
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Title != "POKEMON" {
		t.Fatalf("Title = %q, want POKEMON", h.Title)
	}
	if h.CartType != 0x13 {
		t.Fatalf("CartType = %#x, want 0x13", h.CartType)
	}
	if h.ROMSizeBytes != 128*1024 || h.ROMBanks != 8 {
		t.Fatalf("ROM size decode = %d/%d banks, want 131072/8", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 32*1024 {
		t.Fatalf("RAM size decode = %d, want 32768", h.RAMSizeBytes)
	}
}

func TestParseHeaderTooSmall(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x10)); err == nil {
		t.Fatalf("expected an error for a too-small ROM")
	}
}

func TestIsCGB(t *testing.T) {
	rom := minimalROM(0x00, 0x00, 0x00, "TEST")
	rom[0x0143] = 0xC0
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !h.IsCGB() {
		t.Fatalf("expected IsCGB() true for flag 0xC0")
	}
}

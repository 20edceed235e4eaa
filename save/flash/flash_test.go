package flash

import (
	"path/filepath"
	"testing"

	"rtcfix/save"
)

func writeSlot(f *Flash, counter uint32, fill byte) {
	data := make([]byte, save.SectorDataSize)
	for i := range data {
		data[i] = fill
	}
	for id := save.SectorID(0); id < save.SectorsPerSlot; id++ {
		f.WriteSector(id, save.EncodeSector(id, counter, data))
	}
}

func TestFlash_ReadSlotPicksNewest(t *testing.T) {
	tests := []struct {
		name     string
		counters []uint32
		expected byte
	}{
		{"single slot", []uint32{1}, 1},
		{"newer in slot 0", []uint32{1, 2}, 2},
		{"newer in slot 1", []uint32{2, 3}, 3},
		{"counter wrapped", []uint32{0xFFFFFFFF, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			for _, c := range tt.counters {
				writeSlot(f, c, byte(c))
			}
			raw, status := f.ReadSlot()
			if status != save.StatusOK {
				t.Fatalf("status = %v", status)
			}
			if actual := raw[0]; actual != tt.expected {
				t.Errorf("slot data: actual = %d, expected = %d", actual, tt.expected)
			}
		})
	}
}

func TestFlash_Statuses(t *testing.T) {
	f := New()
	if _, status := f.ReadSlot(); status != save.StatusEmpty {
		t.Errorf("erased flash: status = %v", status)
	}

	f.Bytes()[5] = 0
	if _, status := f.ReadSlot(); status != save.StatusCorrupt {
		t.Errorf("no intact sector: status = %v", status)
	}

	f.Detached = true
	if _, status := f.ReadSlot(); status != save.StatusNoFlash {
		t.Errorf("detached: status = %v", status)
	}
	if f.WriteSector(0, save.EncodeSector(0, 0, nil)) {
		t.Error("write to detached flash should fail")
	}
}

func TestFlash_ReadSlotPerSector(t *testing.T) {
	f := New()
	writeSlot(f, 1, 1)
	writeSlot(f, 2, 2)
	// newest copy of sector 7 fails its checksum, sector 3 is intact in neither slot:
	f.Bytes()[7*save.SectorSize+5] ^= 0x55
	f.Bytes()[3*save.SectorSize] ^= 0x55
	f.Bytes()[(save.SectorsPerSlot+3)*save.SectorSize] ^= 0x55

	raw, status := f.ReadSlot()
	if status != save.StatusOK {
		t.Fatalf("status = %v", status)
	}

	tests := []struct {
		id       save.SectorID
		expected byte
	}{
		{0, 2},
		{7, 1},
		{3, erased},
		{13, 2},
	}
	for _, tt := range tests {
		if actual := raw[int(tt.id)*save.SectorSize]; actual != tt.expected {
			t.Errorf("sector %d: actual = %#x, expected = %#x", tt.id, actual, tt.expected)
		}
	}
}

func TestFlash_RejectsMismatchedID(t *testing.T) {
	f := New()
	if f.WriteSector(1, save.EncodeSector(2, 0, nil)) {
		t.Error("sector footer id must match the requested id")
	}
	if len(f.Journal) != 0 {
		t.Errorf("rejected writes are not journaled, got %v", f.Journal)
	}
}

func TestFlash_FailSectorCount(t *testing.T) {
	f := New()
	f.FailSector(4, 2)
	sector := save.EncodeSector(4, 0, nil)
	for i, expected := range []bool{false, false, true} {
		if actual := f.WriteSector(4, sector); actual != expected {
			t.Errorf("write %d: actual = %v, expected = %v", i, actual, expected)
		}
	}
}

func TestFlash_File(t *testing.T) {
	f := New()
	writeSlot(f, 1, 0x42)

	path := filepath.Join(t.TempDir(), "game.sav")
	if err := f.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	g, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Equal(g) {
		t.Error("reloaded image differs")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.sav")); err == nil {
		t.Error("expected error for missing file")
	}
}

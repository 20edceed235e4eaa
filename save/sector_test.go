package save

import (
	"reflect"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{"empty", nil, 0},
		{"one word", []byte{0x01, 0x00, 0x00, 0x00}, 0x0001},
		{"high half folds", []byte{0x00, 0x00, 0x01, 0x00}, 0x0001},
		{"both halves", []byte{0x34, 0x12, 0x02, 0x00}, 0x1236},
		{"trailing partial word ignored", []byte{0x01, 0x00, 0x00, 0x00, 0xFF}, 0x0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := Checksum(tt.data); actual != tt.expected {
				t.Errorf("Checksum() = %#04x, expected %#04x", actual, tt.expected)
			}
		})
	}
}

func TestEncodeSector_Verify(t *testing.T) {
	data := make([]byte, SectorDataSize)
	for i := range data {
		data[i] = byte(i)
	}

	sector := EncodeSector(5, 42, data)
	footer, ok := Verify(sector)
	if !ok {
		t.Fatal("encoded sector should verify")
	}
	if actual, expected := footer, (Footer{ID: 5, Checksum: Checksum(data), Signature: Signature, Counter: 42}); actual != expected {
		t.Errorf("footer: actual = %+v, expected = %+v", actual, expected)
	}

	sector[100] ^= 0xFF
	if _, ok := Verify(sector); ok {
		t.Error("corrupted data should not verify")
	}
	sector[100] ^= 0xFF

	sector[offsSignature] = 0
	if _, ok := Verify(sector); ok {
		t.Error("bad signature should not verify")
	}

	if _, ok := Verify(sector[:SectorSize-1]); ok {
		t.Error("short sector should not verify")
	}
}

func TestSectorSet(t *testing.T) {
	var s SectorSet
	if !s.Empty() {
		t.Fatal("zero set should be empty")
	}
	s.Add(3)
	s.Add(13)
	s.Add(3)
	if actual, expected := s.IDs(), []SectorID{3, 13}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("IDs: actual = %v, expected = %v", actual, expected)
	}
	if actual, expected := s.String(), "{3,13}"; actual != expected {
		t.Errorf("String: actual = %q, expected = %q", actual, expected)
	}
	s.Remove(3)
	s.Remove(13)
	if !s.Empty() {
		t.Errorf("set should be empty, got %v", s)
	}
}

func TestMode_Sectors(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected []SectorID
	}{
		{ModeFull, []SectorID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}},
		{ModeDataBlocks, []SectorID{0, 1, 2, 3, 4}},
		{ModeDataBlockTail, []SectorID{0}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if actual := tt.mode.Sectors(); !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("actual = %v, expected = %v", actual, tt.expected)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for s, expected := range map[string]Mode{"full": ModeFull, "blocks": ModeDataBlocks, "tail": ModeDataBlockTail} {
		actual, err := ParseMode(s)
		if err != nil {
			t.Fatal(err)
		}
		if actual != expected {
			t.Errorf("%s: actual = %v, expected = %v", s, actual, expected)
		}
	}
	if _, err := ParseMode("partial"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

package cart

import (
	"testing"
)

func makeROM(title string, maker string, magic byte, version byte) []byte {
	contents := make([]byte, ROMHeaderSize)
	copy(contents[0xA0:0xB0], title)
	copy(contents[0xB0:0xB2], maker)
	contents[0xB2] = magic
	contents[0xBC] = version
	return contents
}

func mustHeader(t *testing.T, contents []byte) *Header {
	t.Helper()
	h, err := ParseHeader(contents)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestParseHeader(t *testing.T) {
	h := mustHeader(t, makeROM("POKEMON RUBYAXVE", "01", Magic, 1))

	if actual, expected := h.TitleString(), "POKEMON RUBY"; actual != expected {
		t.Errorf("title: actual = %q, expected = %q", actual, expected)
	}
	if actual, expected := h.GameCodeString(), "AXVE"; actual != expected {
		t.Errorf("game code: actual = %q, expected = %q", actual, expected)
	}
	if actual, expected := h.Language(), byte('E'); actual != expected {
		t.Errorf("language: actual = %c, expected = %c", actual, expected)
	}
	if actual, expected := h.SoftwareVersion, byte(1); actual != expected {
		t.Errorf("version: actual = %d, expected = %d", actual, expected)
	}
	tc := h.TitleAndCode()
	if actual, expected := string(tc[:]), "POKEMON RUBYAXV"; actual != expected {
		t.Errorf("title and code: actual = %q, expected = %q", actual, expected)
	}
}

func TestParseHeader_TooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0xBF))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*HeaderError); !ok {
		t.Fatalf("expected *HeaderError, got %T", err)
	}
}

func TestHeader_Complement(t *testing.T) {
	contents := makeROM("POKEMON RUBYAXVE", "01", Magic, 1)
	h := mustHeader(t, contents)
	if h.ComplementValid() {
		t.Fatal("zero complement byte should not be valid for this header")
	}

	contents[0xBD] = h.Complement()
	h = mustHeader(t, contents)
	if !h.ComplementValid() {
		t.Fatal("complement should be valid after patching")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		rom      []byte
		expected Result
	}{
		{
			name:     "A needs update",
			rom:      makeROM("POKEMON RUBYAXVE", "01", Magic, 1),
			expected: Result{Status: NeedsUpdate, Variant: VariantA},
		},
		{
			name:     "A already updated",
			rom:      makeROM("POKEMON RUBYAXVE", "01", Magic, 2),
			expected: Result{Status: AlreadyUpdated, Variant: VariantA},
		},
		{
			name:     "A newer revision",
			rom:      makeROM("POKEMON RUBYAXVE", "01", Magic, 3),
			expected: Result{Status: AlreadyUpdated, Variant: VariantA},
		},
		{
			name:     "B Japanese needs update",
			rom:      makeROM("POKEMON SAPPAXPJ", "01", Magic, 0),
			expected: Result{Status: NeedsUpdate, Variant: VariantB},
		},
		{
			name:     "B German already updated",
			rom:      makeROM("POKEMON SAPPAXPD", "01", Magic, 1),
			expected: Result{Status: AlreadyUpdated, Variant: VariantB},
		},
		{
			name:     "wrong maker",
			rom:      makeROM("POKEMON RUBYAXVE", "08", Magic, 1),
			expected: Result{Status: Invalid},
		},
		{
			name:     "wrong magic",
			rom:      makeROM("POKEMON RUBYAXVE", "01", 0x00, 1),
			expected: Result{Status: Invalid},
		},
		{
			name:     "unknown language",
			rom:      makeROM("POKEMON RUBYAXVX", "01", Magic, 1),
			expected: Result{Status: Invalid},
		},
		{
			name:     "unknown title with valid version",
			rom:      makeROM("POKEMON EMERBPEE", "01", Magic, 5),
			expected: Result{Status: Invalid},
		},
		{
			name:     "title differs in last code byte",
			rom:      makeROM("POKEMON RUBYAXPE", "01", Magic, 1),
			expected: Result{Status: Invalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mustHeader(t, tt.rom)
			if actual := Validate(h); actual != tt.expected {
				t.Errorf("Validate() = %v, expected %v", actual, tt.expected)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	h := mustHeader(t, makeROM("POKEMON SAPPAXPE", "01", Magic, 1))
	first := Validate(h)
	for i := 0; i < 10; i++ {
		if actual := Validate(h); actual != first {
			t.Fatalf("call %d: actual = %v, expected = %v", i, actual, first)
		}
	}
	if actual, expected := string(h.Title[:]), "POKEMON SAPP"; actual != expected {
		t.Errorf("header mutated: %q", actual)
	}
}

func TestValidate_InvalidHeadersForAllMakers(t *testing.T) {
	for hi := 0; hi < 256; hi += 7 {
		for lo := 0; lo < 256; lo += 11 {
			maker := string([]byte{byte(hi), byte(lo)})
			if maker == "01" {
				continue
			}
			h := mustHeader(t, makeROM("POKEMON RUBYAXVE", maker, Magic, 1))
			if actual := Validate(h); actual.Status != Invalid {
				t.Fatalf("maker %x: actual = %v, expected invalid", maker, actual)
			}
		}
	}
	for magic := 0; magic < 256; magic++ {
		if magic == Magic {
			continue
		}
		h := mustHeader(t, makeROM("POKEMON RUBYAXVE", "01", byte(magic), 1))
		if actual := Validate(h); actual.Status != Invalid {
			t.Fatalf("magic %02x: actual = %v, expected invalid", magic, actual)
		}
	}
}

func TestValidator_CustomTable(t *testing.T) {
	v := &Validator{
		Versions: VersionRecord{'E': 5},
		Titles:   DefaultTitles,
	}
	h := mustHeader(t, makeROM("POKEMON RUBYAXVE", "01", Magic, 4))
	if actual, expected := v.Validate(h), (Result{Status: NeedsUpdate, Variant: VariantA}); actual != expected {
		t.Errorf("actual = %v, expected = %v", actual, expected)
	}
	h = mustHeader(t, makeROM("POKEMON RUBYAXVJ", "01", Magic, 4))
	if actual := v.Validate(h); actual.Status != Invalid {
		t.Errorf("language missing from custom table should be invalid, got %v", actual)
	}
	if actual := v.Validate(nil); actual.Status != Invalid {
		t.Errorf("nil header should be invalid, got %v", actual)
	}
}

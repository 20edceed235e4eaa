package payload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rtcfix/cart"
)

func testBody() []byte {
	b := make([]byte, BodySize)
	for i := range b {
		b[i] = byte(i ^ 0x5A)
	}
	return b
}

func TestParse_Size(t *testing.T) {
	for _, size := range []int{0, HeaderSize, ProgramSize - 1, ProgramSize + 1} {
		_, err := Parse(make([]byte, size))
		var se *SizeError
		if !errors.As(err, &se) {
			t.Errorf("size %d: expected SizeError, got %v", size, err)
			continue
		}
		if se.Size != size {
			t.Errorf("size %d: SizeError.Size = %d", size, se.Size)
		}
	}
}

func TestNew(t *testing.T) {
	body := testBody()
	img, err := New("RTC RESET", body)
	if err != nil {
		t.Fatal(err)
	}

	if !img.Identified() {
		t.Error("expected image to be identified")
	}
	if !img.Header.ComplementValid() {
		t.Error("expected valid header complement")
	}
	if actual, expected := img.Header.TitleString(), "RTC RESET"; actual != expected {
		t.Errorf("title: actual = %q, expected = %q", actual, expected)
	}
	if actual, expected := len(img.Bytes()), ProgramSize; actual != expected {
		t.Errorf("len: actual = %d, expected = %d", actual, expected)
	}
	if !bytes.Equal(img.TransmitRange(), body) {
		t.Error("transmit range must be exactly the bytes after the header")
	}

	if _, err := New("X", body[1:]); err == nil {
		t.Error("expected error for short body")
	}
}

func TestParse_Unidentified(t *testing.T) {
	contents := make([]byte, ProgramSize)
	img, err := Parse(contents)
	if err != nil {
		t.Fatal(err)
	}
	if img.Identified() {
		t.Error("blank header must not be identified")
	}
	if actual, expected := len(img.TransmitRange()), BodySize; actual != expected {
		t.Errorf("transmit range: actual = %d, expected = %d", actual, expected)
	}
}

func TestLoad(t *testing.T) {
	img, err := New("RTC RESET", testBody())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rtc.gba")
	if err = os.WriteFile(path, img.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Header.GameCode != GameCode || loaded.Header.MakerCode != cart.MakerCode {
		t.Errorf("header = %+v", loaded.Header)
	}

	if err = os.WriteFile(path, img.Bytes()[:100], 0644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(path)
	var se *SizeError
	if !errors.As(err, &se) {
		t.Errorf("expected wrapped SizeError, got %v", err)
	}
}

package cart

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

const (
	HeaderOffset = 0xA0
	HeaderSize   = 0x20
	// ROMHeaderSize is the size of the whole standard header including the entry branch and logo.
	ROMHeaderSize = 0xC0

	Magic = 0x96

	TitleAndCodeLen = 15
)

var MakerCode = [2]byte{'0', '1'}

// $0000A0
type Header struct {
	Title           [12]byte
	GameCode        [4]byte
	MakerCode       [2]byte
	Magic           byte
	UnitCode        byte
	DeviceType      byte
	Reserved1       [7]byte
	SoftwareVersion byte
	ComplementCheck byte
	Reserved2       [2]byte
}

type HeaderError struct {
	Size int
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("ROM of %d bytes not big enough to contain cartridge header", e.Size)
}

func ParseHeader(contents []byte) (h *Header, err error) {
	if len(contents) < HeaderOffset+HeaderSize {
		return nil, &HeaderError{Size: len(contents)}
	}

	h = &Header{}
	b := bytes.NewReader(contents[HeaderOffset : HeaderOffset+HeaderSize])
	err = readBinaryStruct(b, h)
	if err != nil {
		return nil, err
	}

	return
}

func readBinaryStruct(b *bytes.Reader, into interface{}) (err error) {
	hv := reflect.ValueOf(into).Elem()
	for i := 0; i < hv.NumField(); i++ {
		f := hv.Field(i)
		if !f.CanAddr() {
			panic(fmt.Errorf("error handling struct field %s of type %s; cannot take address of field", hv.Type().Field(i).Name, hv.Type().Name()))
		}

		err = binary.Read(b, binary.LittleEndian, f.Addr().Interface())
		if err != nil {
			return fmt.Errorf("error reading struct field %s of type %s: %w", hv.Type().Field(i).Name, hv.Type().Name(), err)
		}
	}
	return
}

// TitleAndCode is the 12-byte title followed by the first three game code characters.
func (h *Header) TitleAndCode() (tc [TitleAndCodeLen]byte) {
	copy(tc[:12], h.Title[:])
	copy(tc[12:], h.GameCode[:3])
	return
}

// Language is the last game code character.
func (h *Header) Language() byte {
	return h.GameCode[3]
}

func (h *Header) TitleString() string {
	return string(bytes.TrimRight(h.Title[:], "\x00 "))
}

func (h *Header) GameCodeString() string {
	return string(h.GameCode[:])
}

// Complement computes the header complement byte over $A0..$BC.
func (h *Header) Complement() byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, h)
	var sum byte
	for _, v := range buf.Bytes()[:0xBD-HeaderOffset] {
		sum -= v
	}
	return sum - 0x19
}

func (h *Header) ComplementValid() bool {
	return h.Complement() == h.ComplementCheck
}

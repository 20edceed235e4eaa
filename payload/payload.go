// Package payload holds the fixed-size corrective program sent to the peer console.
package payload

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"rtcfix/cart"
)

const (
	// ProgramSize is the size of the whole image, header included.
	ProgramSize = 0x3BF4
	HeaderSize  = cart.ROMHeaderSize
	// BodySize is the number of bytes actually transmitted.
	BodySize = ProgramSize - HeaderSize
)

// GameCode identifies the corrective program in its own header.
var GameCode = [4]byte{'A', 'G', 'B', 'J'}

type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("payload is %d bytes; expected exactly %d", e.Size, ProgramSize)
}

type Image struct {
	contents []byte
	Header   *cart.Header
}

func Parse(contents []byte) (img *Image, err error) {
	if len(contents) != ProgramSize {
		return nil, &SizeError{Size: len(contents)}
	}

	img = &Image{contents: contents}
	img.Header, err = cart.ParseHeader(contents)
	if err != nil {
		return nil, err
	}

	if !img.Identified() {
		log.Printf("payload: header game code %q does not identify the corrective program\n", img.Header.GameCodeString())
	}
	return
}

func Load(path string) (*Image, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("payload: %s: %w", path, err)
	}
	return img, nil
}

// New wraps a program body in a standard header.
func New(title string, body []byte) (*Image, error) {
	if len(body) != BodySize {
		return nil, &SizeError{Size: len(body) + HeaderSize}
	}

	h := cart.Header{
		GameCode:  GameCode,
		MakerCode: cart.MakerCode,
		Magic:     cart.Magic,
	}
	copy(h.Title[:], title)
	h.ComplementCheck = h.Complement()

	var hb bytes.Buffer
	if err := binary.Write(&hb, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	contents := make([]byte, ProgramSize)
	copy(contents[cart.HeaderOffset:], hb.Bytes())
	copy(contents[HeaderSize:], body)
	return Parse(contents)
}

// Identified reports whether the header carries the corrective program's magic and game code.
func (img *Image) Identified() bool {
	return img.Header.Magic == cart.Magic && img.Header.GameCode == GameCode
}

// TransmitRange is the image with the header excluded; the receiving side already has one.
func (img *Image) TransmitRange() []byte {
	return img.contents[HeaderSize:]
}

func (img *Image) Bytes() []byte {
	return img.contents
}

package save

import (
	"encoding/binary"
	"fmt"
)

type Footer struct {
	ID        SectorID
	Checksum  uint16
	Signature uint32
	Counter   uint32
}

// Checksum sums the data as little-endian words and folds the result to 16 bits.
func Checksum(data []byte) uint16 {
	var sum uint32
	for i := 0; i+4 <= len(data); i += 4 {
		sum += binary.LittleEndian.Uint32(data[i:])
	}
	return uint16((sum >> 16) + sum)
}

// EncodeSector lays out one sector of data followed by its footer.
func EncodeSector(id SectorID, counter uint32, data []byte) []byte {
	if len(data) > SectorDataSize {
		panic(fmt.Sprintf("save: sector data of %d bytes exceeds %d", len(data), SectorDataSize))
	}

	b := make([]byte, SectorSize)
	copy(b, data)
	binary.LittleEndian.PutUint16(b[offsID:], uint16(id))
	binary.LittleEndian.PutUint16(b[offsChecksum:], Checksum(b[:SectorDataSize]))
	binary.LittleEndian.PutUint32(b[offsSignature:], Signature)
	binary.LittleEndian.PutUint32(b[offsCounter:], counter)
	return b
}

func DecodeFooter(sector []byte) (f Footer, err error) {
	if len(sector) != SectorSize {
		return f, fmt.Errorf("save: sector is %d bytes, expected %d", len(sector), SectorSize)
	}

	f.ID = SectorID(binary.LittleEndian.Uint16(sector[offsID:]))
	f.Checksum = binary.LittleEndian.Uint16(sector[offsChecksum:])
	f.Signature = binary.LittleEndian.Uint32(sector[offsSignature:])
	f.Counter = binary.LittleEndian.Uint32(sector[offsCounter:])
	return
}

// Verify reports whether a sector holds intact data for its footer's id.
func Verify(sector []byte) (f Footer, ok bool) {
	f, err := DecodeFooter(sector)
	if err != nil {
		return f, false
	}
	if f.Signature != Signature || !f.ID.Valid() {
		return f, false
	}
	return f, f.Checksum == Checksum(sector[:SectorDataSize])
}

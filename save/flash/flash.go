package flash

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"rtcfix/save"
)

const (
	SectorCount = 32
	Size        = SectorCount * save.SectorSize

	erased = 0xFF
)

// Flash emulates the cartridge's sector-erasable save memory. Two slots of
// save.SectorsPerSlot sectors alternate by save counter parity; the sectors past the second
// slot are not touched by slot writes.
type Flash struct {
	mem [Size]byte

	// Detached makes every read report save.StatusNoFlash and every write fail.
	Detached bool

	failing map[save.SectorID]int
	// Journal records each logical sector write attempt in order.
	Journal []Write
}

type Write struct {
	ID   save.SectorID
	Slot int
	OK   bool
}

func New() *Flash {
	f := &Flash{failing: make(map[save.SectorID]int)}
	f.Erase()
	return f
}

func (f *Flash) Erase() {
	for i := range f.mem {
		f.mem[i] = erased
	}
}

// FailSector makes the next n writes of a logical sector fail; n < 0 fails forever.
func (f *Flash) FailSector(id save.SectorID, n int) {
	f.failing[id] = n
}

func (f *Flash) physical(slot int, id save.SectorID) []byte {
	offs := (slot*save.SectorsPerSlot + int(id)) * save.SectorSize
	return f.mem[offs : offs+save.SectorSize]
}

func (f *Flash) WriteSector(id save.SectorID, sector []byte) bool {
	footer, err := save.DecodeFooter(sector)
	if err != nil || !id.Valid() || footer.ID != id {
		log.Printf("flash: rejected write of sector %d: %v\n", id, err)
		return false
	}

	slot := int(footer.Counter & 1)
	ok := f.tryWrite(id, slot, sector)
	f.Journal = append(f.Journal, Write{ID: id, Slot: slot, OK: ok})
	return ok
}

func (f *Flash) tryWrite(id save.SectorID, slot int, sector []byte) bool {
	if f.Detached {
		return false
	}

	if n, ok := f.failing[id]; ok && n != 0 {
		if n > 0 {
			f.failing[id] = n - 1
		}
		// a failed program leaves the sector erased:
		dst := f.physical(slot, id)
		for i := range dst {
			dst[i] = erased
		}
		return false
	}

	copy(f.physical(slot, id), sector)
	return true
}

func isErased(b []byte) bool {
	for _, v := range b {
		if v != erased {
			return false
		}
	}
	return true
}

// newer compares save counters allowing for wrap-around.
func newer(a, b uint32) bool {
	return int32(a-b) > 0
}

// ReadSlot returns the newest intact copy of every sector. A sector whose latest write
// failed is served from the other slot; a sector intact in neither slot is left erased.
func (f *Flash) ReadSlot() ([]byte, save.Status) {
	if f.Detached {
		return nil, save.StatusNoFlash
	}

	raw := make([]byte, save.SectorsPerSlot*save.SectorSize)
	for i := range raw {
		raw[i] = erased
	}

	empty, found := true, 0
	for i := 0; i < save.SectorsPerSlot; i++ {
		id := save.SectorID(i)

		var (
			best        []byte
			bestCounter uint32
		)
		for slot := 0; slot < 2; slot++ {
			sector := f.physical(slot, id)
			if isErased(sector) {
				continue
			}
			empty = false

			footer, ok := save.Verify(sector)
			if !ok || footer.ID != id {
				log.Printf("flash: slot %d sector %d does not verify\n", slot, id)
				continue
			}
			if best == nil || newer(footer.Counter, bestCounter) {
				best, bestCounter = sector, footer.Counter
			}
		}

		if best != nil {
			copy(raw[i*save.SectorSize:], best)
			found++
		}
	}

	switch {
	case empty:
		return nil, save.StatusEmpty
	case found == 0:
		return nil, save.StatusCorrupt
	}
	return raw, save.StatusOK
}

// Bytes exposes the whole flash image.
func (f *Flash) Bytes() []byte {
	return f.mem[:]
}

func LoadFile(path string) (*Flash, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) != Size {
		return nil, fmt.Errorf("flash: %s is %d bytes, expected %d", path, len(b), Size)
	}

	f := New()
	copy(f.mem[:], b)
	return f, nil
}

func (f *Flash) SaveFile(path string) error {
	if err := os.WriteFile(path, f.mem[:], 0644); err != nil {
		return fmt.Errorf("flash: %w", err)
	}
	return nil
}

// Equal reports whether two images hold the same bytes.
func (f *Flash) Equal(other *Flash) bool {
	return bytes.Equal(f.mem[:], other.mem[:])
}

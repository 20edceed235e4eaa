package save

import (
	"fmt"
	"log"
)

// Storage is the persistent save memory. Sector ids are the logical ids within a slot;
// the storage picks the physical slot from the counter in the encoded footer.
type Storage interface {
	WriteSector(id SectorID, sector []byte) bool
	ReadSlot() ([]byte, Status)
}

// Manager owns the live save image and the set of sectors whose last write failed.
// It does not own the backing storage and performs no retries of its own.
type Manager struct {
	storage Storage

	data    [SlotDataSize]byte
	counter uint32
	damaged SectorSet
}

func NewManager(storage Storage) *Manager {
	if storage == nil {
		panic("storage must not be nil")
	}
	return &Manager{storage: storage}
}

// Save writes every sector selected by mode, continuing past failures, and reports
// StatusOK only when no sector is left damaged.
func (m *Manager) Save(mode Mode) Status {
	if mode == ModeFull {
		m.counter++
	}

	for _, id := range mode.Sectors() {
		m.writeSector(id)
	}

	if !m.damaged.Empty() {
		log.Printf("save: %s save failed; damaged sectors %s\n", mode, m.damaged)
		return StatusError
	}

	return StatusOK
}

func (m *Manager) writeSector(id SectorID) {
	sector := EncodeSector(id, m.counter, m.sectorData(id))
	if m.storage.WriteSector(id, sector) {
		m.damaged.Remove(id)
		return
	}
	m.damaged.Add(id)
}

// Load reads the whole slot and returns the storage's status unchanged. On StatusOK every
// intact sector replaces its part of the live image and the newest counter is adopted.
func (m *Manager) Load() Status {
	raw, status := m.storage.ReadSlot()
	if status != StatusOK {
		return status
	}

	seen := false
	for offs := 0; offs+SectorSize <= len(raw); offs += SectorSize {
		sector := raw[offs : offs+SectorSize]
		f, ok := Verify(sector)
		if !ok {
			continue
		}
		copy(m.sectorData(f.ID), sector[:SectorDataSize])
		if !seen || int32(f.Counter-m.counter) > 0 {
			m.counter = f.Counter
			seen = true
		}
	}
	return status
}

func (m *Manager) DamagedSectors() SectorSet {
	return m.damaged
}

func (m *Manager) Counter() uint32 {
	return m.counter
}

// Data returns the live slot image; changes are persisted by the next Save.
func (m *Manager) Data() []byte {
	return m.data[:]
}

func (m *Manager) Block(r Region) []byte {
	first, last := r.sectors()
	return m.data[int(first)*SectorDataSize : int(last+1)*SectorDataSize]
}

func (m *Manager) sectorData(id SectorID) []byte {
	if !id.Valid() {
		panic(fmt.Sprintf("save: sector id %d out of range", id))
	}
	offs := int(id) * SectorDataSize
	return m.data[offs : offs+SectorDataSize]
}

package save

import "encoding/binary"

const (
	VarsStart = 0x4000
	VarsCount = 0x100

	// offset of the variable table inside data block 1
	varsOffset = 0x139C
	// offset of the clock stamps inside data block 2
	clockOffsetOffset = 0x98
	lastUpdateOffset  = 0xA0

	// VarDays holds the day count recorded at the last clock update.
	VarDays = 0x4040
)

func (m *Manager) varSlot(id uint16) []byte {
	if id < VarsStart || id >= VarsStart+VarsCount {
		return nil
	}
	offs := varsOffset + int(id-VarsStart)*2
	return m.Block(RegionDataBlock1)[offs : offs+2]
}

// VarSet stores a save variable in the live image; it reports false for ids outside the table.
func (m *Manager) VarSet(id uint16, value uint16) bool {
	b := m.varSlot(id)
	if b == nil {
		return false
	}
	binary.LittleEndian.PutUint16(b, value)
	return true
}

func (m *Manager) VarGet(id uint16) (uint16, bool) {
	b := m.varSlot(id)
	if b == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

type Time struct {
	Days    uint16
	Hours   int8
	Minutes int8
	Seconds int8
}

func (t Time) put(b []byte) {
	binary.LittleEndian.PutUint16(b, t.Days)
	b[2] = byte(t.Hours)
	b[3] = byte(t.Minutes)
	b[4] = byte(t.Seconds)
}

func getTime(b []byte) Time {
	return Time{
		Days:    binary.LittleEndian.Uint16(b),
		Hours:   int8(b[2]),
		Minutes: int8(b[3]),
		Seconds: int8(b[4]),
	}
}

// SetClockStamps records the offset between the cartridge clock and game time along with
// the time of the last clock-driven update.
func (m *Manager) SetClockStamps(offset, lastUpdate Time) {
	b := m.Block(RegionDataBlock2)
	offset.put(b[clockOffsetOffset:])
	lastUpdate.put(b[lastUpdateOffset:])
}

func (m *Manager) ClockStamps() (offset, lastUpdate Time) {
	b := m.Block(RegionDataBlock2)
	return getTime(b[clockOffsetOffset:]), getTime(b[lastUpdateOffset:])
}

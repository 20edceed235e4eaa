package save

import "fmt"

const (
	SectorSize     = 0x1000
	SectorDataSize = 0xF80
	SectorsPerSlot = 14
	SlotDataSize   = SectorsPerSlot * SectorDataSize

	Signature = 0x08012025
)

// footer offsets within a sector:
const (
	offsID        = 0xFF4
	offsChecksum  = 0xFF6
	offsSignature = 0xFF8
	offsCounter   = 0xFFC
)

type SectorID uint16

const (
	SectorDataBlock2 SectorID = 0

	SectorDataBlock1Start SectorID = 1
	SectorDataBlock1End   SectorID = 4

	SectorStorageStart SectorID = 5
	SectorStorageEnd   SectorID = SectorsPerSlot - 1
)

func (id SectorID) Valid() bool {
	return id < SectorsPerSlot
}

type Region int

const (
	RegionDataBlock2 Region = iota
	RegionDataBlock1
	RegionStorage
)

func (r Region) sectors() (first, last SectorID) {
	switch r {
	case RegionDataBlock2:
		return SectorDataBlock2, SectorDataBlock2
	case RegionDataBlock1:
		return SectorDataBlock1Start, SectorDataBlock1End
	case RegionStorage:
		return SectorStorageStart, SectorStorageEnd
	}
	panic(fmt.Sprintf("save: unknown region %d", int(r)))
}

type Mode int

const (
	// ModeFull writes every sector into the alternate slot.
	ModeFull Mode = iota
	// ModeDataBlocks rewrites both data blocks in place.
	ModeDataBlocks
	// ModeDataBlockTail rewrites data block 2 in place.
	ModeDataBlockTail
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeDataBlocks:
		return "data blocks"
	case ModeDataBlockTail:
		return "data block tail"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Sectors lists the sectors a mode writes, in write order.
func (m Mode) Sectors() []SectorID {
	var first, last SectorID
	switch m {
	case ModeDataBlocks:
		first, last = SectorDataBlock2, SectorDataBlock1End
	case ModeDataBlockTail:
		first, last = SectorDataBlock2, SectorDataBlock2
	default:
		first, last = 0, SectorsPerSlot-1
	}

	ids := make([]SectorID, 0, last-first+1)
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}
	return ids
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "full", "normal":
		return ModeFull, nil
	case "blocks", "datablocks":
		return ModeDataBlocks, nil
	case "tail", "datablocktail":
		return ModeDataBlockTail, nil
	}
	return ModeFull, fmt.Errorf("save: unknown mode %q", s)
}

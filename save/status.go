package save

import (
	"fmt"
	"math/bits"
	"strings"
)

type Status int

const (
	StatusEmpty Status = iota
	StatusOK
	StatusCorrupt
	StatusNoFlash
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusOK:
		return "ok"
	case StatusCorrupt:
		return "corrupt"
	case StatusNoFlash:
		return "no flash"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// SectorSet is a bitmask of sector ids.
type SectorSet uint32

func (s *SectorSet) Add(id SectorID) {
	*s |= 1 << id
}

func (s *SectorSet) Remove(id SectorID) {
	*s &^= 1 << id
}

func (s SectorSet) Has(id SectorID) bool {
	return s&(1<<id) != 0
}

func (s SectorSet) Empty() bool {
	return s == 0
}

func (s SectorSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s SectorSet) IDs() []SectorID {
	ids := make([]SectorID, 0, s.Len())
	for id := SectorID(0); id < 32; id++ {
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s SectorSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, id := range s.IDs() {
		parts = append(parts, fmt.Sprint(id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

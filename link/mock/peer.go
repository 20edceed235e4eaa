package mock

import (
	"fmt"
	"strconv"
	"strings"

	"rtcfix/link"
)

// Peer simulates a receiving console on the far end of the cable. It is driven entirely by
// the initiator's calls, so tests control time through the number of probes made.
type Peer struct {
	// BootProbes is the number of probes answered before the peer reports ready.
	BootProbes int
	// DropAtOffset clears the peer's client bit once this many payload bytes have arrived;
	// zero disables it.
	DropAtOffset int
	// Nak makes the peer refuse a chunk at the given offset this many times.
	Nak map[int]int
	// Script overrides the register state returned for a given probe number.
	Script func(probe int) link.Probe

	Probes   int
	Sends    int
	Received []byte
	dropped  bool
	closed   bool
}

func NewPeer() *Peer {
	return &Peer{Nak: make(map[int]int)}
}

func (p *Peer) Probe() (link.Probe, error) {
	if p.closed {
		return link.Probe{}, fmt.Errorf("mock: port closed")
	}

	n := p.Probes
	p.Probes++

	if p.Script != nil {
		return p.Script(n), nil
	}
	if p.dropped {
		return link.Probe{ResponseBits: link.PeerBit}, nil
	}
	if n < p.BootProbes {
		return link.Probe{}, nil
	}
	return link.Probe{ResponseBits: link.PeerBit, ClientBits: link.PeerBit}, nil
}

func (p *Peer) SendChunk(buf []byte, offset int) (bool, error) {
	if p.closed {
		return false, fmt.Errorf("mock: port closed")
	}
	p.Sends++

	if n := p.Nak[offset]; n > 0 {
		p.Nak[offset] = n - 1
		return false, nil
	}

	if end := offset + len(buf); end > len(p.Received) {
		grown := make([]byte, end)
		copy(grown, p.Received)
		p.Received = grown
	}
	copy(p.Received[offset:], buf)

	if p.DropAtOffset > 0 && len(p.Received) >= p.DropAtOffset {
		p.dropped = true
	}
	return true, nil
}

// Unplug clears the client bit from now on.
func (p *Peer) Unplug() {
	p.dropped = true
}

func (p *Peer) Close() error {
	p.closed = true
	return nil
}

// ParseAddress configures a peer from "boot=N,drop=M".
func ParseAddress(address string) (*Peer, error) {
	p := NewPeer()
	if address == "" {
		return p, nil
	}

	for _, opt := range strings.Split(address, ",") {
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			return nil, fmt.Errorf("mock: bad option %q", opt)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("mock: option %s: %w", key, err)
		}
		switch key {
		case "boot":
			p.BootProbes = n
		case "drop":
			p.DropAtOffset = n
		default:
			return nil, fmt.Errorf("mock: unknown option %q", key)
		}
	}
	return p, nil
}

package link

import (
	"fmt"
	"log"
)

type TransmitStatus int

const (
	TransmitInProgress TransmitStatus = iota
	TransmitComplete
	TransmitLost
)

func (s TransmitStatus) String() string {
	switch s {
	case TransmitInProgress:
		return "in progress"
	case TransmitComplete:
		return "complete"
	case TransmitLost:
		return "lost"
	}
	return fmt.Sprintf("TransmitStatus(%d)", int(s))
}

type AckMode int

const (
	// AckNone advances past a chunk whether or not the peer acknowledged it.
	AckNone AckMode = iota
	// AckRequired resends a chunk until the peer acknowledges it or the retry budget runs out.
	AckRequired
)

const (
	DefaultChunkSize = 0x80
	DefaultRetries   = 4
)

// Transmitter streams the payload one chunk per tick.
type Transmitter struct {
	port     Port
	PeerMask uint8

	ChunkSize int

	payload []byte
	offset  int
	retries int
	ack     AckMode
	started bool

	// ticks spent on the chunk currently in flight, and the history for completed chunks
	chunkTicks int
	ChunkTicks []int
}

func NewTransmitter(port Port) *Transmitter {
	if port == nil {
		panic("port must not be nil")
	}
	return &Transmitter{
		port:      port,
		PeerMask:  PeerBit,
		ChunkSize: DefaultChunkSize,
	}
}

// Start begins a transfer of payload. retries is the number of send attempts, one per tick,
// a chunk gets before the transfer is abandoned.
func (t *Transmitter) Start(payload []byte, retries int, ack AckMode) {
	if retries < 1 {
		retries = 1
	}
	t.payload = payload
	t.offset = 0
	t.retries = retries
	t.ack = ack
	t.started = true
	t.chunkTicks = 0
	t.ChunkTicks = t.ChunkTicks[:0]

	log.Printf("link: transmit %d bytes in %d-byte chunks\n", len(payload), t.ChunkSize)
}

func (t *Transmitter) IsComplete() bool {
	return t.started && t.offset >= len(t.payload)
}

func (t *Transmitter) Offset() int {
	return t.offset
}

// Tick makes one probe and at most one send attempt, so it never holds the port for more
// than two exchanges. Loss is detected through the peer's client bit or an exhausted retry
// budget; payload integrity is left to the link layer.
func (t *Transmitter) Tick() (TransmitStatus, error) {
	if !t.started {
		return TransmitInProgress, fmt.Errorf("link: transmitter not started")
	}
	if t.IsComplete() {
		return TransmitComplete, nil
	}

	p, err := t.port.Probe()
	if err != nil {
		return TransmitLost, err
	}

	present := p.PeerPresent(t.PeerMask)
	if present {
		if err = t.sendChunk(); err != nil {
			return TransmitLost, err
		}
	}

	if t.IsComplete() {
		return TransmitComplete, nil
	}
	if !present {
		return TransmitLost, ErrPeerLost
	}
	return TransmitInProgress, nil
}

func (t *Transmitter) sendChunk() error {
	end := t.offset + t.ChunkSize
	if end > len(t.payload) {
		end = len(t.payload)
	}

	t.chunkTicks++
	ok, err := t.port.SendChunk(t.payload[t.offset:end], t.offset)
	if err != nil {
		return err
	}

	if ok || t.ack == AckNone {
		t.offset = end
		t.ChunkTicks = append(t.ChunkTicks, t.chunkTicks)
		t.chunkTicks = 0
		return nil
	}
	if t.chunkTicks >= t.retries {
		return fmt.Errorf("%w at offset %#x after %d attempts", ErrChunkRefused, t.offset, t.chunkTicks)
	}
	return nil
}

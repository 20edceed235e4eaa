package cable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"rtcfix/link"
)

type opcode uint8

const (
	OpProbe opcode = iota + 1
	OpChunk
	OpReset
)

const (
	ack = 0x06
	nak = 0x15

	headerSize = 11
	// the adapter buffers at most this much payload per frame
	MaxChunkSize = 0x100
)

var frameMagic = [4]byte{'L', 'N', 'K', 'A'}

type stream interface {
	io.ReadWriter
	ResetInputBuffer() error
	Close() error
}

var errShortReply = errors.New("reply cut short by read timeout")

// Port talks to a USB link-cable adapter. Reads are bounded by the serial read timeout, so
// a silent adapter reads as an unready peer rather than blocking the tick. A reply cut off
// mid-way is a transport error; its tail would otherwise be read as the next reply.
type Port struct {
	name string
	f    stream
}

func newPort(name string, f stream) *Port {
	return &Port{name: name, f: f}
}

func makeFrame(op opcode, offset int, data []byte) []byte {
	sb := make([]byte, headerSize+len(data))
	copy(sb[0:4], frameMagic[:])
	sb[4] = byte(op)
	binary.LittleEndian.PutUint32(sb[5:9], uint32(offset))
	binary.LittleEndian.PutUint16(sb[9:11], uint16(len(data)))
	copy(sb[headerSize:], data)
	return sb
}

func sendSerial(f io.Writer, buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, e := f.Write(buf[sent:])
		if e != nil {
			return e
		}
		sent += n
	}
	return nil
}

// recvSerial reads until rsp is full; a zero-length read is the read timeout expiring.
// Silence is reported as incomplete, a partial reply as errShortReply.
func recvSerial(f io.Reader, rsp []byte) (complete bool, err error) {
	o := 0
	for o < len(rsp) {
		n, err := f.Read(rsp[o:])
		if err != nil {
			return false, err
		}
		if n <= 0 {
			if o > 0 {
				return false, errShortReply
			}
			return false, nil
		}
		o += n
	}
	return true, nil
}

// request drops bytes left over from an earlier timed-out exchange and sends one frame.
func (p *Port) request(op opcode, offset int, data []byte) error {
	if err := p.f.ResetInputBuffer(); err != nil {
		return err
	}
	return sendSerial(p.f, makeFrame(op, offset, data))
}

func (p *Port) transportError(op string, err error) error {
	return &link.TransportError{Driver: driverName, Op: fmt.Sprintf("%s %s", p.name, op), Err: err}
}

func (p *Port) Probe() (link.Probe, error) {
	if err := p.request(OpProbe, 0, nil); err != nil {
		return link.Probe{}, p.transportError("probe", err)
	}

	rsp := make([]byte, 3)
	complete, err := recvSerial(p.f, rsp)
	if err != nil {
		return link.Probe{}, p.transportError("probe", err)
	}
	if !complete {
		return link.Probe{}, nil
	}

	return link.Probe{
		ResponseBits: rsp[0],
		ClientBits:   rsp[1],
		ProbeCount:   rsp[2],
	}, nil
}

func (p *Port) SendChunk(buf []byte, offset int) (bool, error) {
	if len(buf) > MaxChunkSize {
		return false, fmt.Errorf("cable: chunk of %d bytes exceeds adapter limit %d", len(buf), MaxChunkSize)
	}
	if err := p.request(OpChunk, offset, buf); err != nil {
		return false, p.transportError("send", err)
	}

	rsp := make([]byte, 1)
	complete, err := recvSerial(p.f, rsp)
	if err != nil {
		return false, p.transportError("send", err)
	}
	return complete && rsp[0] == ack, nil
}

func (p *Port) Close() error {
	// tell the adapter to release the link; ignore errors since we're closing:
	_ = sendSerial(p.f, makeFrame(OpReset, 0, nil))

	if err := p.f.Close(); err != nil {
		return fmt.Errorf("cable: could not close port %s: %w", p.name, err)
	}
	return nil
}

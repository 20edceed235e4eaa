// Package transfer sequences the handshake and payload transmission one tick at a time.
package transfer

import (
	"log"

	"rtcfix/link"
)

type Config struct {
	// Payload is the transmit range only; the header has already been stripped.
	Payload   []byte
	Retries   int
	Ack       link.AckMode
	ChunkSize int
	Threshold int
}

// Directive is the result of one tick.
type Directive struct {
	State State
	Scene Scene
	// Restart asks the caller to reset the device. Nothing in memory survives it.
	Restart bool
}

// Machine owns the session for one run. It is not safe for concurrent use; a single control
// loop calls Tick once per frame.
type Machine struct {
	port link.Port
	cfg  Config

	state       State
	session     *link.Session
	handshake   *link.Handshake
	transmitter *link.Transmitter

	report Report
	// Err is why the last attempt failed.
	Err error
}

func NewMachine(port link.Port, cfg Config) *Machine {
	if cfg.Retries == 0 {
		cfg.Retries = link.DefaultRetries
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = link.DefaultChunkSize
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = link.DefaultSettleTicks
	}

	m := &Machine{
		port:  port,
		cfg:   cfg,
		state: StateInit,
	}
	m.newSession()
	return m
}

func (m *Machine) newSession() {
	m.session = link.NewSession()
	m.handshake = link.NewHandshake(m.port, m.session)
	m.handshake.Threshold = m.cfg.Threshold
	m.transmitter = link.NewTransmitter(m.port)
	m.transmitter.ChunkSize = m.cfg.ChunkSize
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Session() *link.Session { return m.session }

func (m *Machine) Report() *Report { return &m.report }

// Progress is the number of payload bytes sent so far out of the total.
func (m *Machine) Progress() (sent, total int) {
	return m.transmitter.Offset(), len(m.cfg.Payload)
}

// Tick advances by one frame. confirm is the edge-triggered user confirmation for this frame.
func (m *Machine) Tick(confirm bool) Directive {
	ev := m.poll(confirm)
	next := Transition(m.state, ev)

	d := Directive{}
	if m.state == StateComplete && ev == EventConfirm {
		d.Restart = true
	}

	if next != m.state {
		log.Printf("transfer: %s --%s--> %s\n", m.state, ev, next)
		m.enter(next)
	}

	d.State = m.state
	d.Scene = SceneFor(m.state, m.session)
	return d
}

// poll runs the current state's work and turns the outcome into an event.
func (m *Machine) poll(confirm bool) Event {
	switch m.state {
	case StateInit:
		return EventSetupDone

	case StateAwaitingAck, StateConnecting, StateComplete, StateFailed:
		if confirm {
			return EventConfirm
		}

	case StateInitHandshake:
		m.handshake.Arm()
		return EventArmed

	case StateHandshaking:
		m.report.HandshakeTicks++
		stable, err := m.handshake.Tick()
		if err != nil {
			m.Err = err
			return EventPeerLost
		}
		if stable {
			m.transmitter.Start(m.cfg.Payload, m.cfg.Retries, m.cfg.Ack)
			return EventStable
		}

	case StateTransmitting:
		m.report.TransmitTicks++
		status, err := m.transmitter.Tick()
		if status == link.TransmitComplete {
			return EventTransmitComplete
		}
		if status == link.TransmitLost || err != nil {
			if err == nil {
				err = link.ErrPeerLost
			}
			m.Err = err
			return EventPeerLost
		}
	}
	return EventNone
}

func (m *Machine) enter(next State) {
	prev := m.state
	m.state = next

	switch next {
	case StateAwaitingAck:
		if prev == StateFailed {
			// manual retry: the old session is discarded entirely
			m.newSession()
			m.Err = nil
		}
	case StateHandshaking:
		m.report.Attempts++
	case StateComplete:
		m.report.Bytes = len(m.cfg.Payload)
		m.report.ChunkTicks = append(m.report.ChunkTicks[:0], m.transmitter.ChunkTicks...)
	case StateFailed:
		m.report.Failures++
		m.report.Bytes = m.transmitter.Offset()
		log.Printf("transfer: failed: %v\n", m.Err)
	}
}

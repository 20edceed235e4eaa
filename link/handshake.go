package link

import "log"

// DefaultSettleTicks is how long the peer must stay ready before the transfer starts. A
// peer's readiness bits flicker while it boots.
const DefaultSettleTicks = 180

// Handshake discovers the peer and waits for it to settle. It has no timeout of its own.
type Handshake struct {
	port    Port
	session *Session

	Threshold int
	PeerMask  uint8
}

func NewHandshake(port Port, session *Session) *Handshake {
	if port == nil {
		panic("port must not be nil")
	}
	return &Handshake{
		port:      port,
		session:   session,
		Threshold: DefaultSettleTicks,
		PeerMask:  PeerBit,
	}
}

func (h *Handshake) Session() *Session {
	return h.session
}

// Arm starts discovery over with the timer cleared.
func (h *Handshake) Arm() {
	*h.session = Session{Role: RoleInitiator}
}

// Tick performs one probe and reports whether the peer has been ready for longer than the
// threshold. Errors are transport failures only; an unready peer just resets the timer.
func (h *Handshake) Tick() (stable bool, err error) {
	p, err := h.port.Probe()
	if err != nil {
		h.session.Timer = 0
		return false, err
	}
	h.session.observe(p)

	if !p.PeerReady(h.PeerMask) {
		if h.session.Timer > 0 {
			log.Printf("link: %v after %d ticks; settle timer reset\n", ErrPeerNotReady, h.session.Timer)
		}
		h.session.Timer = 0
		return false, nil
	}

	h.session.Timer++
	return h.session.Timer > h.Threshold, nil
}

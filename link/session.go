package link

type Role int

const (
	RoleInitiator Role = iota
)

// Session is the state of one handshake/transmit attempt. A new Session is built for every
// retry; nothing carries over from a failed attempt.
type Session struct {
	Role         Role
	ProbeCount   uint8
	ResponseBits uint8
	ClientBits   uint8
	// Timer counts consecutive ticks with the peer ready.
	Timer int
}

func NewSession() *Session {
	return &Session{Role: RoleInitiator}
}

func (s *Session) observe(p Probe) {
	s.ProbeCount = p.ProbeCount
	s.ResponseBits = p.ResponseBits
	s.ClientBits = p.ClientBits
}

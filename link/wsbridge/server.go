package wsbridge

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"rtcfix/link"
)

// Server exposes a peer over the bridge protocol. One initiator is served at a time, so the
// peer is never driven concurrently.
type Server struct {
	mu   sync.Mutex
	Peer link.Port
}

func NewServer(peer link.Port) *Server {
	return &Server{Peer: peer}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Printf("wsbridge: upgrade: %v\n", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("wsbridge: initiator %s connected\n", r.RemoteAddr)
	for {
		msg, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			log.Printf("wsbridge: initiator %s: %v\n", r.RemoteAddr, err)
			return
		}
		if op != ws.OpText {
			continue
		}

		rsp := s.handle(msg)
		b, err := json.Marshal(rsp)
		if err != nil {
			log.Printf("wsbridge: encode: %v\n", err)
			return
		}
		if err = wsutil.WriteServerMessage(conn, ws.OpText, b); err != nil {
			log.Printf("wsbridge: initiator %s: %v\n", r.RemoteAddr, err)
			return
		}
	}
}

func (s *Server) handle(msg []byte) (rsp response) {
	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		rsp.Error = err.Error()
		return
	}

	switch req.Op {
	case "probe":
		p, err := s.Peer.Probe()
		if err != nil {
			rsp.Error = err.Error()
			return
		}
		rsp.ResponseBits = p.ResponseBits
		rsp.ClientBits = p.ClientBits
		rsp.ProbeCount = p.ProbeCount
	case "chunk":
		ok, err := s.Peer.SendChunk(req.Data, req.Offset)
		if err != nil {
			rsp.Error = err.Error()
			return
		}
		rsp.Ack = ok
	default:
		rsp.Error = "unknown op " + req.Op
	}
	return
}

package link_test

import (
	"errors"
	"testing"

	"rtcfix/link"
	"rtcfix/link/mock"
)

func tickUntilStable(t *testing.T, h *link.Handshake, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		stable, err := h.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if stable {
			return i
		}
	}
	return -1
}

func TestHandshake_StableAfterThreshold(t *testing.T) {
	peer := mock.NewPeer()
	h := link.NewHandshake(peer, link.NewSession())
	h.Arm()

	if actual, expected := tickUntilStable(t, h, 1000), link.DefaultSettleTicks+1; actual != expected {
		t.Errorf("stable after %d ticks, expected %d", actual, expected)
	}
}

func TestHandshake_NotStableBeforeThreshold(t *testing.T) {
	peer := mock.NewPeer()
	h := link.NewHandshake(peer, link.NewSession())
	h.Arm()

	for i := 1; i <= link.DefaultSettleTicks; i++ {
		stable, err := h.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if stable {
			t.Fatalf("reported stable at tick %d", i)
		}
		if actual, expected := h.Session().Timer, i; actual != expected {
			t.Fatalf("tick %d: timer = %d, expected %d", i, actual, expected)
		}
	}
}

func TestHandshake_FlickerResetsTimer(t *testing.T) {
	tests := []struct {
		name  string
		probe link.Probe
	}{
		{"response bit cleared", link.Probe{ClientBits: link.PeerBit}},
		{"client bit cleared", link.Probe{ResponseBits: link.PeerBit}},
		{"probe in flight", link.Probe{ResponseBits: link.PeerBit, ClientBits: link.PeerBit, ProbeCount: 1}},
		{"other client only", link.Probe{ResponseBits: 1 << 2, ClientBits: 1 << 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := mock.NewPeer()
			ready := link.Probe{ResponseBits: link.PeerBit, ClientBits: link.PeerBit}
			peer.Script = func(n int) link.Probe {
				// probes are 0-based; probe 178 is the 179th tick
				if n == 178 {
					return tt.probe
				}
				return ready
			}

			h := link.NewHandshake(peer, link.NewSession())
			h.Arm()
			for i := 1; i <= 179; i++ {
				if stable, _ := h.Tick(); stable {
					t.Fatalf("stable at tick %d", i)
				}
			}
			if actual := h.Session().Timer; actual != 0 {
				t.Fatalf("timer = %d after flicker, expected 0", actual)
			}

			if actual, expected := tickUntilStable(t, h, 1000), link.DefaultSettleTicks+1; actual != expected {
				t.Errorf("stable %d ticks after flicker, expected %d", actual, expected)
			}
		})
	}
}

func TestHandshake_BootingPeer(t *testing.T) {
	peer := mock.NewPeer()
	peer.BootProbes = 50
	h := link.NewHandshake(peer, link.NewSession())
	h.Threshold = 10
	h.Arm()

	if actual, expected := tickUntilStable(t, h, 1000), 50+11; actual != expected {
		t.Errorf("stable after %d ticks, expected %d", actual, expected)
	}
	s := h.Session()
	if s.ResponseBits != link.PeerBit || s.ClientBits != link.PeerBit || s.ProbeCount != 0 {
		t.Errorf("session did not record the last probe: %+v", s)
	}
}

func TestHandshake_ArmResetsSession(t *testing.T) {
	peer := mock.NewPeer()
	s := link.NewSession()
	h := link.NewHandshake(peer, s)
	for i := 0; i < 20; i++ {
		_, _ = h.Tick()
	}
	h.Arm()
	if actual, expected := *s, (link.Session{Role: link.RoleInitiator}); actual != expected {
		t.Errorf("session after Arm = %+v, expected %+v", actual, expected)
	}
}

func TestHandshake_TransportError(t *testing.T) {
	peer := mock.NewPeer()
	h := link.NewHandshake(peer, link.NewSession())
	_, _ = h.Tick()
	_, _ = h.Tick()
	_ = peer.Close()

	stable, err := h.Tick()
	if stable || err == nil {
		t.Fatalf("stable = %v, err = %v; expected an error", stable, err)
	}
	if h.Session().Timer != 0 {
		t.Error("timer should reset on transport error")
	}
	if errors.Is(err, link.ErrPeerNotReady) {
		t.Error("transport errors are not PeerNotReady")
	}
}

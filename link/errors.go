package link

import (
	"errors"
	"fmt"
)

var (
	// ErrPeerNotReady is transient; it only ever resets the settle timer.
	ErrPeerNotReady = errors.New("link: peer not ready")

	// ErrPeerLost covers both a physically removed cable and a peer that stopped responding.
	ErrPeerLost = errors.New("link: peer lost")

	// ErrChunkRefused is a peer that keeps refusing the same chunk; it ends the transfer like a loss.
	ErrChunkRefused = fmt.Errorf("%w: chunk refused", ErrPeerLost)
)

type TransportError struct {
	Driver string
	Op     string
	Err    error
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("link: %s: %s failed", e.Driver, e.Op)
	}
	return fmt.Sprintf("link: %s: %s: %v", e.Driver, e.Op, e.Err)
}

// IsPeerLost reports whether err ends a transfer.
func IsPeerLost(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	return errors.Is(err, ErrPeerLost) || errors.As(err, &te)
}

package link

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// PeerBit is the readiness bit of the single client this tool talks to.
const PeerBit = 1 << 1

// ExchangeTimeout bounds one Probe or SendChunk. A tick makes at most two exchanges and has
// to finish within one frame.
const ExchangeTimeout = 6 * time.Millisecond

// Probe is a snapshot of the link registers after one probe exchange.
type Probe struct {
	// ResponseBits has a bit set for each client that answered the last probe.
	ResponseBits uint8
	// ClientBits has a bit set for each client that reports itself ready.
	ClientBits uint8
	// ProbeCount is non-zero while a probe sequence is still in flight.
	ProbeCount uint8
}

func (p Probe) PeerReady(mask uint8) bool {
	return p.ProbeCount == 0 && p.ResponseBits&mask != 0 && p.ClientBits&mask != 0
}

func (p Probe) PeerPresent(mask uint8) bool {
	return p.ClientBits&mask != 0
}

// Port is a non-blocking view of the serial link to the peer console. Implementations must
// return from every call well within one frame.
type Port interface {
	// Probe performs one probe exchange and returns the resulting register state.
	Probe() (Probe, error)

	// SendChunk transfers buf to the peer at the given payload offset and reports whether the
	// peer acknowledged it.
	SendChunk(buf []byte, offset int) (bool, error)

	Close() error
}

type Driver interface {
	Open(address string) (Port, error)

	DisplayName() string
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a link driver available by the provided name.
// If Register is called twice with the same name or if driver is nil,
// it panics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("link: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("link: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

func unregisterAllDrivers() {
	driversMu.Lock()
	defer driversMu.Unlock()
	// For tests.
	drivers = make(map[string]Driver)
}

// Drivers returns a sorted list of the names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func DriverByName(name string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

func Open(driverName, address string) (Port, error) {
	driver, ok := DriverByName(driverName)
	if !ok {
		return nil, fmt.Errorf("link: unknown driver %q (forgotten import?)", driverName)
	}

	port, err := driver.Open(address)
	if err != nil {
		return nil, &TransportError{Driver: driverName, Op: "open", Err: err}
	}
	return port, nil
}

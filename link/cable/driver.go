package cable

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"rtcfix/link"
)

const driverName = "cable"

// ReadTimeout leaves room within link.ExchangeTimeout for the write.
const ReadTimeout = 4 * time.Millisecond

var (
	ErrNoAdapterFound = errors.New("cable: no link cable adapter found among serial ports")

	baudRates = []int{
		921600,
		460800,
		230400,
		115200,
	}

	// USB ids of known link cable adapters
	adapterIDs = []struct{ VID, PID string }{
		{"1209", "4C4B"},
		{"2E8A", "000A"},
	}
)

type Driver struct{}

func (d *Driver) DisplayName() string {
	return "USB link cable adapter"
}

func isAdapter(port *enumerator.PortDetails) bool {
	if !port.IsUSB {
		return false
	}
	for _, id := range adapterIDs {
		if strings.EqualFold(port.VID, id.VID) && strings.EqualFold(port.PID, id.PID) {
			return true
		}
	}
	return false
}

func DetectAdapter() (portName string, err error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}

	for _, port := range ports {
		if isAdapter(port) {
			log.Printf("cable: found adapter %s (%s:%s)\n", port.Name, port.VID, port.PID)
			return port.Name, nil
		}
	}
	return "", ErrNoAdapterFound
}

// Open accepts "port;baud"; an empty port name detects the adapter.
func (d *Driver) Open(address string) (link.Port, error) {
	var err error

	parts := strings.Split(address, ";")

	portName := parts[0]
	if portName == "" {
		portName, err = DetectAdapter()
		if err != nil {
			return nil, err
		}
	}

	baudRequest := baudRates[0]
	if len(parts) > 1 {
		if n, e := strconv.Atoi(parts[1]); e == nil {
			baudRequest = n
		}
	}
	if baudRequest < baudRates[len(baudRates)-1] {
		return nil, fmt.Errorf("cable: baud rate %d below minimum %d", baudRequest, baudRates[len(baudRates)-1])
	}

	// Try all the common baud rates in descending order:
	var f serial.Port
	for _, baud := range baudRates {
		if baud > baudRequest {
			continue
		}

		f, err = serial.Open(portName, &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err == nil {
			log.Printf("cable: opened %s at %d baud\n", portName, baud)
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("cable: failed to open %s at any baud rate: %w", portName, err)
	}

	if err = f.SetReadTimeout(ReadTimeout); err != nil {
		f.Close()
		return nil, fmt.Errorf("cable: failed to set read timeout: %w", err)
	}
	if err = f.SetDTR(true); err != nil {
		f.Close()
		return nil, fmt.Errorf("cable: failed to set DTR: %w", err)
	}

	return newPort(portName, &dtrStream{f}), nil
}

// dtrStream clears DTR before closing so the adapter drops the link.
type dtrStream struct {
	serial.Port
}

func (s *dtrStream) Close() error {
	_ = s.Port.SetDTR(false)
	return s.Port.Close()
}

func init() {
	link.Register(driverName, &Driver{})
}

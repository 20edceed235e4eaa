package mock

import "rtcfix/link"

const driverName = "mock"

type Driver struct{}

func (d *Driver) DisplayName() string {
	return "Simulated peer console"
}

func (d *Driver) Open(address string) (link.Port, error) {
	p, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func init() {
	link.Register(driverName, &Driver{})
}

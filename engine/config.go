package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"rtcfix/link"
	"rtcfix/transfer"
)

type Configuration struct {
	Driver string `json:"driver"`
	// Port is the driver-specific address: a serial port name or a websocket URL.
	Port      string `json:"port"`
	Payload   string `json:"payload"`
	ChunkSize int    `json:"chunkSize"`
	Retries   int    `json:"retries"`
	Ack       string `json:"ack"`
	// SettleTicks is how long the peer must stay ready before the transfer starts.
	SettleTicks int `json:"settleTicks"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Driver:      "cable",
		ChunkSize:   link.DefaultChunkSize,
		Retries:     link.DefaultRetries,
		Ack:         "required",
		SettleTicks: link.DefaultSettleTicks,
	}
}

func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rtcfix"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfiguration reads path over the defaults. A missing file is not an error.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("engine: loadConfiguration: no configuration file at '%s'; using defaults\n", path)
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("engine: could not read configuration file: %w", err)
	}

	if err = json.Unmarshal(b, &config); err != nil {
		return DefaultConfiguration(), fmt.Errorf("engine: could not json unmarshal configuration file '%s': %w", path, err)
	}
	if err = config.Validate(); err != nil {
		return DefaultConfiguration(), fmt.Errorf("engine: configuration file '%s': %w", path, err)
	}

	log.Printf("engine: loadConfiguration: loaded '%s'\n", path)
	return config, nil
}

func SaveConfiguration(path string, config Configuration) error {
	b, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		return fmt.Errorf("engine: could not json marshal configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("engine: could not make directories along the path '%s': %w", dir, err)
	}

	if err = os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("engine: could not write configuration file '%s': %w", path, err)
	}

	log.Printf("engine: saveConfiguration: saved configuration to file '%s'\n", path)
	return nil
}

func (c Configuration) AckMode() (link.AckMode, error) {
	switch c.Ack {
	case "required", "":
		return link.AckRequired, nil
	case "none":
		return link.AckNone, nil
	}
	return link.AckRequired, fmt.Errorf("unknown ack mode %q", c.Ack)
}

func (c Configuration) Validate() error {
	if _, err := c.AckMode(); err != nil {
		return err
	}
	if c.ChunkSize < 0 || c.Retries < 0 || c.SettleTicks < 0 {
		return fmt.Errorf("chunk size, retries and settle ticks must not be negative")
	}
	return nil
}

// TransferConfig binds the configuration to a payload's transmit range.
func (c Configuration) TransferConfig(transmitRange []byte) (transfer.Config, error) {
	ack, err := c.AckMode()
	if err != nil {
		return transfer.Config{}, err
	}
	return transfer.Config{
		Payload:   transmitRange,
		Retries:   c.Retries,
		Ack:       ack,
		ChunkSize: c.ChunkSize,
		Threshold: c.SettleTicks,
	}, nil
}

package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	ListenAddr        string        `json:"listen_addr"`
	HeartbeatInterval string        `json:"heartbeat_interval"`
	Storage           StorageConfig `json:"storage"`
	Nats              NatsConfig    `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.ListenAddr == "" {
		el.Add(fmt.Errorf("listen_addr is required"))
	}

	if c.HeartbeatInterval != "" {
		d, err := time.ParseDuration(c.HeartbeatInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing heartbeat_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("heartbeat_interval must be at least 1 second"))
		}
	}

	el.Add(c.Storage.Validate())
	el.Add(c.Nats.Validate())

	return el.Err()
}

// internal/workers/resources/filter-resources/config.go
package filterresources

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout           time.Duration
	DefaultMaxResults int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		DefaultMaxResults: 10,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// internal/workers/resources/find-matching-resources/config.go
package findmatchingresources

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout           time.Duration
	DefaultMinScore   float64
	DefaultMaxResults int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		DefaultMinScore:   0.5,
		DefaultMaxResults: 10,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultMinScore < 0 || c.DefaultMinScore > 1 {
		return fmt.Errorf("default min score must be within [0, 1]")
	}
	return nil
}

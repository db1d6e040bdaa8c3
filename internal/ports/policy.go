package ports

import "time"

type PollPolicy struct {
	Interval time.Duration `yaml:"interval"`

	// MaxFailureBackoff caps the wait after consecutive failed polls. The
	// first failure always waits Interval.
	MaxFailureBackoff time.Duration `yaml:"max_failure_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

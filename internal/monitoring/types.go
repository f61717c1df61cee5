package monitoring

import (
	"time"
)

// CircuitBreakerConfig defines the trip behavior for one chain RPC.
type CircuitBreakerConfig struct {
	MaxRequests                 uint32        `json:"max_requests"`
	Interval                    time.Duration `json:"interval"`
	Timeout                     time.Duration `json:"timeout"`
	ConsecutiveFailureThreshold int           `json:"consecutive_failure_threshold"`
}

// CircuitBreakerConfigs provides default configurations per chain. The
// source chain sees user-paced traffic and trips faster; the destination
// chain carries the relayer pipeline and gets more slack before opening.
var CircuitBreakerConfigs = map[string]CircuitBreakerConfig{
	"source_chain": {
		MaxRequests:                 3,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: 3,
	},
	"destination_chain": {
		MaxRequests:                 3,
		Interval:                    45 * time.Second,
		Timeout:                     120 * time.Second,
		ConsecutiveFailureThreshold: 5,
	},
}

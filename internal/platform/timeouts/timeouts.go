// Package timeouts defines shared timeout constants for bingo processes.
package timeouts

import "time"

// HealthCheck caps a single gRPC health check call.
const HealthCheck = time.Second

// Probe caps how long a health probe waits for SERVING.
const Probe = 5 * time.Second

// Shutdown limits how long the gRPC server drains in-flight calls and open
// health watch streams before it is stopped hard.
const Shutdown = 5 * time.Second

package state

import "time"

const (
	// Infinity is the RIP-style unreachable cost. Costs are clamped to it.
	Infinity = 16
)

var (
	DefaultInterval = time.Second * 10
	SendTimeout     = time.Second * 5
	ShutdownTimeout = time.Second * 3

	// a neighbour that has not advertised for this many intervals is reported as silent by /routes.
	// routes through it are NOT withdrawn, there is no route aging.
	LivenessIntervals = 3

	// default listen host and port, matching the address other nodes use to reach us
	DefaultHost       = "127.0.0.1"
	DefaultListenHost = "0.0.0.0"
	DefaultPort       = 5000
)

// debug logging switches, set from the command line
var (
	DBG_log_table          = false
	DBG_log_advertisements = false
)

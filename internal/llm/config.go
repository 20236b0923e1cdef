package llm

import "time"

// Config controls queue behavior
type Config struct {
	// Concurrency control
	MaxConcurrent int // Total concurrent LLM requests

	// Queue sizes
	CriticalQueueSize   int // Interactive requests (small, rarely queues)
	BackgroundQueueSize int // Background tasks (larger buffer)

	// Timeouts
	CriticalTimeout   time.Duration // Shorter timeout for interactive requests
	BackgroundTimeout time.Duration // Longer timeout for background
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:       2,
		CriticalQueueSize:   20,
		BackgroundQueueSize: 100,
		CriticalTimeout:     120 * time.Second,
		BackgroundTimeout:   300 * time.Second,
	}
}

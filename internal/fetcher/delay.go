package fetcher

import (
	"fmt"
	"time"

	random "github.com/mazen160/go-random"
)

// DelayConfig is the pause inserted between two consecutive requests of a
// Fetcher. The pause is a random duration in [Min, Max].
type DelayConfig struct {
	Min     time.Duration
	Max     time.Duration
	Enabled bool
}

// DefaultDelay waits between one and three seconds.
func DefaultDelay() DelayConfig {
	return DelayConfig{
		Min:     time.Second,
		Max:     3 * time.Second,
		Enabled: true,
	}
}

// DisabledDelay never waits.
func DisabledDelay() DelayConfig {
	return DelayConfig{}
}

func NewDelayConfig(min, max time.Duration) (DelayConfig, error) {
	if min < 0 {
		return DelayConfig{}, fmt.Errorf("min delay must not be negative, got %s", min)
	}
	if min > max {
		return DelayConfig{}, fmt.Errorf("min delay %s must be <= max delay %s", min, max)
	}
	return DelayConfig{Min: min, Max: max, Enabled: true}, nil
}

// Jitter picks a duration in [min, max].
type Jitter func(min, max time.Duration) time.Duration

// RandomJitter picks a whole number of milliseconds in [min, max].
func RandomJitter(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	minMs, maxMs := int(min.Milliseconds()), int(max.Milliseconds())
	if minMs >= maxMs {
		return min
	}
	// IntRange excludes the upper bound
	ms, err := random.IntRange(minMs, maxMs+1)
	if err != nil {
		return min
	}
	return time.Duration(ms) * time.Millisecond
}

func (c DelayConfig) pick(jitter Jitter) time.Duration {
	if !c.Enabled {
		return 0
	}
	if c.Min == c.Max {
		return c.Min
	}
	return jitter(c.Min, c.Max)
}

// Package config holds the runtime configuration and the process logger.
package config

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Logger is the process-wide logger. main replaces it once flags are parsed.
var Logger = CreateLogger(false, false)

// CreateLogger creates a logger at info level, debug level if debug is set
// or error level if quiet is set.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

const (
	DefaultClockSpeed = 700
	DefaultTimerRate  = 60
	DefaultScale      = 10

	// MaxRate bounds the clock speed and the timer rate.
	MaxRate = 1_000_000
)

// Config controls how a program is run.
type Config struct {
	ClockSpeed int    // instructions per second
	TimerRate  int    // delay/sound timer decrements per second
	Scale      int    // window pixels per CHIP-8 pixel
	Seed       uint64 // random seed, 0 picks one from the clock

	Trace bool
	Debug bool
	Quiet bool
	Mute  bool
}

func Default() Config {
	return Config{
		ClockSpeed: DefaultClockSpeed,
		TimerRate:  DefaultTimerRate,
		Scale:      DefaultScale,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ClockSpeed <= 0:
		return errors.New("clock speed must be positive")
	case c.ClockSpeed > MaxRate:
		return fmt.Errorf("clock speed must not exceed %d", MaxRate)
	case c.TimerRate <= 0:
		return errors.New("timer rate must be positive")
	case c.TimerRate > MaxRate:
		return fmt.Errorf("timer rate must not exceed %d", MaxRate)
	case c.Scale <= 0:
		return errors.New("scale must be positive")
	}
	return nil
}

package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	opts, err := ParseFlags([]string{"chip8", "-speed", "1000", "-seed", "42", "-mute", "pong.ch8"})
	assert.NoError(t, err)
	assert.Equal(t, "pong.ch8", opts.Input)
	assert.Equal(t, 1000, opts.Config.ClockSpeed)
	assert.Equal(t, 60, opts.Config.TimerRate)
	assert.Equal(t, uint64(42), opts.Config.Seed)
	assert.True(t, opts.Config.Mute)
	assert.False(t, opts.Disasm)

	machineOpts := opts.MachineOptions(nil)
	assert.Equal(t, uint64(42), machineOpts.Seed)
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"no rom", []string{"chip8"}, "missing rom file"},
		{"two roms", []string{"chip8", "a.ch8", "b.ch8"}, "expected one rom file, got 2 arguments"},
		{"bad speed", []string{"chip8", "-speed", "0", "a.ch8"}, "clock speed must be positive"},
		{"speed too high", []string{"chip8", "-speed", "2000000000", "a.ch8"}, "clock speed must not exceed"},
		{"unknown flag", []string{"chip8", "-bogus", "a.ch8"}, "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args)
			assert.ErrorContains(t, err, tt.errMsg)

			var usage *UsageError
			assert.True(t, errors.As(err, &usage))

			var buf bytes.Buffer
			usage.ShowUsage(&buf)
			assert.True(t, bytes.Contains(buf.Bytes(), []byte("-speed")))
		})
	}
}

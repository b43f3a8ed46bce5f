package machine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

// LD VA, 60; LD DT, VA; LD ST, VA; JP $206
var timerProgram = []uint16{0x6A3C, 0xFA15, 0xFA18, 0x1206}

func TestSchedulerTimersIndependentOfClock(t *testing.T) {
	for _, clockHz := range []int{700, 5000, 50000} {
		cpu := newTestCPU(t, timerProgram...)
		s := NewScheduler(cpu, clockHz, 60)

		assert.NoError(t, s.Advance(500*time.Millisecond))
		regs := cpu.Registers()
		assert.Equal(t, uint8(30), regs.Delay)
		assert.Equal(t, uint8(30), regs.Sound)

		assert.NoError(t, s.Advance(500*time.Millisecond))
		regs = cpu.Registers()
		assert.Equal(t, uint8(0), regs.Delay)
		assert.Equal(t, uint8(0), regs.Sound)

		assert.NoError(t, s.Advance(time.Second))
		assert.Equal(t, uint8(0), cpu.Registers().Delay)
	}
}

func TestSchedulerSplitAdvance(t *testing.T) {
	cpu := newTestCPU(t, timerProgram...)
	s := NewScheduler(cpu, 700, 60)

	// many small host frames add up to the same virtual time
	for range 100 {
		assert.NoError(t, s.Advance(5*time.Millisecond))
	}
	assert.Equal(t, uint8(30), cpu.Registers().Delay)
}

func TestSchedulerInstructionRate(t *testing.T) {
	// ADD V0, 1; ADD V0, 1; ... enough room for one second at 100 Hz
	words := make([]uint16, 100)
	for i := range words {
		words[i] = 0x7001
	}
	cpu := newTestCPU(t, words...)
	s := NewScheduler(cpu, 100, 60)

	assert.NoError(t, s.Advance(250*time.Millisecond))
	assert.Equal(t, uint8(25), cpu.Registers().V[0])
	assert.NoError(t, s.Advance(750*time.Millisecond))
	assert.Equal(t, uint8(100), cpu.Registers().V[0])
}

func TestSchedulerStopsOnFault(t *testing.T) {
	cpu := newTestCPU(t, 0x6001, 0x0000)
	s := NewScheduler(cpu, 100, 60)

	err := s.Advance(time.Second)
	assert.True(t, errors.Is(err, ErrUnknownInstruction))
	assert.Equal(t, uint16(0x204), cpu.Registers().PC)
}

func TestSchedulerRunCancel(t *testing.T) {
	cpu := newTestCPU(t, 0x1200)
	s := NewScheduler(cpu, 700, 60)

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	err := s.Run(ctx, time.Millisecond, func() {
		frames++
		if frames == 3 {
			cancel()
		}
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 3, frames)
}

func TestWaitKeyBlocksFetch(t *testing.T) {
	// LD VA, 60; LD DT, VA; LD V5, K; JP $206
	cpu := newTestCPU(t, 0x6A3C, 0xFA15, 0xF50A, 0x1206)
	s := NewScheduler(cpu, 700, 60)

	assert.NoError(t, s.Advance(500*time.Millisecond))
	assert.True(t, cpu.Waiting())
	regs := cpu.Registers()
	assert.Equal(t, uint16(0x204), regs.PC)
	// timers keep running while blocked
	assert.Equal(t, uint8(30), regs.Delay)

	cpu.KeyDown(0x7)
	assert.NoError(t, s.Advance(10*time.Millisecond))
	assert.False(t, cpu.Waiting())
	regs = cpu.Registers()
	assert.Equal(t, uint8(0x7), regs.V[5])
	assert.Equal(t, uint16(0x206), regs.PC)
}

func TestWaitKeyNeedsNewPress(t *testing.T) {
	cpu := newTestCPU(t, 0xF30A, 0x1202)
	cpu.KeyDown(0x2)

	// a key held before the wait does not satisfy it
	runSteps(t, cpu, 3)
	assert.True(t, cpu.Waiting())
	assert.Equal(t, uint16(0x200), cpu.Registers().PC)

	// a press and release between two steps still counts
	cpu.KeyDown(0x9)
	cpu.KeyUp(0x9)
	runSteps(t, cpu, 1)
	assert.False(t, cpu.Waiting())
	regs := cpu.Registers()
	assert.Equal(t, uint8(0x9), regs.V[3])
	assert.Equal(t, uint16(0x202), regs.PC)
}

func TestWaitKeyRepressOfHeldKey(t *testing.T) {
	cpu := newTestCPU(t, 0xF30A, 0x1202)
	cpu.KeyDown(0x2)
	runSteps(t, cpu, 1)

	cpu.KeyUp(0x2)
	runSteps(t, cpu, 1)
	assert.True(t, cpu.Waiting())

	cpu.KeyDown(0x2)
	runSteps(t, cpu, 1)
	assert.False(t, cpu.Waiting())
	assert.Equal(t, uint8(0x2), cpu.Registers().V[3])
}

func TestSchedulerExtremeRates(t *testing.T) {
	cpu := newTestCPU(t, 0x7001, 0x1200)
	s := NewScheduler(cpu, 2_000_000_000, 0)

	// one instruction per nanosecond, one timer tick per second
	assert.NoError(t, s.Advance(10*time.Nanosecond))
	assert.Equal(t, uint8(5), cpu.Registers().V[0])
}

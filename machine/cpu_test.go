package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func assemble(words ...uint16) []uint8 {
	program := make([]uint8, 0, len(words)*2)
	for _, w := range words {
		program = append(program, uint8(w>>8), uint8(w))
	}
	return program
}

func newTestCPU(t *testing.T, words ...uint16) *CPU {
	t.Helper()
	cpu, err := New(assemble(words...), Options{Logger: log.NewTestLogger(t), Seed: 1})
	assert.NoError(t, err)
	return cpu
}

func runSteps(t *testing.T, cpu *CPU, n int) {
	t.Helper()
	for range n {
		assert.NoError(t, cpu.Step())
	}
}

// exec runs a single instruction word against the current state, the way
// Step would after fetching it.
func exec(t *testing.T, cpu *CPU, op Opcode) {
	t.Helper()
	cpu.pc += 2
	assert.NoError(t, cpu.executeOpcode(Decode(op)))
}

func TestNewInitialState(t *testing.T) {
	cpu := newTestCPU(t, 0x1200)
	regs := cpu.Registers()

	assert.Equal(t, uint16(ProgramStart), regs.PC)
	assert.Equal(t, uint16(0), regs.I)
	assert.Equal(t, uint8(0), regs.SP)
	assert.Equal(t, [16]uint8{}, regs.V)

	font, err := cpu.Memory(0, uint(len(fontset)))
	assert.NoError(t, err)
	assert.Equal(t, fontset[:], font)

	program, err := cpu.Memory(ProgramStart, 2)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{0x12, 0x00}, program)
	assert.Equal(t, Framebuffer{}, cpu.Framebuffer())
}

func TestNewROMSize(t *testing.T) {
	cpu, err := New(make([]uint8, MaxROMSize), Options{Logger: log.NewTestLogger(t)})
	assert.NoError(t, err)
	assert.NotNil(t, cpu)

	cpu, err = New(make([]uint8, MaxROMSize+1), Options{Logger: log.NewTestLogger(t)})
	assert.True(t, errors.Is(err, ErrROMTooLarge))
	assert.Nil(t, cpu)
}

func TestLoadKeepsMachineOnError(t *testing.T) {
	cpu := newTestCPU(t, 0x6A05)
	runSteps(t, cpu, 1)

	err := cpu.Load(make([]uint8, MaxROMSize+1))
	assert.True(t, errors.Is(err, ErrROMTooLarge))
	assert.Equal(t, uint8(5), cpu.Registers().V[0xA])

	assert.NoError(t, cpu.Load(assemble(0x6B07)))
	runSteps(t, cpu, 1)
	regs := cpu.Registers()
	assert.Equal(t, uint8(0), regs.V[0xA])
	assert.Equal(t, uint8(7), regs.V[0xB])
}

func TestResetRestoresProgram(t *testing.T) {
	// LD V0, $AB; LD I, $200; LD [I], V0
	cpu := newTestCPU(t, 0x60AB, 0xA200, 0xF055)
	runSteps(t, cpu, 3)

	mem, err := cpu.Memory(ProgramStart, 1)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{0xAB}, mem)

	cpu.Reset()
	mem, err = cpu.Memory(ProgramStart, 1)
	assert.NoError(t, err)
	assert.Equal(t, []uint8{0x60}, mem)
	assert.Equal(t, uint16(ProgramStart), cpu.Registers().PC)
}

func TestStepAdvancesPC(t *testing.T) {
	cpu := newTestCPU(t, 0x6001, 0x6102)
	runSteps(t, cpu, 2)
	assert.Equal(t, uint16(0x204), cpu.Registers().PC)
}

func TestFaultUnknownInstruction(t *testing.T) {
	cpu := newTestCPU(t, 0x6001, 0x0123)
	runSteps(t, cpu, 1)

	err := cpu.Step()
	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, Opcode(0x0123), fault.Opcode)
	assert.True(t, errors.Is(err, ErrUnknownInstruction))
	assert.ErrorContains(t, err, "$202")

	// the machine stays halted on the same fault
	assert.Equal(t, err, cpu.Step())
	assert.Equal(t, err, cpu.Halted())

	cpu.Reset()
	assert.NoError(t, cpu.Halted())
}

func TestFaultFetchOutOfRange(t *testing.T) {
	cpu := newTestCPU(t, 0x1FFF)
	runSteps(t, cpu, 1)

	err := cpu.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestFaultIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
	}{
		{"bcd", 0xF033},
		{"store", 0xF155},
		{"restore", 0xF165},
		{"draw", 0xD002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// LD I, $FFF then the access
			cpu := newTestCPU(t, 0xAFFF, uint16(tt.op))
			runSteps(t, cpu, 1)

			err := cpu.Step()
			assert.True(t, errors.Is(err, ErrAddressOutOfRange))
		})
	}
}

func TestFaultStack(t *testing.T) {
	// CALL $200 forever
	cpu := newTestCPU(t, 0x2200)
	runSteps(t, cpu, StackDepth)
	assert.Equal(t, uint8(StackDepth), cpu.Registers().SP)

	err := cpu.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))

	cpu = newTestCPU(t, 0x00EE)
	err = cpu.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestCallReturn(t *testing.T) {
	// $200 CALL $206; $202 LD V1, $02; $204 JP $204; $206 LD V0, $01; $208 RET
	cpu := newTestCPU(t, 0x2206, 0x6102, 0x1204, 0x6001, 0x00EE)

	runSteps(t, cpu, 1)
	regs := cpu.Registers()
	assert.Equal(t, uint16(0x206), regs.PC)
	assert.Equal(t, uint8(1), regs.SP)

	runSteps(t, cpu, 2)
	regs = cpu.Registers()
	assert.Equal(t, uint16(0x202), regs.PC)
	assert.Equal(t, uint8(0), regs.SP)

	runSteps(t, cpu, 1)
	regs = cpu.Registers()
	assert.Equal(t, uint8(1), regs.V[0])
	assert.Equal(t, uint8(2), regs.V[1])
}

func TestSoundCallback(t *testing.T) {
	// LD V0, $02; LD ST, V0
	cpu := newTestCPU(t, 0x6002, 0xF018)
	var events []bool
	cpu.SetOnSound(func(active bool) { events = append(events, active) })

	runSteps(t, cpu, 2)
	assert.True(t, cpu.SoundActive())
	cpu.TickTimers()
	assert.True(t, cpu.SoundActive())
	cpu.TickTimers()
	assert.False(t, cpu.SoundActive())
	cpu.TickTimers()

	assert.Equal(t, []bool{true, false}, events)
}

func TestTimersStopAtZero(t *testing.T) {
	// LD V0, $01; LD DT, V0
	cpu := newTestCPU(t, 0x6001, 0xF015)
	runSteps(t, cpu, 2)

	for range 5 {
		cpu.TickTimers()
	}
	regs := cpu.Registers()
	assert.Equal(t, uint8(0), regs.Delay)
	assert.Equal(t, uint8(0), regs.Sound)
}

func TestSoundSilencedOnReset(t *testing.T) {
	// LD V0, $FF; LD ST, V0
	cpu := newTestCPU(t, 0x60FF, 0xF018)
	var events []bool
	cpu.SetOnSound(func(active bool) { events = append(events, active) })

	runSteps(t, cpu, 2)
	assert.True(t, cpu.SoundActive())
	cpu.Reset()
	assert.False(t, cpu.SoundActive())
	assert.Equal(t, []bool{true, false}, events)

	runSteps(t, cpu, 2)
	assert.NoError(t, cpu.Load(assemble(0x1200)))
	assert.Equal(t, []bool{true, false, true, false}, events)

	// a rejected rom leaves the tone alone
	assert.NoError(t, cpu.Load(assemble(0x60FF, 0xF018)))
	runSteps(t, cpu, 2)
	assert.Error(t, cpu.Load(make([]uint8, MaxROMSize+1)))
	assert.True(t, cpu.SoundActive())
	assert.Equal(t, []bool{true, false, true, false, true}, events)
}

func TestSoundSilencedOnHalt(t *testing.T) {
	// LD V0, $FF; LD ST, V0; unknown
	cpu := newTestCPU(t, 0x60FF, 0xF018, 0x0000)
	var events []bool
	cpu.SetOnSound(func(active bool) { events = append(events, active) })

	runSteps(t, cpu, 2)
	assert.Error(t, cpu.Step())
	assert.False(t, cpu.SoundActive())
	assert.Equal(t, uint8(0xFF), cpu.Registers().Sound)
	assert.Equal(t, []bool{true, false}, events)

	// the halted machine stays silent while timers are ticked
	cpu.TickTimers()
	assert.Equal(t, []bool{true, false}, events)
}

func TestMemoryViewOutOfRange(t *testing.T) {
	cpu := newTestCPU(t, 0x1200)

	_, err := cpu.Memory(^uint(0), 2)
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	_, err = cpu.Memory(MemorySize, 0)
	assert.NoError(t, err)
}

func TestTraceSkip(t *testing.T) {
	// SE V0, $00; JP $200; JP $204
	cpu, err := New(assemble(0x3000, 0x1200, 0x1204), Options{Logger: log.NewTestLogger(t), Seed: 1, Trace: true})
	assert.NoError(t, err)

	runSteps(t, cpu, 1)
	assert.Equal(t, uint16(0x204), cpu.Registers().PC)
	runSteps(t, cpu, 1)
	assert.Equal(t, uint16(0x204), cpu.Registers().PC)
}

package machine

import (
	rand2 "math/rand/v2"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/rand"

	"github.com/kkkunny/chip8vm/config"
)

// Options tune a CPU. The zero value is usable.
type Options struct {
	// Logger receives machine events; nil selects config.Logger.
	Logger *log.Logger
	// Seed feeds the CXNN random source; 0 seeds from the clock.
	Seed uint64
	// Trace logs every executed instruction at debug level.
	Trace bool
}

// Registers is a copy of the register file.
type Registers struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Delay uint8
	Sound uint8
}

type keyWait struct {
	reg  uint8
	mark [KeyCount]uint64
}

// CPU is a CHIP-8 virtual machine. All methods are safe for concurrent use;
// one mutex covers the whole machine state.
type CPU struct {
	mu sync.Mutex

	v          [16]uint8 // 16个寄存器
	i          uint16    // 索引寄存器
	pc         uint16    // 程序计数器
	delayTimer uint8
	soundTimer uint8

	memory   *memory
	stack    *callStack
	screen   *screen
	keyboard *keyboard
	rng      *rand2.Rand

	wait    *keyWait
	fault   *Fault
	onSound func(active bool)

	logger *log.Logger
	trace  bool
}

// New builds a machine with program loaded at ProgramStart. A program larger
// than MaxROMSize yields ErrROMTooLarge and no machine.
func New(program []uint8, opts Options) (*CPU, error) {
	e := &CPU{
		memory:   newMemory(),
		stack:    newCallStack(),
		screen:   newScreen(),
		keyboard: newKeyboard(),
		logger:   opts.Logger,
		trace:    opts.Trace,
	}
	if e.logger == nil {
		e.logger = config.Logger
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e.rng = rand2.New(rand.NewSource(seed))

	if err := e.memory.Load(program); err != nil {
		return nil, err
	}
	e.reset()
	e.logger.Info("Program loaded", log.Int("size", len(program)))
	return e, nil
}

// Load replaces the program and resets the machine. On error the machine is
// left untouched.
func (e *CPU) Load(program []uint8) error {
	var err error
	e.locked(func() {
		if err = e.memory.Load(program); err != nil {
			return
		}
		e.reset()
		e.logger.Info("Program loaded", log.Int("size", len(program)))
	})
	return err
}

// SetOnScreenUpdate registers a callback for every pixel a sprite toggles.
// It runs with the machine lock held and must not call back into the CPU.
func (e *CPU) SetOnScreenUpdate(onScreenUpdate func(x, y uint16, on bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screen.SetOnScreenUpdate(onScreenUpdate)
}

func (e *CPU) SetOnReset(onReset func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screen.SetOnReset(onReset)
}

// SetOnSound registers a callback fired when the sound timer goes from zero
// to nonzero or back. It runs without the machine lock held.
func (e *CPU) SetOnSound(onSound func(active bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSound = onSound
}

// Reset returns the machine to its freshly loaded state.
func (e *CPU) Reset() {
	e.locked(e.reset)
}

// locked runs fn under the machine lock and reports a change of the tone
// state to onSound once the lock is released.
func (e *CPU) locked(fn func()) {
	e.mu.Lock()
	wasActive := e.soundOn()
	fn()
	active := e.soundOn()
	onSound := e.onSound
	e.mu.Unlock()

	if onSound != nil && active != wasActive {
		onSound(active)
	}
}

// soundOn reports whether the tone plays. A halted machine is silent.
func (e *CPU) soundOn() bool {
	return e.fault == nil && e.soundTimer > 0
}

func (e *CPU) reset() {
	e.logger.Debug("CPU reset")
	e.v = [16]uint8{}
	e.i = 0
	e.pc = ProgramStart
	e.delayTimer = 0
	e.soundTimer = 0
	e.memory.Reset()
	e.stack.Clear()
	e.screen.Reset()
	e.wait = nil
	e.fault = nil
}

func (e *CPU) KeyDown(key uint8) { e.keyboard.KeyDown(key) }
func (e *CPU) KeyUp(key uint8)   { e.keyboard.KeyUp(key) }

// Step executes one instruction. While awaiting a key it only polls the
// latch. After a fault every call returns that fault.
func (e *CPU) Step() error {
	var err error
	e.locked(func() { err = e.step() })
	return err
}

func (e *CPU) step() error {
	if e.fault != nil {
		return e.fault
	}
	if e.wait != nil {
		e.pollKey()
		return nil
	}

	pc := e.pc
	high, err := e.memory.Get(uint(pc))
	if err != nil {
		return e.halt(pc, 0, err)
	}
	low, err := e.memory.Get(uint(pc) + 1)
	if err != nil {
		return e.halt(pc, 0, err)
	}
	op := NewOpcode(high, low)
	e.pc += 2

	ins := Decode(op)
	if e.trace {
		e.logger.Debug("Execute", log.Hex("pc", pc), log.String("instruction", Disassemble(op)))
	}
	if err := e.executeOpcode(ins); err != nil {
		return e.halt(pc, op, err)
	}
	if e.trace && ins.Kind.IsSkip() && e.pc == pc+4 {
		e.logger.Debug("Skipped", log.Hex("pc", pc+2))
	}
	return nil
}

func (e *CPU) halt(pc uint16, op Opcode, err error) error {
	e.fault = &Fault{PC: pc, Opcode: op, Err: err}
	e.logger.Error("Machine halted",
		log.Hex("pc", pc),
		log.Hex("opcode", uint16(op)),
		log.Err(err))
	return e.fault
}

func (e *CPU) pollKey() {
	key, ok := e.keyboard.FirstPressedSince(e.wait.mark)
	if !ok {
		return
	}
	e.logger.Debug("Key wait satisfied", log.Hex("key", key), log.Hex("register", e.wait.reg))
	e.v[e.wait.reg] = key
	e.pc += 2
	e.wait = nil
}

// TickTimers decrements the delay and sound timers once, stopping at zero.
func (e *CPU) TickTimers() {
	e.locked(func() {
		if e.delayTimer > 0 {
			e.delayTimer--
		}
		if e.soundTimer > 0 {
			e.soundTimer--
		}
	})
}

// Framebuffer returns a copy of the display.
func (e *CPU) Framebuffer() Framebuffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.screen.pixels
}

func (e *CPU) Registers() Registers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Registers{
		V:     e.v,
		I:     e.i,
		PC:    e.pc,
		SP:    uint8(e.stack.Length()),
		Delay: e.delayTimer,
		Sound: e.soundTimer,
	}
}

// SoundActive reports whether the tone should currently play. It is false
// while the machine is halted.
func (e *CPU) SoundActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.soundOn()
}

// Waiting reports whether the machine is suspended on FX0A.
func (e *CPU) Waiting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wait != nil
}

// Halted returns the fault that stopped the machine, if any.
func (e *CPU) Halted() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fault == nil {
		return nil
	}
	return e.fault
}

// Memory returns a copy of n bytes of the address space starting at addr.
func (e *CPU) Memory(addr, n uint) ([]uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, err := e.memory.IndexByN(addr, n)
	if err != nil {
		return nil, err
	}
	return append([]uint8(nil), data...), nil
}

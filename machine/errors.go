package machine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownInstruction = errors.New("unrecognized instruction")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrAddressOutOfRange  = errors.New("memory address out of range")
	ErrROMTooLarge        = errors.New("rom too large")
)

// Fault is a fatal condition raised while executing the instruction at PC.
// The CPU stays halted on it until it is reset.
type Fault struct {
	PC     uint16
	Opcode Opcode
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at $%03X (opcode %04X): %v", f.PC, uint16(f.Opcode), f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// addressError reports an access to addr outside the address space.
func addressError(addr uint) error {
	return fmt.Errorf("%w: $%X", ErrAddressOutOfRange, addr)
}

package machine

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

var mnemonics = [kindCount]*chip8.Instruction{
	KindClear:      chip8.Cls,
	KindReturn:     chip8.Ret,
	KindJump:       chip8.Jp,
	KindCall:       chip8.Call,
	KindSkipEqImm:  chip8.Se,
	KindSkipNeImm:  chip8.Sne,
	KindSkipEqReg:  chip8.Se,
	KindLoadImm:    chip8.Ld,
	KindAddImm:     chip8.Add,
	KindMove:       chip8.Ld,
	KindOr:         chip8.Or,
	KindAnd:        chip8.And,
	KindXor:        chip8.Xor,
	KindAdd:        chip8.Add,
	KindSub:        chip8.Sub,
	KindShiftRight: chip8.Shr,
	KindSubReverse: chip8.Subn,
	KindShiftLeft:  chip8.Shl,
	KindSkipNeReg:  chip8.Sne,
	KindLoadIndex:  chip8.Ld,
	KindJumpOffset: chip8.Jp,
	KindRandom:     chip8.Rnd,
	KindDraw:       chip8.Drw,
	KindSkipKey:    chip8.Skp,
	KindSkipNoKey:  chip8.Sknp,
	KindGetDelay:   chip8.Ld,
	KindWaitKey:    chip8.Ld,
	KindSetDelay:   chip8.Ld,
	KindSetSound:   chip8.Ld,
	KindAddIndex:   chip8.Add,
	KindFont:       chip8.Ld,
	KindBCD:        chip8.Ld,
	KindStore:      chip8.Ld,
	KindRestore:    chip8.Ld,
}

// Mnemonic returns the assembler name of the operation, or "" for KindUnknown.
func (k Kind) Mnemonic() string {
	if k >= kindCount || mnemonics[k] == nil {
		return ""
	}
	return mnemonics[k].Name
}

// IsSkip reports whether the operation conditionally skips the next one.
func (k Kind) IsSkip() bool {
	name := k.Mnemonic()
	return name != "" && chip8.SkipInstructions.Contains(name)
}

// Disassemble renders one instruction word as assembly text.
func Disassemble(op Opcode) string {
	ins := Decode(op)
	name := ins.Kind.Mnemonic()
	if name == "" {
		return fmt.Sprintf("dw $%04X", uint16(op))
	}
	if params := operands(ins); params != "" {
		return name + " " + params
	}
	return name
}

func operands(ins Instruction) string {
	switch ins.Kind {
	case KindJump, KindCall:
		return fmt.Sprintf("$%03X", ins.NNN)
	case KindSkipEqImm, KindSkipNeImm, KindLoadImm, KindAddImm, KindRandom:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case KindSkipEqReg, KindSkipNeReg, KindMove, KindOr, KindAnd, KindXor,
		KindAdd, KindSub, KindShiftRight, KindSubReverse, KindShiftLeft:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case KindLoadIndex:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case KindJumpOffset:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case KindDraw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	case KindSkipKey, KindSkipNoKey:
		return fmt.Sprintf("V%X", ins.X)
	case KindGetDelay:
		return fmt.Sprintf("V%X, DT", ins.X)
	case KindWaitKey:
		return fmt.Sprintf("V%X, K", ins.X)
	case KindSetDelay:
		return fmt.Sprintf("DT, V%X", ins.X)
	case KindSetSound:
		return fmt.Sprintf("ST, V%X", ins.X)
	case KindAddIndex:
		return fmt.Sprintf("I, V%X", ins.X)
	case KindFont:
		return fmt.Sprintf("F, V%X", ins.X)
	case KindBCD:
		return fmt.Sprintf("B, V%X", ins.X)
	case KindStore:
		return fmt.Sprintf("[I], V%X", ins.X)
	case KindRestore:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}

// DisassembleProgram lists program as it would sit in memory, one word per
// line. A trailing odd byte is listed on its own.
func DisassembleProgram(program []uint8) []string {
	lines := make([]string, 0, (len(program)+1)/2)
	for off := 0; off < len(program); off += 2 {
		addr := ProgramStart + off
		if off+1 == len(program) {
			lines = append(lines, fmt.Sprintf("$%03X  %02X    db $%02X", addr, program[off], program[off]))
			break
		}
		op := NewOpcode(program[off], program[off+1])
		lines = append(lines, fmt.Sprintf("$%03X  %04X  %s", addr, uint16(op), Disassemble(op)))
	}
	return lines
}

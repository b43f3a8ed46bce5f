package machine

// Kind identifies one operation of the CHIP-8 instruction set.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindClear        // 00E0
	KindReturn       // 00EE
	KindJump         // 1NNN
	KindCall         // 2NNN
	KindSkipEqImm    // 3XNN
	KindSkipNeImm    // 4XNN
	KindSkipEqReg    // 5XY0
	KindLoadImm      // 6XNN
	KindAddImm       // 7XNN
	KindMove         // 8XY0
	KindOr           // 8XY1
	KindAnd          // 8XY2
	KindXor          // 8XY3
	KindAdd          // 8XY4
	KindSub          // 8XY5
	KindShiftRight   // 8XY6
	KindSubReverse   // 8XY7
	KindShiftLeft    // 8XYE
	KindSkipNeReg    // 9XY0
	KindLoadIndex    // ANNN
	KindJumpOffset   // BNNN
	KindRandom       // CXNN
	KindDraw         // DXYN
	KindSkipKey      // EX9E
	KindSkipNoKey    // EXA1
	KindGetDelay     // FX07
	KindWaitKey      // FX0A
	KindSetDelay     // FX15
	KindSetSound     // FX18
	KindAddIndex     // FX1E
	KindFont         // FX29
	KindBCD          // FX33
	KindStore        // FX55
	KindRestore      // FX65

	kindCount
)

// Instruction is a decoded instruction word. Every field is always
// extracted; which of them matter depends on Kind.
type Instruction struct {
	Kind   Kind
	Opcode Opcode
	X      uint8
	Y      uint8
	N      uint8
	NN     uint8
	NNN    uint16
}

// Decode splits a raw word into its fields and classifies it. It never
// fails: words outside the instruction table decode to KindUnknown.
func Decode(op Opcode) Instruction {
	return Instruction{
		Kind:   classify(op),
		Opcode: op,
		X:      op.X(),
		Y:      op.Y(),
		N:      op.N(),
		NN:     op.NN(),
		NNN:    op.NNN(),
	}
}

var aluKinds = [16]Kind{
	0x0: KindMove,
	0x1: KindOr,
	0x2: KindAnd,
	0x3: KindXor,
	0x4: KindAdd,
	0x5: KindSub,
	0x6: KindShiftRight,
	0x7: KindSubReverse,
	0xE: KindShiftLeft,
}

var miscKinds = map[uint8]Kind{
	0x07: KindGetDelay,
	0x0A: KindWaitKey,
	0x15: KindSetDelay,
	0x18: KindSetSound,
	0x1E: KindAddIndex,
	0x29: KindFont,
	0x33: KindBCD,
	0x55: KindStore,
	0x65: KindRestore,
}

func classify(op Opcode) Kind {
	switch op.Op() {
	case 0x0:
		switch op {
		case 0x00E0:
			return KindClear
		case 0x00EE:
			return KindReturn
		}
	case 0x1:
		return KindJump
	case 0x2:
		return KindCall
	case 0x3:
		return KindSkipEqImm
	case 0x4:
		return KindSkipNeImm
	case 0x5:
		return KindSkipEqReg
	case 0x6:
		return KindLoadImm
	case 0x7:
		return KindAddImm
	case 0x8:
		return aluKinds[op.N()]
	case 0x9:
		return KindSkipNeReg
	case 0xA:
		return KindLoadIndex
	case 0xB:
		return KindJumpOffset
	case 0xC:
		return KindRandom
	case 0xD:
		return KindDraw
	case 0xE:
		switch op.NN() {
		case 0x9E:
			return KindSkipKey
		case 0xA1:
			return KindSkipNoKey
		}
	case 0xF:
		return miscKinds[op.NN()]
	}
	return KindUnknown
}

package machine

import (
	stlval "github.com/kkkunny/stl/value"
	"github.com/retroenv/retrogolib/log"
)

// PC has already moved past the instruction when a handler runs.
var handlers = [kindCount]func(*CPU, Instruction) error{
	KindClear:      (*CPU).clearScreen,
	KindReturn:     (*CPU).ret,
	KindJump:       (*CPU).jump,
	KindCall:       (*CPU).call,
	KindSkipEqImm:  (*CPU).skipEqImm,
	KindSkipNeImm:  (*CPU).skipNeImm,
	KindSkipEqReg:  (*CPU).skipEqReg,
	KindLoadImm:    (*CPU).loadImm,
	KindAddImm:     (*CPU).addImm,
	KindMove:       (*CPU).move,
	KindOr:         (*CPU).or,
	KindAnd:        (*CPU).and,
	KindXor:        (*CPU).xor,
	KindAdd:        (*CPU).add,
	KindSub:        (*CPU).sub,
	KindShiftRight: (*CPU).shiftRight,
	KindSubReverse: (*CPU).subReverse,
	KindShiftLeft:  (*CPU).shiftLeft,
	KindSkipNeReg:  (*CPU).skipNeReg,
	KindLoadIndex:  (*CPU).loadIndex,
	KindJumpOffset: (*CPU).jumpOffset,
	KindRandom:     (*CPU).random,
	KindDraw:       (*CPU).draw,
	KindSkipKey:    (*CPU).skipKey,
	KindSkipNoKey:  (*CPU).skipNoKey,
	KindGetDelay:   (*CPU).getDelay,
	KindWaitKey:    (*CPU).waitKey,
	KindSetDelay:   (*CPU).setDelay,
	KindSetSound:   (*CPU).setSound,
	KindAddIndex:   (*CPU).addIndex,
	KindFont:       (*CPU).font,
	KindBCD:        (*CPU).bcd,
	KindStore:      (*CPU).store,
	KindRestore:    (*CPU).restore,
}

func (e *CPU) executeOpcode(ins Instruction) error {
	handler := handlers[ins.Kind]
	if handler == nil {
		return ErrUnknownInstruction
	}
	return handler(e, ins)
}

func (e *CPU) vx(ins Instruction) uint8 { return e.v[ins.X] }
func (e *CPU) vy(ins Instruction) uint8 { return e.v[ins.Y] }
func (e *CPU) setCarry(carry bool)      { e.v[0xF] = stlval.Ternary[uint8](carry, 1, 0) }
func (e *CPU) skipIf(cond bool)         { e.pc += stlval.Ternary[uint16](cond, 2, 0) }

func (e *CPU) clearScreen(Instruction) error {
	e.screen.Reset()
	return nil
}

func (e *CPU) ret(Instruction) error {
	addr, err := e.stack.Pop()
	if err != nil {
		return err
	}
	e.pc = addr
	return nil
}

func (e *CPU) jump(ins Instruction) error {
	e.pc = ins.NNN
	return nil
}

func (e *CPU) call(ins Instruction) error {
	if err := e.stack.Push(e.pc); err != nil {
		return err
	}
	e.pc = ins.NNN
	return nil
}

func (e *CPU) skipEqImm(ins Instruction) error {
	e.skipIf(e.vx(ins) == ins.NN)
	return nil
}

func (e *CPU) skipNeImm(ins Instruction) error {
	e.skipIf(e.vx(ins) != ins.NN)
	return nil
}

func (e *CPU) skipEqReg(ins Instruction) error {
	e.skipIf(e.vx(ins) == e.vy(ins))
	return nil
}

func (e *CPU) skipNeReg(ins Instruction) error {
	e.skipIf(e.vx(ins) != e.vy(ins))
	return nil
}

func (e *CPU) loadImm(ins Instruction) error {
	e.v[ins.X] = ins.NN
	return nil
}

func (e *CPU) addImm(ins Instruction) error {
	e.v[ins.X] += ins.NN
	return nil
}

func (e *CPU) move(ins Instruction) error {
	e.v[ins.X] = e.vy(ins)
	return nil
}

func (e *CPU) or(ins Instruction) error {
	e.v[ins.X] |= e.vy(ins)
	return nil
}

func (e *CPU) and(ins Instruction) error {
	e.v[ins.X] &= e.vy(ins)
	return nil
}

func (e *CPU) xor(ins Instruction) error {
	e.v[ins.X] ^= e.vy(ins)
	return nil
}

// Flag-producing ALU operations write VF last, so VF as a destination
// ends up holding the flag.

func (e *CPU) add(ins Instruction) error {
	sum := uint16(e.vx(ins)) + uint16(e.vy(ins))
	e.v[ins.X] = uint8(sum)
	e.setCarry(sum > 0xFF)
	return nil
}

func (e *CPU) sub(ins Instruction) error {
	vx, vy := e.vx(ins), e.vy(ins)
	e.v[ins.X] = vx - vy
	e.setCarry(vy <= vx)
	return nil
}

func (e *CPU) subReverse(ins Instruction) error {
	vx, vy := e.vx(ins), e.vy(ins)
	e.v[ins.X] = vy - vx
	e.setCarry(vx <= vy)
	return nil
}

func (e *CPU) shiftRight(ins Instruction) error {
	vy := e.vy(ins)
	e.v[ins.Y] = vy >> 1
	e.v[ins.X] = vy >> 1
	e.setCarry(vy&0x01 != 0)
	return nil
}

func (e *CPU) shiftLeft(ins Instruction) error {
	vy := e.vy(ins)
	e.v[ins.Y] = vy << 1
	e.v[ins.X] = vy << 1
	e.setCarry(vy&0x80 != 0)
	return nil
}

func (e *CPU) loadIndex(ins Instruction) error {
	e.i = ins.NNN
	return nil
}

func (e *CPU) jumpOffset(ins Instruction) error {
	e.pc = ins.NNN + uint16(e.v[0])
	return nil
}

func (e *CPU) random(ins Instruction) error {
	e.v[ins.X] = uint8(e.rng.UintN(256)) & ins.NN
	return nil
}

func (e *CPU) draw(ins Instruction) error {
	sprite, err := e.memory.IndexByN(uint(e.i), uint(ins.N))
	if err != nil {
		return err
	}
	x, y := e.vx(ins), e.vy(ins)
	e.v[0xF] = 0
	e.setCarry(e.screen.DrawSprite(x, y, sprite))
	return nil
}

func (e *CPU) skipKey(ins Instruction) error {
	e.skipIf(e.keyboard.Pressed(e.vx(ins)))
	return nil
}

func (e *CPU) skipNoKey(ins Instruction) error {
	e.skipIf(!e.keyboard.Pressed(e.vx(ins)))
	return nil
}

func (e *CPU) getDelay(ins Instruction) error {
	e.v[ins.X] = e.delayTimer
	return nil
}

// waitKey parks PC on the instruction itself; Step resumes once a key is
// pressed after this point.
func (e *CPU) waitKey(ins Instruction) error {
	e.pc -= 2
	e.wait = &keyWait{reg: ins.X, mark: e.keyboard.Downs()}
	e.logger.Debug("Waiting for key", log.Hex("pc", e.pc), log.Hex("register", ins.X))
	return nil
}

func (e *CPU) setDelay(ins Instruction) error {
	e.delayTimer = e.vx(ins)
	return nil
}

func (e *CPU) setSound(ins Instruction) error {
	e.soundTimer = e.vx(ins)
	return nil
}

func (e *CPU) addIndex(ins Instruction) error {
	e.i = (e.i + uint16(e.vx(ins))) & 0x0FFF
	return nil
}

func (e *CPU) font(ins Instruction) error {
	e.i = uint16(e.vx(ins)) * FontSize
	return nil
}

func (e *CPU) bcd(ins Instruction) error {
	vx := e.vx(ins)
	digits := [3]uint8{vx / 100, (vx % 100) / 10, vx % 10}
	for n, d := range digits {
		if err := e.memory.Set(uint(e.i)+uint(n), d); err != nil {
			return err
		}
	}
	return nil
}

func (e *CPU) store(ins Instruction) error {
	for r := range ins.X + 1 {
		if err := e.memory.Set(uint(e.i)+uint(r), e.v[r]); err != nil {
			return err
		}
	}
	return nil
}

func (e *CPU) restore(ins Instruction) error {
	for r := range ins.X + 1 {
		b, err := e.memory.Get(uint(e.i) + uint(r))
		if err != nil {
			return err
		}
		e.v[r] = b
	}
	return nil
}

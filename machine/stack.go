package machine

import (
	stlstack "github.com/kkkunny/stl/container/stack"
)

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

// callStack bounds an stl stack to StackDepth entries.
type callStack struct {
	slots stlstack.Stack[uint16]
	depth uint8
}

func newCallStack() *callStack {
	return &callStack{slots: stlstack.New[uint16]()}
}

func (s *callStack) Push(addr uint16) error {
	if int(s.depth) >= StackDepth {
		return ErrStackOverflow
	}
	s.slots.Push(addr)
	s.depth++
	return nil
}

func (s *callStack) Pop() (uint16, error) {
	if s.depth == 0 {
		return 0, ErrStackUnderflow
	}
	s.depth--
	return s.slots.Pop(), nil
}

func (s *callStack) Clear() {
	s.slots.Clear()
	s.depth = 0
}

func (s *callStack) Length() int { return int(s.depth) }

package machine

import (
	"sync"

	"github.com/kkkunny/stl/container/tuple"
	"github.com/retroenv/retrogolib/log"
)

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

type KeyEvent uint8

const (
	KeyEventDown KeyEvent = iota
	KeyEventUp
)

// keyboard is the input latch. Hosts write it from their own goroutine, so
// every access is guarded. The machine only reads it; a reset leaves held
// keys held.
type keyboard struct {
	mu    sync.Mutex
	keys  [KeyCount]bool
	downs [KeyCount]uint64 // key-down transitions seen per key
}

func newKeyboard() *keyboard {
	return &keyboard{}
}

func (k *keyboard) KeyDown(key uint8) {
	if key >= KeyCount {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.keys[key] {
		k.downs[key]++
	}
	k.keys[key] = true
}

func (k *keyboard) KeyUp(key uint8) {
	if key >= KeyCount {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key] = false
}

// Pressed reports latch membership; ids outside the keypad are never pressed.
func (k *keyboard) Pressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[key]
}

// Downs returns the per-key press counters.
func (k *keyboard) Downs() [KeyCount]uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.downs
}

// FirstPressedSince returns the lowest key pressed again after mark was taken.
func (k *keyboard) FirstPressedSince(mark [KeyCount]uint64) (uint8, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i, n := range k.downs {
		if n != mark[i] {
			return uint8(i), true
		}
	}
	return 0, false
}

// FeedKeys forwards key events from input into cpu until input is closed.
func FeedKeys(cpu *CPU, input <-chan tuple.Tuple2[KeyEvent, uint8]) {
	go func() {
		for key := range input {
			switch key.E1() {
			case KeyEventDown:
				cpu.logger.Debug("Key down", log.Hex("key", key.E2()))
				cpu.KeyDown(key.E2())
			case KeyEventUp:
				cpu.logger.Debug("Key up", log.Hex("key", key.E2()))
				cpu.KeyUp(key.E2())
			}
		}
	}()
}

package machine

const (
	MemorySize   = 4096
	ProgramStart = 0x200
	// MaxROMSize is the largest program that fits above the reserved area.
	MaxROMSize = MemorySize - ProgramStart
)

type memory struct {
	data    [MemorySize]uint8
	program []uint8
}

func newMemory() *memory {
	m := &memory{}
	m.Reset()
	return m
}

// Reset restores the font and the last loaded program and zeroes the rest.
func (m *memory) Reset() {
	m.data = [MemorySize]uint8{}
	copy(m.data[:], fontset[:])
	copy(m.data[ProgramStart:], m.program)
}

func (m *memory) Load(program []uint8) error {
	if len(program) > MaxROMSize {
		return ErrROMTooLarge
	}
	m.program = append([]uint8(nil), program...)
	m.Reset()
	return nil
}

func (m *memory) Get(addr uint) (uint8, error) {
	if addr >= MemorySize {
		return 0, addressError(addr)
	}
	return m.data[addr], nil
}

func (m *memory) Set(addr uint, v uint8) error {
	if addr >= MemorySize {
		return addressError(addr)
	}
	m.data[addr] = v
	return nil
}

// IndexByN returns the n bytes starting at addr.
func (m *memory) IndexByN(addr, n uint) ([]uint8, error) {
	if addr > MemorySize || n > MemorySize-addr {
		return nil, addressError(max(addr, MemorySize))
	}
	return m.data[addr : addr+n], nil
}

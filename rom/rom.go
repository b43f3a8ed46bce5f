// Package rom reads CHIP-8 program images from disk.
package rom

import (
	"fmt"
	"os"

	stlerr "github.com/kkkunny/stl/error"
	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/config"
	"github.com/kkkunny/chip8vm/machine"
)

// Read returns the program stored at path. Images that do not fit above
// 0x200 are rejected with machine.ErrROMTooLarge.
func Read(path string) ([]uint8, error) {
	config.Logger.Debug("Reading rom", log.String("path", path))
	info, err := stlerr.ErrorWith(os.Stat(path))
	if err != nil {
		return nil, err
	}
	if info.Size() > machine.MaxROMSize {
		return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, machine.ErrROMTooLarge, info.Size(), machine.MaxROMSize)
	}

	data, err := stlerr.ErrorWith(os.ReadFile(path))
	if err != nil {
		return nil, err
	}
	if len(data) > machine.MaxROMSize {
		return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, machine.ErrROMTooLarge, len(data), machine.MaxROMSize)
	}
	return data, nil
}

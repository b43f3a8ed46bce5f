// Package main runs a CHIP-8 program in a window.
package main

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/app"
	"github.com/kkkunny/chip8vm/cli"
	"github.com/kkkunny/chip8vm/config"
	"github.com/kkkunny/chip8vm/machine"
	"github.com/kkkunny/chip8vm/rom"
)

func main() {
	opts, err := cli.ParseFlags(os.Args)
	if err != nil {
		cli.Exit(err)
	}
	config.Logger = config.CreateLogger(opts.Config.Debug, opts.Config.Quiet)

	program, err := rom.Read(opts.Input)
	if err != nil {
		config.Logger.Fatal("Loading rom failed", log.Err(err))
	}

	if opts.Disasm {
		for _, line := range machine.DisassembleProgram(program) {
			fmt.Println(line)
		}
		return
	}

	cpu, err := machine.New(program, opts.MachineOptions(config.Logger))
	if err != nil {
		config.Logger.Fatal("Creating machine failed", log.Err(err))
	}

	if err := app.NewApp(cpu, opts.Config).Run(); err != nil {
		config.Logger.Error("Emulation stopped", log.Err(err))
		os.Exit(1)
	}
}

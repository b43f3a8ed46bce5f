// Command chip8-ebiten runs a CHIP-8 program in an ebiten window with oto
// sound output.
package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/audio"
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
	cfg := opts.Config
	config.Logger = config.CreateLogger(cfg.Debug, cfg.Quiet)

	program, err := rom.Read(opts.Input)
	if err != nil {
		config.Logger.Fatal("Loading rom failed", log.Err(err))
	}
	cpu, err := machine.New(program, opts.MachineOptions(config.Logger))
	if err != nil {
		config.Logger.Fatal("Creating machine failed", log.Err(err))
	}

	if !cfg.Mute {
		player, err := audio.NewOtoPlayer(int(audio.SampleRate))
		if err != nil {
			config.Logger.Warn("Audio disabled", log.Err(err))
		} else {
			defer player.Close()
			cpu.SetOnSound(player.SetActive)
		}
	}

	ebiten.SetWindowSize(machine.ScreenWidth*cfg.Scale, machine.ScreenHeight*cfg.Scale)
	ebiten.SetWindowTitle("Chip-8 VM")
	ebiten.SetWindowClosingHandled(true)

	g := newGame(cpu, cfg)
	if err := ebiten.RunGame(g); err != nil {
		config.Logger.Error("Window failed", log.Err(err))
		os.Exit(1)
	}
	if g.err != nil {
		os.Exit(1)
	}
}

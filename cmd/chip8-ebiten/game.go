package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/config"
	"github.com/kkkunny/chip8vm/machine"
)

var keyMap = map[ebiten.Key]uint8{
	ebiten.Key1: 0x1, ebiten.Key2: 0x2, ebiten.Key3: 0x3, ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// game adapts the machine to ebiten's fixed-rate Update/Draw loop.
type game struct {
	cpu       *machine.CPU
	scheduler *machine.Scheduler
	tps       int
	pixels    []byte
	screen    *ebiten.Image
	err       error
}

func newGame(cpu *machine.CPU, cfg config.Config) *game {
	return &game{
		cpu:       cpu,
		scheduler: machine.NewScheduler(cpu, cfg.ClockSpeed, cfg.TimerRate),
		tps:       ebiten.DefaultTPS,
		pixels:    make([]byte, machine.ScreenWidth*machine.ScreenHeight*4),
	}
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.cpu.Reset()
		g.err = nil
	}
	for key, chip8Key := range keyMap {
		switch {
		case inpututil.IsKeyJustPressed(key):
			g.cpu.KeyDown(chip8Key)
		case inpututil.IsKeyJustReleased(key):
			g.cpu.KeyUp(chip8Key)
		}
	}

	if g.err != nil {
		return nil
	}
	if err := g.scheduler.Advance(time.Second / time.Duration(g.tps)); err != nil {
		config.Logger.Error("Machine stopped, press F5 to reset", log.Err(err))
		g.err = err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(machine.ScreenWidth, machine.ScreenHeight)
	}
	fb := g.cpu.Framebuffer()
	for y := range machine.ScreenHeight {
		for x := range machine.ScreenWidth {
			v := byte(0)
			if fb.Pixel(x, y) {
				v = 0xFF
			}
			i := (y*machine.ScreenWidth + x) * 4
			g.pixels[i], g.pixels[i+1], g.pixels[i+2], g.pixels[i+3] = v, v, v, 0xFF
		}
	}
	g.screen.WritePixels(g.pixels)
	screen.DrawImage(g.screen, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return machine.ScreenWidth, machine.ScreenHeight
}

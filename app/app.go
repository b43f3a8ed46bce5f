package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneApp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"github.com/kkkunny/stl/container/tuple"
	stlval "github.com/kkkunny/stl/value"
	"github.com/retroenv/retrogolib/log"
	hook "github.com/robotn/gohook"
	"golang.org/x/image/draw"

	"github.com/kkkunny/chip8vm/audio"
	"github.com/kkkunny/chip8vm/config"
	"github.com/kkkunny/chip8vm/machine"
	"github.com/kkkunny/chip8vm/rom"
)

// frameInterval is how often the host hands wall time to the scheduler and
// repaints.
const frameInterval = time.Second / 60

var keyMap = map[uint16]uint8{
	'1': 0x1,
	'2': 0x2,
	'3': 0x3,
	'4': 0xC,
	81:  0x4, // q
	87:  0x5, // w
	69:  0x6, // e
	82:  0xD, // r
	65:  0x7, // a
	83:  0x8, // s
	68:  0x9, // d
	70:  0xE, // f
	90:  0xA, // z
	88:  0x0, // x
	67:  0xB, // c
	86:  0xF, // v
}

var (
	onColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	offColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

type App struct {
	app    fyne.App
	window fyne.Window
	screen *canvas.Image

	cfg        config.Config
	cpu        *machine.CPU
	scheduler  *machine.Scheduler
	speaker    *audio.Speaker
	loadChan   chan string
	resetChan  chan struct{}
	frame      *image.RGBA
	screenImg  *image.RGBA
	onKeyEvent chan<- tuple.Tuple2[machine.KeyEvent, uint8]

	errMu sync.Mutex
	err   error
}

func NewApp(cpu *machine.CPU, cfg config.Config) *App {
	app := &App{
		app:       fyneApp.New(),
		cfg:       cfg,
		cpu:       cpu,
		scheduler: machine.NewScheduler(cpu, cfg.ClockSpeed, cfg.TimerRate),
		loadChan:  make(chan string, 1),
		resetChan: make(chan struct{}, 1),
	}
	app.window = app.app.NewWindow("Chip-8 VM")
	keyChan := make(chan tuple.Tuple2[machine.KeyEvent, uint8])
	machine.FeedKeys(cpu, keyChan)
	app.onKeyEvent = keyChan

	app.initWindow()
	app.initScreen()
	app.initAudio()

	return app
}

func (app *App) initWindow() {
	w, h := float32(machine.ScreenWidth*app.cfg.Scale), float32(machine.ScreenHeight*app.cfg.Scale)
	app.window.Resize(fyne.NewSize(w, h))
	app.window.SetFixedSize(true)
	app.window.CenterOnScreen()
	app.window.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("Machine",
		fyne.NewMenuItem("Load ROM", func() {
			selectFileWindow := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, app.window)
					return
				}
				if reader == nil {
					return
				}
				defer reader.Close()
				app.loadChan <- reader.URI().Path()
			}, app.window)
			selectFileWindow.Show()
		}),
		fyne.NewMenuItem("Reset", func() {
			select {
			case app.resetChan <- struct{}{}:
			default:
			}
		}),
	)))
}

func (app *App) initScreen() {
	app.frame = image.NewRGBA(image.Rect(0, 0, machine.ScreenWidth, machine.ScreenHeight))
	app.screenImg = image.NewRGBA(image.Rect(0, 0, machine.ScreenWidth*app.cfg.Scale, machine.ScreenHeight*app.cfg.Scale))
	app.screen = canvas.NewImageFromImage(app.screenImg)
	app.screen.FillMode = canvas.ImageFillOriginal
	app.window.SetContent(app.screen)

	clearFrame := func() {
		draw.Draw(app.frame, app.frame.Bounds(), &image.Uniform{C: offColor}, image.Point{}, draw.Src)
	}
	clearFrame()
	app.cpu.SetOnReset(clearFrame)
	app.cpu.SetOnScreenUpdate(func(x uint16, y uint16, on bool) {
		app.frame.SetRGBA(int(x), int(y), stlval.Ternary(on, onColor, offColor))
	})
}

func (app *App) initAudio() {
	if app.cfg.Mute {
		return
	}
	spk, err := audio.NewSpeaker()
	if err != nil {
		config.Logger.Warn("Audio disabled", log.Err(err))
		return
	}
	app.speaker = spk
	app.cpu.SetOnSound(spk.SetActive)
}

func (app *App) listenKeyboard() {
	go func() {
		for key := range hook.Start() {
			switch key.Rawcode {
			case 27:
				app.app.Quit()
				return
			default:
				chip8Key, ok := keyMap[key.Rawcode]
				if !ok {
					break
				}
				switch key.Kind {
				case hook.KeyDown:
					app.onKeyEvent <- tuple.Pack2(machine.KeyEventDown, chip8Key)
				case hook.KeyUp:
					app.onKeyEvent <- tuple.Pack2(machine.KeyEventUp, chip8Key)
				}
			}
		}
	}()
}

// render scales the frame onto the window image. The frame is only written
// from the scheduler goroutine: by the screen callbacks during Step and by
// onFrame.
func (app *App) render() {
	draw.NearestNeighbor.Scale(app.screenImg, app.screenImg.Bounds(), app.frame, app.frame.Bounds(), draw.Src, nil)
	app.screen.Refresh()
}

func (app *App) onFrame() {
	select {
	case path := <-app.loadChan:
		app.load(path)
	case <-app.resetChan:
		app.cpu.Reset()
	default:
	}
	app.render()
}

func (app *App) load(path string) {
	program, err := rom.Read(path)
	if err == nil {
		err = app.cpu.Load(program)
	}
	if err != nil {
		config.Logger.Error("Loading rom failed", log.String("path", path), log.Err(err))
		dialog.ShowError(err, app.window)
	}
}

// mainLoop runs the machine until ctx is done. After a fault it idles
// until a new rom is loaded or the machine is reset.
func (app *App) mainLoop(ctx context.Context) {
	for {
		err := app.scheduler.Run(ctx, frameInterval, app.onFrame)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		app.setErr(err)
		app.render()
		dialog.ShowError(err, app.window)

		select {
		case <-ctx.Done():
			return
		case path := <-app.loadChan:
			app.load(path)
		case <-app.resetChan:
			app.cpu.Reset()
		}
		if app.cpu.Halted() == nil {
			app.setErr(nil)
		}
	}
}

func (app *App) setErr(err error) {
	app.errMu.Lock()
	defer app.errMu.Unlock()
	app.err = err
}

// Run shows the window and blocks until it is closed. It returns the fault
// that stopped the machine, if any.
func (app *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.listenKeyboard()
	go app.mainLoop(ctx)
	app.window.ShowAndRun()

	hook.End()
	cancel()
	if app.speaker != nil {
		app.speaker.Close()
	}
	app.errMu.Lock()
	defer app.errMu.Unlock()
	return app.err
}

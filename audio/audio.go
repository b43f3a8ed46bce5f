// Package audio plays the CHIP-8 buzzer tone.
package audio

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	stlval "github.com/kkkunny/stl/value"
	"github.com/retroenv/retrogolib/log"

	"github.com/kkkunny/chip8vm/config"
)

const (
	SampleRate = beep.SampleRate(44100)
	ToneHz     = 440
	volume     = 0.2
)

// Tone is an endless square wave that is silent unless switched on.
type Tone struct {
	active atomic.Bool
	phase  int
	period int
}

func NewTone(sampleRate beep.SampleRate, hz int) *Tone {
	return &Tone{period: int(sampleRate) / hz}
}

func (t *Tone) SetActive(active bool) {
	if t.active.Swap(active) != active {
		config.Logger.Debug("Tone", log.String("state", stlval.Ternary(active, "on", "off")))
	}
}

func (t *Tone) Active() bool { return t.active.Load() }

// Stream fills samples with the wave; it never ends. Only the speaker
// goroutine calls it.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	on := t.active.Load()
	for i := range samples {
		v := 0.0
		if on {
			v = volume
			if t.phase < t.period/2 {
				v = -volume
			}
		}
		samples[i][0], samples[i][1] = v, v
		t.phase = (t.phase + 1) % t.period
	}
	return len(samples), true
}

func (t *Tone) Err() error { return nil }

// Speaker owns the output device and plays one Tone through it.
type Speaker struct {
	tone *Tone
}

// NewSpeaker opens the default output device.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/30)); err != nil {
		return nil, err
	}
	s := &Speaker{tone: NewTone(SampleRate, ToneHz)}
	speaker.Play(s.tone)
	return s, nil
}

// SetActive matches the CPU's SetOnSound callback.
func (s *Speaker) SetActive(active bool) {
	s.tone.SetActive(active)
}

func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}

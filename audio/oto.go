package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
)

// OtoPlayer feeds a Tone straight into an oto context, for hosts that do
// not go through the beep speaker.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	tone    *Tone
	samples [][2]float64
	mutex   sync.Mutex
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &OtoPlayer{
		ctx:  ctx,
		tone: NewTone(beep.SampleRate(sampleRate), ToneHz),
	}
	p.player = ctx.NewPlayer(p)
	p.player.Play()
	return p, nil
}

func (p *OtoPlayer) SetActive(active bool) {
	p.tone.SetActive(active)
}

// Read renders mono float32 little-endian samples from the tone.
func (p *OtoPlayer) Read(buf []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	n := len(buf) / 4
	if cap(p.samples) < n {
		p.samples = make([][2]float64, n)
	}
	samples := p.samples[:n]
	p.tone.Stream(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(s[0])))
	}
	return n * 4, nil
}

func (p *OtoPlayer) Close() {
	p.player.Close()
}

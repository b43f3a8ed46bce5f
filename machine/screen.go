package machine

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Framebuffer is a snapshot of the display, indexed [x][y].
type Framebuffer [ScreenWidth][ScreenHeight]bool

// Pixel reports whether the pixel at (x, y) is set. Coordinates wrap.
func (f *Framebuffer) Pixel(x, y int) bool {
	return f[mod(x, ScreenWidth)][mod(y, ScreenHeight)]
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

type screen struct {
	onUpdate func(x, y uint16, on bool)
	onReset  func()
	pixels   Framebuffer
}

func newScreen() *screen {
	return &screen{}
}

func (s *screen) Reset() {
	s.pixels = Framebuffer{}
	if s.onReset != nil {
		s.onReset()
	}
}

func (s *screen) SetOnScreenUpdate(onScreenUpdate func(x, y uint16, on bool)) {
	s.onUpdate = onScreenUpdate
}

func (s *screen) SetOnReset(onReset func()) {
	s.onReset = onReset
}

// DrawSprite XORs an 8-pixel-wide sprite, one byte per row and most
// significant bit leftmost, onto the screen at (x, y). Only set sprite bits
// toggle pixels and positions wrap around both edges. It reports whether any
// set pixel was cleared.
func (s *screen) DrawSprite(x, y uint8, sprite []uint8) (collision bool) {
	for j, row := range sprite {
		for i := range uint16(8) {
			if (row>>(7-i))&0x01 == 0 {
				continue
			}
			xi, yj := (uint16(x)+i)%ScreenWidth, (uint16(y)+uint16(j))%ScreenHeight
			old := s.pixels[xi][yj]
			collision = collision || old
			s.pixels[xi][yj] = !old
			if s.onUpdate != nil {
				s.onUpdate(xi, yj, !old)
			}
		}
	}
	return collision
}

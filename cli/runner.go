//go:build !libretro

// Package cli provides a command-line runner for the emulator: an
// ebiten.Game wrapper that polls keyboard input and drives the machine a
// frame at a time. The core never polls input or touches a windowing
// toolkit itself; everything host-facing lives here.
package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/user-none/goc64/core"
)

const sampleRate = 44100

// keyMap associates a C64 matrix position, given as (CIA1 PA column
// line, CIA1 PB row line), with the ebiten key that should drive it,
// covering the letters, digits, RETURN, space and cursor keys.
var keyMap = map[ebiten.Key][2]int{
	ebiten.KeyA: {1, 2}, ebiten.KeyB: {3, 4}, ebiten.KeyC: {2, 4}, ebiten.KeyD: {2, 2},
	ebiten.KeyE: {1, 6}, ebiten.KeyF: {2, 5}, ebiten.KeyG: {3, 2}, ebiten.KeyH: {3, 5},
	ebiten.KeyI: {4, 1}, ebiten.KeyJ: {4, 2}, ebiten.KeyK: {4, 5}, ebiten.KeyL: {5, 2},
	ebiten.KeyM: {4, 4}, ebiten.KeyN: {4, 7}, ebiten.KeyO: {4, 6}, ebiten.KeyP: {5, 1},
	ebiten.KeyQ: {7, 6}, ebiten.KeyR: {2, 1}, ebiten.KeyS: {1, 5}, ebiten.KeyT: {2, 6},
	ebiten.KeyU: {3, 6}, ebiten.KeyV: {3, 7}, ebiten.KeyW: {1, 1}, ebiten.KeyX: {2, 7},
	ebiten.KeyY: {3, 1}, ebiten.KeyZ: {1, 4},
	ebiten.KeyDigit0: {4, 3}, ebiten.KeyDigit1: {7, 0}, ebiten.KeyDigit2: {7, 3},
	ebiten.KeyDigit3: {1, 0}, ebiten.KeyDigit4: {1, 3}, ebiten.KeyDigit5: {2, 0},
	ebiten.KeyDigit6: {2, 3}, ebiten.KeyDigit7: {3, 0}, ebiten.KeyDigit8: {3, 3},
	ebiten.KeyDigit9: {4, 0},
	ebiten.KeySpace:  {7, 4},
	ebiten.KeyEnter:  {0, 1},
	ebiten.KeyArrowLeft: {0, 2}, ebiten.KeyArrowRight: {0, 2},
	ebiten.KeyArrowUp: {0, 7}, ebiten.KeyArrowDown: {0, 7},
	ebiten.KeyBackspace: {0, 0},
}

// Runner wraps a *core.Machine for ebiten's Game interface.
type Runner struct {
	machine     *core.Machine
	audioCtx    *audio.Context
	audioPlayer *audio.Player
	sampleBuf   []byte
	rgbaBuf     []byte // ABGR8888 core framebuffer converted to ebiten's RGBA8888
}

// NewRunner creates a Runner driving the given machine.
func NewRunner(m *core.Machine) *Runner {
	ctx := audio.NewContext(sampleRate)
	r := &Runner{machine: m, audioCtx: ctx}
	p, err := ctx.NewPlayer(&sidSampleSource{r: r})
	if err == nil {
		r.audioPlayer = p
		r.audioPlayer.Play()
	}
	return r
}

// Update implements ebiten.Game: poll input, run one frame.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}
	r.pollInput()
	r.machine.RunFrame()
	return nil
}

// Draw implements ebiten.Game: blit the VIC-II framebuffer. The core
// hands back ABGR8888; ebiten's WritePixels wants RGBA8888, so the
// channels are reordered here at the frontend boundary rather than in
// core.
func (r *Runner) Draw(screen *ebiten.Image) {
	pix, stride, height := r.machine.VIC().Framebuffer()
	n := stride * height
	if cap(r.rgbaBuf) < n*4 {
		r.rgbaBuf = make([]byte, n*4)
	}
	buf := r.rgbaBuf[:n*4]
	for i := 0; i < n; i++ {
		a := pix[i*4+0]
		b := pix[i*4+1]
		g := pix[i*4+2]
		rCh := pix[i*4+3]
		buf[i*4+0] = rCh
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	screen.WritePixels(buf)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	_, stride, height := r.machine.VIC().Framebuffer()
	return stride, height
}

func (r *Runner) pollInput() {
	for key, pos := range keyMap {
		down := ebiten.IsKeyPressed(key)
		r.machine.SetKey(pos[1], pos[0], down)
	}
}

// sidSampleSource adapts the SID's sample ring buffer into the
// io.Reader shape ebiten's audio.Player wants. The SID produces into the
// ring from the emulation thread (SID.Clock inside Machine.RunCycle);
// this reader drains it from the audio thread, which the ring's
// single-producer/single-consumer pointer discipline permits without a
// lock.
type sidSampleSource struct {
	r     *Runner
	float []float32
}

func (s *sidSampleSource) Read(p []byte) (int, error) {
	sid := s.r.machine.SID()
	n := len(p) / 4 // 2 channels x 2 bytes (16-bit stereo)
	if cap(s.float) < n*2 {
		s.float = make([]float32, n*2)
	}
	buf := s.float[:n*2]
	sid.ReadStereoSamples(buf)
	for i := 0; i < n*2; i++ {
		v := buf[i]
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		sample := int16(v * 32767)
		p[i*2+0] = uint8(sample)
		p[i*2+1] = uint8(uint16(sample) >> 8)
	}
	return n * 4, nil
}

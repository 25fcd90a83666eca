package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pcineverdies/gameboy-emulator/internal/input"
	"github.com/pcineverdies/gameboy-emulator/internal/machine"
	"github.com/pcineverdies/gameboy-emulator/internal/video"
)

// game adapts a Machine to ebiten.Game, and doubles as both the video.Sink
// (Present/Clear write into tex) and the input.Source (IsPressed polls
// ebiten's keyboard state) the machine package expects.
type game struct {
	m     *machine.Machine
	tex   *ebiten.Image
	sink  *ringAudioSink
	scale int
}

func newGame(m *machine.Machine, sink *ringAudioSink, scale int) *game {
	return &game{m: m, tex: ebiten.NewImage(video.Width, video.Height), sink: sink, scale: scale}
}

func (g *game) Present(framebuffer []uint32) {
	pix := make([]byte, len(framebuffer)*4)
	for i, c := range framebuffer {
		pix[i*4+0] = byte(c >> 16) // R
		pix[i*4+1] = byte(c >> 8)  // G
		pix[i*4+2] = byte(c)       // B
		pix[i*4+3] = byte(c >> 24) // A
	}
	g.tex.WritePixels(pix)
}

func (g *game) Clear(color uint32) {
	buf := make([]uint32, video.Width*video.Height)
	for i := range buf {
		buf[i] = color
	}
	g.Present(buf)
}

// keymap pairs an input.Scancode with the host key that drives it.
var keymap = map[input.Scancode]ebiten.Key{
	input.Right:      ebiten.KeyRight,
	input.Left:       ebiten.KeyLeft,
	input.Up:         ebiten.KeyUp,
	input.Down:       ebiten.KeyDown,
	input.A:          ebiten.KeyZ,
	input.B:          ebiten.KeyX,
	input.Select:     ebiten.KeyShiftRight,
	input.Start:      ebiten.KeyEnter,
	input.VolumeUp:   ebiten.KeyEqual,
	input.VolumeDown: ebiten.KeyMinus,
	input.Exit:       ebiten.KeyEscape,
}

func (g *game) IsPressed(code input.Scancode) bool {
	key, ok := keymap[code]
	return ok && ebiten.IsKeyPressed(key)
}

func (g *game) Update() error {
	g.m.PollInput(g)
	frame, ready := g.m.StepFrame()
	if ready {
		g.m.Present(g, frame)
	}
	g.m.DrainAudio(g.sink)
	if g.m.Flags.ExitRequested {
		return errExitRequested
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.tex, op)
}

func (g *game) Layout(int, int) (int, int) {
	return video.Width * g.scale, video.Height * g.scale
}

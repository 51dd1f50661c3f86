// Package testbed is a small application touching every capability: a ship
// steered with the keyboard or a gamepad, a tone played while a button is
// held, a microphone level meter and a high score kept in the files store.
package testbed

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	stdmath "math"
	"time"

	"golang.org/x/image/math/f32"

	"github.com/spaghettifunk/cala/engine"
	"github.com/spaghettifunk/cala/engine/audio"
	"github.com/spaghettifunk/cala/engine/clock"
	"github.com/spaghettifunk/cala/engine/controller"
	"github.com/spaghettifunk/cala/engine/graphics"
	emath "github.com/spaghettifunk/cala/engine/math"
	"github.com/spaghettifunk/cala/engine/platform"
)

const (
	highscoreFile = "highscore"
	fontFile      = "assets/fonts/ui.fnt"
	shipSpeed     = 300 // pixels per second
	toneHz        = 440
)

var layout = controller.NewLayout().Joy().ABXY().Menu()

type State struct {
	ship  *graphics.Instance
	meter *graphics.Instance
	label *graphics.Text

	scoreTicker *clock.Ticker
	score       int
	highscore   int
	saving      bool

	phase float64
	level float32
}

func NewState() State {
	return State{}
}

func Step(ctx *engine.Context, s *State, delta time.Duration) engine.Loop {
	if ctx.Ticks() == 1 {
		if err := s.setup(ctx); err != nil {
			ctx.Journal.Error("testbed setup failed", "err", err)
			return engine.Exit
		}
	}

	dt := float32(delta.Seconds())
	dx, dy, fire, quit := s.input(ctx)
	w, h := ctx.Graphics.Size()
	pos := &s.ship.Transform.Position
	pos[0] = emath.Clamp(pos[0]+dx*shipSpeed*dt, 0, float32(w))
	pos[1] = emath.Clamp(pos[1]+dy*shipSpeed*dt, 0, float32(h))
	if dx != 0 || dy != 0 {
		s.ship.Transform.Rotation = float32(stdmath.Atan2(float64(dy), float64(dx)))
	}

	s.sound(ctx, fire)

	s.score += s.scoreTicker.Ready()
	for _, name := range ctx.Files.Changed() {
		if name == highscoreFile {
			s.loadHighscore(ctx)
		}
	}
	if s.score > s.highscore && !s.saving {
		s.saveHighscore(ctx)
	}

	if s.label != nil {
		m := ctx.Metrics()
		s.label.Text = fmt.Sprintf("%s\nscore %d  best %d\n%.0f fps", ctx.User, s.score, s.highscore, m.FPS)
	}

	if quit || ctx.Interrupted() || ctx.Graphics.ShouldClose() {
		ctx.Journal.Out("bye %s, you scored %d", ctx.User, s.score)
		return engine.Exit
	}
	return engine.Continue
}

func (s *State) setup(ctx *engine.Context) error {
	g := ctx.Graphics
	w, h := g.Size()
	g.SetBackground(color.RGBA{R: 12, G: 14, B: 32, A: 255})

	glow := g.NewShader(func(x, y float32, base color.RGBA) color.RGBA {
		// brighter towards the top of the screen
		k := 1 - y/float32(h)
		return color.RGBA{
			R: uint8(float32(base.R) * (0.5 + k/2)),
			G: uint8(float32(base.G) * (0.5 + k/2)),
			B: uint8(float32(base.B) * (0.5 + k/2)),
			A: base.A,
		}
	})
	ship, err := g.NewShape(glow, []f32.Vec2{{20, 0}, {-12, -12}, {-6, 0}, {-12, 12}}, color.RGBA{R: 240, G: 200, B: 80, A: 255})
	if err != nil {
		return err
	}
	s.ship = g.NewInstance(ship)
	s.ship.Transform.Position = f32.Vec2{float32(w) / 2, float32(h) / 2}

	meter, err := g.NewShape(nil, graphics.Rect(1, 12), color.RGBA{G: 220, B: 120, A: 255})
	if err != nil {
		return err
	}
	s.meter = g.NewInstance(meter)
	s.meter.Transform.Position = f32.Vec2{20, float32(h) - 20}

	if font, err := g.LoadFont(fontFile); err == nil {
		s.label = g.NewText(font, "", image.Pt(16, 16))
	} else {
		ctx.Journal.Dev("no ui font: %v", err)
	}

	s.scoreTicker = ctx.Clock.Every(time.Second)
	s.loadHighscore(ctx)
	ctx.Journal.Out("hello %s (%s)", ctx.User, ctx.User.Info().LanguageName())
	return nil
}

// input merges keyboard and gamepads into a direction and two buttons.
func (s *State) input(ctx *engine.Context) (dx, dy float32, fire, quit bool) {
	if in := ctx.Graphics.Input(); in != nil {
		if in.IsKeyDown(platform.KeyLeft) {
			dx--
		}
		if in.IsKeyDown(platform.KeyRight) {
			dx++
		}
		if in.IsKeyDown(platform.KeyUp) {
			dy--
		}
		if in.IsKeyDown(platform.KeyDown) {
			dy++
		}
		fire = in.IsKeyDown(platform.KeySpace)
		quit = in.KeyPressed(platform.KeyEscape)
	}
	for id, st := range ctx.Controllers.All(layout) {
		dx += st.LeftStick.X
		dy += st.LeftStick.Y
		fire = fire || st.Buttons.Has(controller.ButtonA)
		quit = quit || ctx.Controllers.Pressed(id, controller.ButtonStart)
	}
	for _, id := range ctx.Controllers.Connected() {
		ctx.Journal.Out("controller %d connected: %s", id, ctx.Controllers.PadName(id))
	}
	return emath.Clamp(dx, -1, 1), emath.Clamp(dy, -1, 1), fire, quit
}

// sound plays a sine tone while fire is held and shows the microphone level.
func (s *State) sound(ctx *engine.Context, fire bool) {
	a := ctx.Audio
	step := 2 * stdmath.Pi * toneHz / float64(a.SampleRate())
	a.Play(func() audio.Sample {
		if !fire {
			return audio.Sample{}
		}
		v := float32(0.2 * stdmath.Sin(s.phase))
		s.phase = stdmath.Mod(s.phase+step, 2*stdmath.Pi)
		return audio.FromFloat(v, v)
	})

	var peak float32
	a.Record(func(_ int, smp audio.Sample) {
		l, r := smp.Float()
		peak = max(peak, emath.Abs(l), emath.Abs(r))
	})
	// decay so the meter does not flicker
	s.level = max(peak, emath.Lerp(0, s.level, 0.9))
	s.meter.Transform.Scale = f32.Vec2{1 + 200*s.level, 1}
}

func (s *State) loadHighscore(ctx *engine.Context) {
	ctx.Files.Load(highscoreFile, func(data []byte, err error) {
		if err != nil {
			ctx.Journal.Dev("no high score yet: %v", err)
			return
		}
		if len(data) == 8 {
			s.highscore = max(s.highscore, int(binary.LittleEndian.Uint64(data)))
		}
	})
}

func (s *State) saveHighscore(ctx *engine.Context) {
	s.highscore = s.score
	s.saving = true
	data := binary.LittleEndian.AppendUint64(nil, uint64(s.score))
	ctx.Files.Save(highscoreFile, data, func(err error) {
		s.saving = false
		if err != nil {
			ctx.Journal.Warn("failed to save high score", "err", err)
		}
	})
}

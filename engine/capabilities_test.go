//go:build !noclock && !noaudio && !nocontroller && !nographics && !nofiles && !nouser

package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/spaghettifunk/cala/engine/audio"
	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/graphics"
	"github.com/spaghettifunk/cala/engine/user"
)

func TestCompiledCapabilitiesOrder(t *testing.T) {
	want := []string{"clock", "audio", "controller", "graphics", "files", "user"}
	if got := Capabilities(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Capabilities() = %v, want %v", got, want)
	}
}

func TestHeadlessApplication(t *testing.T) {
	cfg := testConfig()
	cfg.Headless = true
	cfg.Files.Root = t.TempDir()

	presenter := graphics.NewHeadlessPresenter()
	wall := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	type state struct {
		saved bool
		who   string
	}
	var saved bool
	deadline := time.Now().Add(5 * time.Second)
	step := func(ctx *Context, s *state, _ time.Duration) Loop {
		switch ctx.Ticks() {
		case 1:
			s.who = ctx.User.String()
			ctx.Files.Save("state", []byte("x"), func(err error) {
				if err != nil {
					t.Errorf("save error = %v", err)
				}
				s.saved = true
				saved = true
			})
			ctx.Audio.Play(func() audio.Sample { return audio.Sample{} })
		}
		if s.saved || time.Now().After(deadline) {
			return Exit
		}
		return Continue
	}

	e, err := New(cfg, step, nil,
		WithJournal(core.DiscardJournal()),
		WithPresenter(presenter),
		WithWallClock(func() time.Time { return wall }),
		WithUserLookup(func() (user.Info, error) { return user.Info{Username: "ada", Name: "Ada"}, nil }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := e.Context()
	if ctx.Clock == nil || ctx.Audio == nil || ctx.Controllers == nil || ctx.Graphics == nil || ctx.Files == nil || ctx.User == nil {
		t.Fatal("capability missing from context")
	}
	if got := ctx.Capabilities(); !reflect.DeepEqual(got, Capabilities()) {
		t.Fatalf("Context.Capabilities() = %v, want %v", got, Capabilities())
	}

	if err := e.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !saved {
		t.Error("save callback never ran")
	}
	if presenter.Presented() == 0 {
		t.Error("graphics never presented a frame")
	}
	if !ctx.Clock.Now().Equal(wall) {
		t.Errorf("Clock.Now() = %v, want %v", ctx.Clock.Now(), wall)
	}
	if ctx.Controllers.Len() != 0 {
		t.Errorf("Controllers.Len() = %d, want 0", ctx.Controllers.Len())
	}
}

package streamdeck

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
)

type Controller interface {
	Crossfade(scene, xfadeMs int) (fade.Result, error)
	Scenes() int
	Subscribe() <-chan fade.Update
}

// Keys is the drawing side of a Device.
type Keys interface {
	KeyCount() int
	KeySize() int
	SetKeyImage(key int, img image.Image) error
}

var (
	colorIdle   = color.RGBA{40, 40, 48, 255}
	colorActive = color.RGBA{230, 160, 30, 255}
	colorFading = color.RGBA{50, 100, 220, 255}
)

// ScenePad assigns scene n to key n-1. The key of the committed scene is
// lit; the key of a scene being faded to is shown in a second colour.
type ScenePad struct {
	keys    Keys
	ctrl    Controller
	xfadeMs int
	logger  *slog.Logger
	updates <-chan fade.Update

	mu      sync.Mutex
	active  int
	pending int
	wg      sync.WaitGroup
}

func NewScenePad(keys Keys, ctrl Controller, xfadeMs int, logger *slog.Logger) *ScenePad {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScenePad{
		keys:    keys,
		ctrl:    ctrl,
		xfadeMs: xfadeMs,
		logger:  logger,
		updates: ctrl.Subscribe(),
	}
}

func (p *ScenePad) sceneKeys() int {
	return min(p.keys.KeyCount(), p.ctrl.Scenes())
}

// Draw repaints every scene key.
func (p *ScenePad) Draw() {
	p.mu.Lock()
	active, pending := p.active, p.pending
	p.mu.Unlock()

	size := p.keys.KeySize()
	for k := 0; k < p.sceneKeys(); k++ {
		scene := k + 1
		bg := colorIdle
		switch scene {
		case active:
			bg = colorActive
		case pending:
			bg = colorFading
		}
		img := TextImage(size, bg, color.White, "SCENE", fmt.Sprint(scene))
		if err := p.keys.SetKeyImage(k, img); err != nil {
			p.logger.Warn("draw key failed", slog.Int("key", k), slog.String("error", err.Error()))
			return
		}
	}
}

func (p *ScenePad) HandleKey(ev KeyEvent) {
	if !ev.Pressed || ev.Key >= p.sceneKeys() {
		return
	}
	scene := ev.Key + 1
	p.mu.Lock()
	p.pending = scene
	p.mu.Unlock()
	p.Draw()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.ctrl.Crossfade(scene, p.xfadeMs); err != nil {
			p.logger.Warn("scene change failed", slog.Int("scene", scene), slog.String("error", err.Error()))
		}
	}()
}

// Run handles key presses from keys and redraws after each committed
// scene until ctx is done.
func (p *ScenePad) Run(ctx context.Context, keys <-chan KeyEvent) {
	p.Draw()
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return
		case ev := <-keys:
			p.HandleKey(ev)
		case u := <-p.updates:
			if !u.Final {
				continue
			}
			p.mu.Lock()
			p.active = u.Scene
			if p.pending == u.Scene {
				p.pending = 0
			}
			p.mu.Unlock()
			p.Draw()
		}
	}
}

// Active returns the last committed scene, or zero after a manual fader
// change.
func (p *ScenePad) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

package xtouch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
)

// Controller is the engine surface the X-Touch drives.
type Controller interface {
	Crossfade(scene, xfadeMs int) (fade.Result, error)
	SetFader(channel, value int) error
	Snapshot() []int
	Channels() int
	Scenes() int
	Subscribe() <-chan fade.Update
}

// Feedback is the part of Output the surface writes to.
type Feedback interface {
	SetFader(fader uint8, value uint8) error
	SetButtonLED(button uint8, state LEDState) error
	SetLCD(lcd uint8, color LCDColor, upper, lower string) error
}

// Strips is the number of channel strips on one unit.
const Strips = 8

// Surface maps strip faders to bridge channels and select buttons to
// scenes. Motor faders follow every transmitted value except while the
// operator is touching them.
type Surface struct {
	ctrl    Controller
	out     Feedback
	xfadeMs int
	logger  *slog.Logger
	updates <-chan fade.Update

	mu      sync.Mutex
	touched [Strips]bool
	wg      sync.WaitGroup
}

func NewSurface(ctrl Controller, out Feedback, xfadeMs int, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Surface{
		ctrl:    ctrl,
		out:     out,
		xfadeMs: xfadeMs,
		logger:  logger,
		updates: ctrl.Subscribe(),
	}
}

// ToPercent scales a 7-bit fader position to a channel value.
func ToPercent(v uint8) int {
	return int(math.Round(float64(v) * fade.MaxValue / 127))
}

// FromPercent scales a channel value to a 7-bit fader position.
func FromPercent(p int) uint8 {
	p = min(max(p, fade.MinValue), fade.MaxValue)
	return uint8(math.Round(float64(p) * 127 / fade.MaxValue))
}

func (s *Surface) strips() int {
	return min(Strips, s.ctrl.Channels())
}

// HandleEvent applies one decoded surface event. Scene changes run in
// their own goroutine so MIDI input keeps flowing during a crossfade.
func (s *Surface) HandleEvent(ev Event) {
	switch e := ev.(type) {
	case FaderTouchEvent:
		if int(e.Fader) < Strips {
			s.mu.Lock()
			s.touched[e.Fader] = e.Touched
			s.mu.Unlock()
		}

	case FaderEvent:
		if int(e.Fader) >= s.strips() {
			return
		}
		if err := s.ctrl.SetFader(int(e.Fader)+1, ToPercent(e.Value)); err != nil {
			s.logger.Warn("fader set failed", slog.Int("fader", int(e.Fader)+1), slog.String("error", err.Error()))
		}

	case ButtonEvent:
		idx, ok := e.SelectIndex()
		if !ok || !e.Pressed || idx >= s.ctrl.Scenes() {
			return
		}
		scene := idx + 1
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.ctrl.Crossfade(scene, s.xfadeMs); err != nil {
				s.logger.Warn("scene change failed", slog.Int("scene", scene), slog.String("error", err.Error()))
			}
		}()
	}
}

// Run mirrors engine updates onto the surface until ctx is done.
func (s *Surface) Run(ctx context.Context) {
	s.show(fade.Update{Values: s.ctrl.Snapshot(), Final: true})
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return
		case u := <-s.updates:
			s.show(u)
		}
	}
}

func (s *Surface) show(u fade.Update) {
	s.mu.Lock()
	touched := s.touched
	s.mu.Unlock()

	for i := 0; i < s.strips() && i < len(u.Values); i++ {
		if !touched[i] {
			if err := s.out.SetFader(uint8(i), FromPercent(u.Values[i])); err != nil {
				s.feedbackFailed("fader", i, err)
			}
		}
		if u.Final {
			color := ColorBlue
			if u.Values[i] > 0 {
				color = ColorGreen
			}
			if err := s.out.SetLCD(uint8(i), color, fmt.Sprintf("Ch %d", i+1), fmt.Sprintf("%d%%", u.Values[i])); err != nil {
				s.feedbackFailed("lcd", i, err)
			}
		}
	}

	if u.Final && u.Scene > 0 {
		for i := 0; i < min(Strips, s.ctrl.Scenes()); i++ {
			state := LEDOff
			if i == u.Scene-1 {
				state = LEDOn
			}
			if err := s.out.SetButtonLED(uint8(NoteSelectFirst+i), state); err != nil {
				s.feedbackFailed("select led", i, err)
			}
		}
	}
}

func (s *Surface) feedbackFailed(what string, strip int, err error) {
	s.logger.Debug("surface feedback failed",
		slog.String("target", what),
		slog.Int("strip", strip),
		slog.String("error", err.Error()))
}

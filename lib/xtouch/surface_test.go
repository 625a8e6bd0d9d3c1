package xtouch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"slices"
	"sync"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
)

type nullSender struct{}

func (nullSender) Send(string) {}

type nullEncoder struct{}

func (nullEncoder) Encode(int, int) string { return "" }

type fakeFeedback struct {
	mu     sync.Mutex
	faders map[uint8]uint8
	leds   map[uint8]LEDState
	lcd    map[uint8]string
}

func newFakeFeedback() *fakeFeedback {
	return &fakeFeedback{
		faders: map[uint8]uint8{},
		leds:   map[uint8]LEDState{},
		lcd:    map[uint8]string{},
	}
}

func (f *fakeFeedback) SetFader(fader, value uint8) error {
	f.mu.Lock()
	f.faders[fader] = value
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedback) SetButtonLED(button uint8, state LEDState) error {
	f.mu.Lock()
	f.leds[button] = state
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedback) SetLCD(lcd uint8, _ LCDColor, _, lower string) error {
	f.mu.Lock()
	f.lcd[lcd] = lower
	f.mu.Unlock()
	return nil
}

func (f *fakeFeedback) fader(i uint8) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faders[i]
}

func (f *fakeFeedback) led(b uint8) LEDState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leds[b]
}

func setupSurface(t *testing.T) (*Surface, *fade.Engine, *fakeFeedback) {
	t.Helper()
	engine := fade.New(fade.NewStore(4), nullEncoder{}, nullSender{}, fade.Options{
		Scenes: 9,
		Sleep:  func(time.Duration) {},
	})
	out := newFakeFeedback()
	s := NewSurface(engine, out, 100, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, engine, out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScaling(t *testing.T) {
	for v, want := range map[uint8]int{0: 0, 127: 100, 64: 50, 1: 1} {
		if got := ToPercent(v); got != want {
			t.Errorf("ToPercent(%d) = %d, want %d", v, got, want)
		}
	}
	for p, want := range map[int]uint8{0: 0, 100: 127, 50: 64, 150: 127, -5: 0} {
		if got := FromPercent(p); got != want {
			t.Errorf("FromPercent(%d) = %d, want %d", p, got, want)
		}
	}
}

func TestDecode(t *testing.T) {
	if ev := Decode(midi.ControlChange(0, CCFaderFirst+2, 127)); ev != (FaderEvent{Fader: 2, Value: 127}) {
		t.Errorf("got %v", ev)
	}
	if ev := Decode(midi.ControlChange(0, CCFaderMain, 10)); ev != (FaderEvent{Fader: MainFader, Value: 10}) {
		t.Errorf("got %v", ev)
	}
	if ev := Decode(midi.NoteOn(0, NoteSelectFirst+1, 127)); ev != (ButtonEvent{Button: NoteSelectFirst + 1, Pressed: true}) {
		t.Errorf("got %v", ev)
	}
	if ev := Decode(midi.NoteOff(0, NoteFaderTouchFirst)); ev != (FaderTouchEvent{Fader: 0, Touched: false}) {
		t.Errorf("got %v", ev)
	}
	if ev := Decode(midi.ControlChange(0, 1, 1)); ev != nil {
		t.Errorf("got %v, want nil", ev)
	}
}

func TestFaderMoveSetsChannel(t *testing.T) {
	s, engine, _ := setupSurface(t)

	s.HandleEvent(FaderEvent{Fader: 1, Value: 127})
	s.HandleEvent(FaderEvent{Fader: 6, Value: 127})

	if got := engine.Snapshot(); !slices.Equal(got, []int{0, 100, 0, 0}) {
		t.Errorf("got %v", got)
	}
}

func TestSelectButtonChangesScene(t *testing.T) {
	s, engine, out := setupSurface(t)

	s.HandleEvent(ButtonEvent{Button: NoteSelectFirst + 2, Pressed: true})
	waitFor(t, func() bool { return slices.Equal(engine.Snapshot(), []int{0, 0, 100, 0}) })

	waitFor(t, func() bool { return out.led(NoteSelectFirst+2) == LEDOn })
	waitFor(t, func() bool { return out.fader(2) == 127 })
	if out.led(NoteSelectFirst) != LEDOff {
		t.Error("scene 1 LED still lit")
	}
}

func TestTouchedFaderIsNotDriven(t *testing.T) {
	s, engine, out := setupSurface(t)

	s.HandleEvent(FaderTouchEvent{Fader: 0, Touched: true})
	if _, err := engine.Crossfade(1, 0); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return out.fader(1) == 0 && out.led(NoteSelectFirst) == LEDOn })
	if got := out.fader(0); got != 0 {
		t.Errorf("touched fader moved to %d", got)
	}
}

type brokenFeedback struct{}

var errPortClosed = errors.New("port closed")

func (brokenFeedback) SetFader(uint8, uint8) error                  { return errPortClosed }
func (brokenFeedback) SetButtonLED(uint8, LEDState) error           { return errPortClosed }
func (brokenFeedback) SetLCD(uint8, LCDColor, string, string) error { return errPortClosed }

func TestFeedbackErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	engine := fade.New(fade.NewStore(4), nullEncoder{}, nullSender{}, fade.Options{Scenes: 9})
	s := NewSurface(engine, brokenFeedback{}, 100, logger)

	s.show(fade.Update{Values: []int{0, 100, 0, 0}, Scene: 2, Final: true})

	out := buf.String()
	for _, target := range []string{`"target":"fader"`, `"target":"lcd"`, `"target":"select led"`} {
		if !strings.Contains(out, target) {
			t.Errorf("log missing %s:\n%s", target, out)
		}
	}
	if !strings.Contains(out, "port closed") {
		t.Errorf("log missing error text:\n%s", out)
	}
}
